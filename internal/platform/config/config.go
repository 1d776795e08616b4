package config

import "time"

// Config adalah struct utama yang menampung semua konfigurasi
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	TokenStore    TokenStoreConfig    `mapstructure:"token_store"`
	RabbitMQ      RabbitMQConfig      `mapstructure:"rabbitmq"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Security      SecurityConfig      `mapstructure:"security"`
	ResetPassword ResetPasswordConfig `mapstructure:"reset_password"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

const (
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type TokenStoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// RabbitMQConfig describes the reset-password queue. DeliveryLimit is the
// number of redeliveries before a message is dead-lettered.
type RabbitMQConfig struct {
	URL                  string `mapstructure:"url"`
	Queue                string `mapstructure:"queue"`
	DeadLetterExchange   string `mapstructure:"dead_letter_exchange"`
	DeadLetterRoutingKey string `mapstructure:"dead_letter_routing_key"`
	DeliveryLimit        int    `mapstructure:"delivery_limit"`
}

type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	BucketImages     string `mapstructure:"bucket_images"`
	MaxImagesPerUser int    `mapstructure:"max_images_per_user"`
	MaxFileSize      int64  `mapstructure:"max_file_size"`
}

type JWTConfig struct {
	SecretKey          string        `mapstructure:"secret_key"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry"`
	LinkTokenExpiry    time.Duration `mapstructure:"link_token_expiry"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type ResetPasswordConfig struct {
	LinkBaseURL string `mapstructure:"link_base_url"`
}
