package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/martinmanurung/account-service/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix   = "refresh:"
	blacklistPrefix = "blacklist:"
)

// rotateScript swaps the session only when it still holds the presented
// token, and blacklists the presented token in the same step.
var rotateScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	redis.call('SET', KEYS[2], '1', 'PX', ARGV[3])
	return 1
end
return 0
`)

// InitRedis connects to Redis and verifies the connection.
func InitRedis(cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error verifying Redis connection: %w", err)
	}

	return client, nil
}

// RedisStore keeps one refresh session per user and a blacklist of spent
// refresh tokens. Tokens are stored as SHA-256 digests only. Entries expire
// with the refresh token lifetime, after which the token fails decoding anyway.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns the SHA-256 digest of the user's current refresh token, never
// the token itself, or "" when the user has no session. Use Matches to
// compare a presented token.
func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	digest, err := s.client.Get(ctx, sessionPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read refresh session: %w", err)
	}
	return digest, nil
}

// Matches reports whether token is the user's current refresh token.
func (s *RedisStore) Matches(ctx context.Context, userID, token string) (bool, error) {
	digest, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return digest != "" && digest == Digest(token), nil
}

func (s *RedisStore) Set(ctx context.Context, userID, token string) error {
	if err := s.client.Set(ctx, sessionPrefix+userID, Digest(token), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh session: %w", err)
	}
	return nil
}

func (s *RedisStore) Blacklist(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, blacklistPrefix+Digest(token), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistPrefix+Digest(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Remove(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to remove refresh session: %w", err)
	}
	return nil
}

func (s *RedisStore) Rotate(ctx context.Context, userID, current, next string) (bool, error) {
	keys := []string{sessionPrefix + userID, blacklistPrefix + Digest(current)}
	swapped, err := rotateScript.Run(ctx, s.client, keys, Digest(current), Digest(next), s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh session: %w", err)
	}
	return swapped == 1, nil
}

// Digest is the hex SHA-256 of a token, used as its storage form.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
