package storage

import (
	"context"
	"fmt"

	"github.com/martinmanurung/account-service/internal/platform/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	zlog "github.com/rs/zerolog/log"
)

// InitMinIO connects to MinIO and makes sure the images bucket exists.
func InitMinIO(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing minio client: %w", err)
	}

	if err := checkAndCreateBucket(ctx, minioClient, cfg.BucketImages); err != nil {
		return nil, err
	}

	return minioClient, nil
}

// checkAndCreateBucket is idempotent. Avatars stay private, so no bucket
// policy is applied.
func checkAndCreateBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket '%s': %w", bucketName, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", bucketName, err)
	}
	zlog.Info().Str("bucket", bucketName).Msg("Bucket created successfully")
	return nil
}
