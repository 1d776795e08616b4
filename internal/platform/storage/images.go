package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/minio/minio-go/v7"
	zlog "github.com/rs/zerolog/log"
)

const (
	DefaultMaxFileSize      int64 = 20 << 20
	DefaultMaxImagesPerUser       = 5
)

// supportedTypes maps accepted MIME types to the stored file extension.
var supportedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

// ObjectClient is the part of *minio.Client the image store needs.
type ObjectClient interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ImageStore keeps user avatars under "<user id>/" in one bucket and holds
// at most maxPerUser objects per user.
type ImageStore struct {
	client      ObjectClient
	bucket      string
	maxFileSize int64
	maxPerUser  int
}

func NewImageStore(client ObjectClient, bucket string, maxFileSize int64, maxPerUser int) *ImageStore {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if maxPerUser < 1 {
		maxPerUser = DefaultMaxImagesPerUser
	}
	return &ImageStore{
		client:      client,
		bucket:      bucket,
		maxFileSize: maxFileSize,
		maxPerUser:  maxPerUser,
	}
}

// Upload validates content, trims the user's older images and stores the new
// one. It returns the object URI as s3://<bucket>/<key>.
func (s *ImageStore) Upload(ctx context.Context, user users.User, content []byte) (string, error) {
	if len(content) == 0 {
		return "", apperror.NoFileContent()
	}
	size := int64(len(content))
	if size > s.maxFileSize {
		return "", apperror.FileSize(size, s.maxFileSize)
	}

	mime := mimetype.Detect(content).String()
	ext, ok := supportedTypes[mime]
	if !ok {
		zlog.Warn().Str("user_id", user.ID).Str("mime", mime).Msg("Unsupported image type")
		return "", apperror.InvalidFileType(mime)
	}

	prefix := user.ID + "/"
	if err := s.trim(ctx, prefix); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s%s.%s", prefix, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(content), size, minio.PutObjectOptions{
		ContentType: mime,
	})
	if err != nil {
		zlog.Error().Err(err).Str("object", objectName).Msg("Image upload failed")
		return "", apperror.ImagesBucket(fmt.Errorf("failed to upload image to MinIO: %w", err))
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, objectName), nil
}

// trim deletes the oldest objects under prefix until there is room for one
// more without exceeding maxPerUser.
func (s *ImageStore) trim(ctx context.Context, prefix string) error {
	var objects []minio.ObjectInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return apperror.ImagesBucket(fmt.Errorf("failed to list images: %w", object.Err))
		}
		objects = append(objects, object)
	}

	excess := len(objects) - (s.maxPerUser - 1)
	if excess <= 0 {
		return nil
	}

	sort.Slice(objects, func(i, j int) bool {
		if objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].Key < objects[j].Key
		}
		return objects[i].LastModified.Before(objects[j].LastModified)
	})

	for _, object := range objects[:excess] {
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return apperror.ImagesBucket(fmt.Errorf("failed to remove image %s: %w", object.Key, err))
		}
		zlog.Debug().Str("object", object.Key).Msg("Old image removed")
	}
	return nil
}
