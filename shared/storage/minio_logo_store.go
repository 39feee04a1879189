package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/config"
)

// publicReadPolicy lets anonymous clients read objects under logos/.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/logos/*"]
  }]
}`

type MinIOLogoStore struct {
	client     *minio.Client
	bucketName string
	publicURL  string
	log        *logrus.Logger
}

var _ LogoStore = (*MinIOLogoStore)(nil)

func NewMinIOLogoStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*MinIOLogoStore, error) {
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %w", err)
	}

	log.WithFields(logrus.Fields{
		"endpoint": parsedURL.Host,
		"ssl":      cfg.MinIOUseSSL,
	}).Info("connecting to MinIO")

	client, err := minio.New(parsedURL.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinIOLogoStore{
		client:     client,
		bucketName: cfg.MinIOBucketName,
		publicURL:  cfg.MinIOPublicURL,
		log:        log,
	}
	if err := s.initializeBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOLogoStore) initializeBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.log.WithField("bucket", s.bucketName).Info("MinIO bucket created")
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucketName, fmt.Sprintf(publicReadPolicy, s.bucketName)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

func (s *MinIOLogoStore) PutLogo(ctx context.Context, orgID uuid.UUID, data []byte, contentType, ext string) (string, error) {
	key := LogoObjectKey(orgID, ext)
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"org_id": orgID,
		"key":    key,
		"size":   len(data),
	}).Info("logo uploaded")
	return PublicURL(s.publicURL, s.bucketName, key), nil
}
