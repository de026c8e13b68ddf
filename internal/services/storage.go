package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"faniverz-sync/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// objectUploader is the slice of the MinIO client the relay needs.
type objectUploader interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// StorageService re-hosts external images in the object store. When the
// store is not configured it degrades to passing source URLs through
// unchanged so the pipelines keep working offline.
type StorageService struct {
	client     *minio.Client
	uploader   objectUploader
	publicURL  string
	buckets    []string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewStorageService(cfg config.StorageConfig, logger *logrus.Logger) (*StorageService, error) {
	service := &StorageService{
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		buckets:    []string{cfg.PosterBucket, cfg.BackdropBucket, cfg.ProfileBucket},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}

	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		logger.Warn("Object store credentials not configured, image relay will pass source URLs through")
		return service, nil
	}

	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"buckets":  service.buckets,
		"useSSL":   cfg.UseSSL,
	}).Info("Object store client initialized successfully")

	service.client = minioClient
	service.uploader = minioClient
	return service, nil
}

// Configured reports whether the relay can actually upload.
func (s *StorageService) Configured() bool {
	return s.uploader != nil
}

// EnsureBuckets creates the poster, backdrop and profile buckets with a
// public-read policy when they do not exist yet.
func (s *StorageService) EnsureBuckets(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	for _, bucket := range s.buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}

		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			s.logger.WithField("bucket", bucket).Info("Bucket created successfully")
		}

		policy := fmt.Sprintf(`{
			"Version": "2012-10-17",
			"Statement": [
				{
					"Effect": "Allow",
					"Principal": {"AWS": ["*"]},
					"Action": ["s3:GetObject"],
					"Resource": ["arn:aws:s3:::%s/*"]
				}
			]
		}`, bucket)

		if err := s.client.SetBucketPolicy(ctx, bucket, policy); err != nil {
			return fmt.Errorf("failed to set bucket policy: %w", err)
		}
	}

	return nil
}

// Relay downloads sourceURL and re-uploads it under bucket/key, returning
// the public object URL and true. Any failure, or a missing object-store
// configuration, downgrades to the source URL unchanged and false; the
// caller always gets a servable link. Re-uploading an existing key
// overwrites it.
func (s *StorageService) Relay(ctx context.Context, sourceURL, bucket, key string) (string, bool) {
	if sourceURL == "" || s.uploader == nil {
		return sourceURL, false
	}

	data, err := s.fetch(ctx, sourceURL)
	if err != nil {
		s.logger.WithError(err).WithField("source", sourceURL).Warn("Failed to fetch source image, keeping source URL")
		return sourceURL, false
	}

	_, err = s.uploader.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"bucket": bucket,
			"key":    key,
		}).Warn("Failed to upload image, keeping source URL")
		return sourceURL, false
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, key), true
}

func (s *StorageService) fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}
