package repository

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/lostandfound/backend/internal/config"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/oklog/ulid/v2"
)

// S3FileStorage implements domain.FileStorage on any S3 compatible store (SeaweedFS, MinIO, AWS)
type S3FileStorage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3FileStorage creates the S3 client and makes sure the bucket exists
func NewS3FileStorage(ctx context.Context, cfg appConfig.S3Config) (*S3FileStorage, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // Required for most S3-compatible stores
	})

	storage := &S3FileStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}

	if err := storage.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return storage, nil
}

// Upload stores the file under a fresh ULID name and returns its public URL
func (s *S3FileStorage) Upload(ctx context.Context, file *domain.File) (string, error) {
	key := blobName(file.Name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Content),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return blobURL(s.publicURL, s.bucket, key), nil
}

// Delete removes a blob. Deleting a missing blob is not an error on S3.
func (s *S3FileStorage) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// ensureBucket checks if bucket exists, creating it if necessary
func (s *S3FileStorage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(s.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// blobName keeps the original extension so browsers can guess the type
func blobName(originalName string) string {
	return ulid.Make().String() + strings.ToLower(path.Ext(originalName))
}

// blobURL format: {PublicURL}/{Bucket}/{Key}
func blobURL(publicURL, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", publicURL, bucket, key)
}
