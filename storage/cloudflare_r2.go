package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const snapshotContentType = "application/json"

type CloudflareR2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	ObjectKey       string
}

// objectAPI - подмножество s3.Client, нужное снимку каталога.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type objectSnapshotStore struct {
	client     objectAPI
	bucketName string
	key        string
}

// NewCloudflareR2SnapshotStore хранит снимок одним объектом в бакете R2.
func NewCloudflareR2SnapshotStore(ctx context.Context, cfg CloudflareR2Config) (SnapshotStore, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" || cfg.ObjectKey == "" {
		return nil, errors.New("invalid Cloudflare R2 configuration: all fields are required")
	}

	r2Endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 подписывает запросы с регионом "auto"
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r2Endpoint)
	})

	return newObjectSnapshotStore(client, cfg.BucketName, cfg.ObjectKey), nil
}

func newObjectSnapshotStore(client objectAPI, bucketName, key string) *objectSnapshotStore {
	return &objectSnapshotStore{client: client, bucketName: bucketName, key: key}
}

func (s *objectSnapshotStore) Load(ctx context.Context) ([]string, time.Time, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, time.Time{}, ErrSnapshotNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to get snapshot from R2 (key: %s): %w", s.key, err)
	}
	defer out.Body.Close()

	commanders, err := decodeSnapshot(out.Body)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("snapshot %s: %w", s.key, err)
	}

	var modified time.Time
	if out.LastModified != nil {
		modified = out.LastModified.UTC()
	}
	return commanders, modified, nil
}

// Save кладёт объект одним PutObject: S3-совместимое хранилище заменяет его атомарно.
func (s *objectSnapshotStore) Save(ctx context.Context, commanders []string) error {
	data, err := encodeSnapshot(commanders)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(snapshotContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to R2 (key: %s): %w", s.key, err)
	}
	return nil
}
