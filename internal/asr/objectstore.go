package asr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ObjectStore implements ObjectStore against an S3-compatible bucket
// (the OSS_* settings target Alibaba OSS, which speaks the S3 protocol).
type S3ObjectStore struct {
	client     *s3.Client
	bucket     string
	prefix     string
	signExpiry time.Duration
}

func NewS3ObjectStore(ctx context.Context, endpoint, region, accessKey, secretKey, bucket, prefix string, signExpiry time.Duration) (*S3ObjectStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("asr: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3ObjectStore{client: client, bucket: bucket, prefix: prefix, signExpiry: signExpiry}, nil
}

func (s *S3ObjectStore) Put(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("asr: open %s: %w", localPath, err)
	}
	defer f.Close()

	key := filepath.Join(s.prefix, filepath.Base(localPath))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("asr: put %s: %w", key, err)
	}
	return key, nil
}

func (s *S3ObjectStore) URL(ctx context.Context, key string) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.signExpiry))
	if err != nil {
		return "", fmt.Errorf("asr: presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("asr: delete %s: %w", key, err)
	}
	return nil
}
