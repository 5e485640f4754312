package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

type headObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// s3Checker implements Checker against the bucket uploads are mirrored to.
type s3Checker struct {
	client headObjectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Checker creates an S3-backed asset checker. Keys are prefix+path.
func NewS3Checker(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (Checker, error) {
	logger = logger.With().Str("component", "s3-asset-checker").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 asset checker initialised")

	return newS3Checker(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func newS3Checker(client headObjectAPI, bucket, prefix string, logger zerolog.Logger) *s3Checker {
	return &s3Checker{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// Exists issues a HeadObject for the asset.
func (c *s3Checker) Exists(ctx context.Context, path string) (bool, error) {
	key := c.prefix + path

	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}

	c.logger.Error().
		Err(err).
		Str("bucket", c.bucket).
		Str("key", key).
		Msg("failed to head object in S3")
	return false, fmt.Errorf("failed to head object (bucket=%s, key=%s): %w", c.bucket, key, err)
}
