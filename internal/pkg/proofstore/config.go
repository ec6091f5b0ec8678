package proofstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/clubshop-app/ClubShop/internal/pkg/env"
)

// Config holds blob store configuration for proof-of-payment uploads
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads blob store configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("PROOF_STORE_ENABLED", "false") == "true",
	}

	// Validate required fields if the proof store is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the proof store is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the proof store is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the proof store is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the proof store is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// GetObjectKey generates a standardized object key for a proof upload
func (c *Config) GetObjectKey(proofUUID, fileExtension string, t time.Time) string {
	// Format: proofs/YYYY/MM/UUID.ext
	return fmt.Sprintf("proofs/%04d/%02d/%s%s", t.Year(), int(t.Month()), proofUUID, fileExtension)
}

// GetBucketName returns the bucket name as configured (no automatic prefixing)
func (c *Config) GetBucketName() string {
	return c.BucketName
}
