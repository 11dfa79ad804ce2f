package mediastore

import (
	"errors"
	"fmt"
	"path"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
)

// Config holds offsite media storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads media storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("S3_MEDIA_BACKUP_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when media backup is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when media backup is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when media backup is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if offsite media backup is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKeyForListing builds the S3 object key for a listing media file.
// Format: listings/{listingID}/{fileName}
func ObjectKeyForListing(listingID uint, fileName string) string {
	return path.Join("listings", fmt.Sprintf("%d", listingID), fileName)
}

// GetAppEnv returns the current application environment
func GetAppEnv() string {
	return env.GetEnv("APP_ENV", "dev")
}
