/*
Package storage mirrors avatar images into S3-compatible object storage and issues
time-limited download links for them.

Two drivers are available: the AWS SDK client for S3 and S3-compatible providers, and
the MinIO client for self-hosted buckets.
*/
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Driver names accepted by NewObjectStore.
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	Driver            string
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UseSSL          bool
}

// ObjectStore is the subset of object storage used by the avatar mirror.
type ObjectStore interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignDownload generates a pre-signed URL for downloading the object.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// NewObjectStore is the factory function for ObjectStore.
func NewObjectStore(ctx context.Context, cfg ServiceConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case DriverS3:
		return newS3Client(ctx, cfg)
	case DriverMinio:
		return newMinioClient(ctx, cfg)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
}

// endpointURL adds a scheme to a bare host[:port] endpoint.
func endpointURL(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// endpointHost strips the scheme from endpoint, as the MinIO client expects host[:port].
func endpointHost(endpoint string) string {
	if i := strings.Index(endpoint, "://"); i >= 0 {
		endpoint = endpoint[i+3:]
	}
	return strings.TrimSuffix(endpoint, "/")
}
