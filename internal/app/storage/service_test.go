package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://s3.example.com", endpointURL("s3.example.com", true))
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "http://minio:9000", endpointURL("http://minio:9000", true))
}

func TestEndpointHost(t *testing.T) {
	assert.Equal(t, "localhost:9000", endpointHost("http://localhost:9000/"))
	assert.Equal(t, "s3.example.com", endpointHost("s3.example.com"))
}

func TestNewObjectStoreUnknownDriver(t *testing.T) {
	_, err := NewObjectStore(context.Background(), ServiceConfig{Driver: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}
