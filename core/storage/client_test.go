package storage_test

import (
	"context"
	"testing"

	"enrollment-manager/core/storage"
	"enrollment-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "enrollment-archive",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		for _, endpoint := range []string{"http://localhost:9000", "https://s3.amazonaws.com"} {
			client, err := storage.NewClient(storage.Config{Endpoint: endpoint, AccessKey: "k", SecretKey: "s"})
			assert.NoError(t, err, endpoint)
			assert.NotNil(t, client, endpoint)
		}
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "archive").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "archive", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "archive").Return(false, nil)
		client.On("MakeBucket", ctx, "archive", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "archive", "eu-west-1"))
		client.AssertExpectations(t)
	})

	t.Run("LookupFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "archive").Return(false, assert.AnError)

		err := storage.EnsureBucket(ctx, client, "archive", "")
		assert.ErrorIs(t, err, assert.AnError)
	})
}
