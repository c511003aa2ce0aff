package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Product, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	err     error
	lastKey string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"catalog/products.jsonl.gz": gzipLines(t, []string{`{"id":9,"title":"Mixer","price":"120"}`}),
	}}
	loader := newS3Loader(client, "seed-bucket", zerolog.Nop())

	products, err := loader.Load(context.Background(), "catalog/products.jsonl.gz")

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mixer", products[0].Title)
	assert.Equal(t, "seed-bucket/catalog/products.jsonl.gz", client.lastKey)
}

func TestS3Loader_Load_Errors(t *testing.T) {
	t.Run("GetObject fails", func(t *testing.T) {
		loader := newS3Loader(&fakeS3{err: errors.New("access denied")}, "seed-bucket", zerolog.Nop())

		products, err := loader.Load(context.Background(), "missing.gz")

		require.Error(t, err)
		assert.Nil(t, products)
		assert.Contains(t, err.Error(), "bucket=seed-bucket, key=missing.gz")
	})

	t.Run("Object is not gzip", func(t *testing.T) {
		client := &fakeS3{objects: map[string][]byte{"plain.gz": []byte("plain")}}
		loader := newS3Loader(client, "seed-bucket", zerolog.Nop())

		_, err := loader.Load(context.Background(), "plain.gz")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "s3://seed-bucket/plain.gz")
	})
}

func productsNamed(titles ...string) []model.Product {
	products := make([]model.Product, len(titles))
	for i, title := range titles {
		products[i] = model.Product{ID: int64(i + 1), Title: title}
	}
	return products
}

func TestFallbackLoader_S3Success(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			assert.Equal(t, "catalog/test.gz", path, "S3 key should have prefix")
			return productsNamed("from-s3"), nil
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			t.Error("file loader should not be called when S3 succeeds")
			return nil, errors.New("should not be called")
		},
	}

	fallback := NewFallbackLoader(s3, local, "catalog/", true, zerolog.Nop())

	products, err := fallback.Load(context.Background(), "test.gz")
	require.NoError(t, err)
	assert.Equal(t, "from-s3", products[0].Title)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			return nil, errors.New("S3 connection failed")
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			assert.Equal(t, "test.gz", path, "local file path should not have prefix")
			return productsNamed("from-disk"), nil
		},
	}

	fallback := NewFallbackLoader(s3, local, "catalog/", true, zerolog.Nop())

	products, err := fallback.Load(context.Background(), "test.gz")
	require.NoError(t, err)
	assert.Equal(t, "from-disk", products[0].Title)
}

func TestFallbackLoader_S3DisabledOrMissing(t *testing.T) {
	neverS3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			t.Error("S3 loader should not be called")
			return nil, errors.New("should not be called")
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			return productsNamed("from-disk"), nil
		},
	}

	tests := []struct {
		name      string
		s3        Loader
		s3Enabled bool
	}{
		{"S3 disabled", neverS3, false},
		{"S3 loader nil", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := NewFallbackLoader(tt.s3, local, "catalog/", tt.s3Enabled, zerolog.Nop())

			products, err := fallback.Load(context.Background(), "test.gz")
			require.NoError(t, err)
			assert.Equal(t, "from-disk", products[0].Title)
		})
	}
}

func TestFallbackLoader_BothFail(t *testing.T) {
	s3 := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			return nil, errors.New("S3 error")
		},
	}
	local := &mockLoader{
		loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			return nil, errors.New("file not found")
		},
	}

	fallback := NewFallbackLoader(s3, local, "catalog/", true, zerolog.Nop())

	products, err := fallback.Load(context.Background(), "test.gz")
	assert.Error(t, err)
	assert.Nil(t, products)
	assert.Contains(t, err.Error(), "file not found")
}
