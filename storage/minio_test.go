package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_DisabledWithoutEndpoint(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	_, err = c.Upload(context.Background(), "a.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, c.EnsureBucket(context.Background()), ErrDisabled)
	assert.ErrorIs(t, c.Delete(context.Background(), "showcase/a.png"), ErrDisabled)
}

func TestNewClient_PublicURL(t *testing.T) {
	c, err := NewClient(Config{Endpoint: "localhost:9000", AccessKeyID: "ak", SecretAccessKey: "sk", Bucket: "b"})
	require.NoError(t, err)
	assert.True(t, c.Enabled())
	assert.Equal(t, "http://localhost:9000", c.publicURL)

	c, err = NewClient(Config{Endpoint: "minio:9000", AccessKeyID: "ak", SecretAccessKey: "sk", UseSSL: true, PublicURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", c.publicURL)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name string
		ext  string
	}{
		{"photo.PNG", ".png"},
		{"../../etc/passwd.jpg", ".jpg"},
		{`C:\Users\me\pic.webp`, ".webp"},
		{"noext", ""},
		{"weird.extensiontoolong", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey(tt.name)
			assert.True(t, strings.HasPrefix(key, "showcase/"))
			assert.True(t, strings.HasSuffix(key, tt.ext))
			assert.NotContains(t, key, "..")
			assert.Len(t, key, len("showcase/")+36+len(tt.ext))
		})
	}
}
