package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"staygrow/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ErrDisabled is returned when storage is not configured.
var ErrDisabled = errors.New("storage service not configured")

// Config holds MinIO connection settings.
type Config struct {
	Endpoint        string // e.g. "minio:9000"
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	// PublicURL prefixes returned object URLs; defaults to the endpoint.
	PublicURL string
}

// Client stores showcase images in a single bucket.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
	enabled   bool
}

// NewClient creates a storage client. An empty Endpoint yields a disabled
// client whose operations return ErrDisabled.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{enabled: false}, nil
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return &Client{mc: mc, bucket: cfg.Bucket, publicURL: publicURL, enabled: true}, nil
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// EnsureBucket creates the image bucket if it does not exist (idempotent).
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.enabled {
		return ErrDisabled
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Upload stores reader under a fresh key derived from name's extension and
// returns where it can be fetched.
func (c *Client) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (models.UploadResult, error) {
	if !c.enabled {
		return models.UploadResult{}, ErrDisabled
	}

	key := ObjectKey(name)
	info, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Info().Str("bucket", c.bucket).Str("key", key).Int64("size", info.Size).Msg("Uploaded image")
	return models.UploadResult{
		URL:  c.publicURL + "/" + c.bucket + "/" + key,
		Key:  key,
		Size: info.Size,
	}, nil
}

// Delete removes an uploaded object.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return ErrDisabled
	}
	return c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}

// ObjectKey returns "showcase/<uuid><ext>" with name's lower-cased extension.
// The client-supplied name never reaches the key otherwise.
func ObjectKey(name string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(name, "\\", "/"))))
	if len(ext) > 8 || strings.ContainsAny(ext, " /") {
		ext = ""
	}
	return "showcase/" + uuid.NewString() + ext
}
