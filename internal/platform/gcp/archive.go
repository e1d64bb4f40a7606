package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// Archive writes export artifacts to one bucket.
type Archive struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewArchive(ctx context.Context, log *logger.Logger, bucket string, cfg ObjectStorageConfig) (*Archive, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing EXPORT_ARCHIVE_BUCKET")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	l := log.With("service", "ExportArchive")
	l.Info("export archive initialized", "bucket", bucket, "mode", cfg.Mode, "emulator_host", cfg.EmulatorHost)
	return &Archive{log: l, client: client, bucket: bucket}, nil
}

func newStorageClient(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	if cfg.IsEmulatorMode() {
		// the storage client reads the emulator endpoint from the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	opts := append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	return storage.NewClient(ctx, opts...)
}

// Archive uploads data under key and returns its gs:// URI.
func (a *Archive) Archive(ctx context.Context, key, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object writer: %w", err)
	}
	a.log.Debug("artifact archived", "key", key, "bytes", len(data))
	return ObjectURI(a.bucket, key), nil
}

// Open streams an archived artifact back.
func (a *Archive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := a.client.Bucket(a.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ObjectURI(a.bucket, key), err)
	}
	return r, nil
}

func (a *Archive) Close() error {
	return a.client.Close()
}

func ObjectURI(bucket, key string) string {
	return "gs://" + bucket + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURI is the inverse of ObjectURI for this archive's bucket.
func (a *Archive) KeyFromURI(uri string) (string, bool) {
	prefix := "gs://" + a.bucket + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", false
	}
	return strings.TrimPrefix(uri, prefix), true
}
