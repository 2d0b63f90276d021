package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhotoPrefix is the key prefix for spot photos.
const PhotoPrefix = "parking_spot_photos/"

// Storage is the blob store used for spot photos.
type Storage interface {
	// Put stores the object under key, replacing any existing one.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for key.
	GetURL(key string) string
}

// Config selects and configures a backend.
type Config struct {
	Driver string // local, s3, r2

	LocalPath string
	PublicURL string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	R2 R2Config
}

// New builds the configured backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicURL)
	case "s3":
		return NewS3Storage(cfg)
	case "r2":
		return NewR2Storage(cfg.R2)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// PhotoKey builds parking_spot_photos/{unixMillis}-{ownerId}.jpg.
func PhotoKey(ownerID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s%d-%s.jpg", PhotoPrefix, at.UnixMilli(), ownerID)
}

// KeyFromURL recovers the object key from a URL produced by st.GetURL.
func KeyFromURL(st Storage, url string) (string, bool) {
	base := st.GetURL("")
	if url == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	key := strings.TrimPrefix(url, base)
	if !strings.HasPrefix(key, PhotoPrefix) {
		return "", false
	}
	return key, true
}
