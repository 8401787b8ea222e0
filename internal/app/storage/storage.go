package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"renovation/internal/app/config"

	"github.com/google/uuid"
)

// FileStorage keeps photos, documents and spec item images.
type FileStorage interface {
	UploadFile(ctx context.Context, data []byte, originalFilename, prefix string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(ctx context.Context, key string) (string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	FileExists(ctx context.Context, key string) (bool, error)
}

// New picks the driver named in the config.
func New(ctx context.Context, cfg config.StorageConfig) (FileStorage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "minio", "":
		return NewMinIOClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectKey builds "prefix/<uuid8>_<unix><ext>" with a lowercase extension.
func objectKey(prefix, originalFilename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := fmt.Sprintf("%s_%d%s", uuid.New().String()[:8], now.Unix(), ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".dwg":
		return "image/vnd.dwg"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether the file looks like a photo we accept.
func IsImage(filename string) bool {
	return strings.HasPrefix(contentType(filename), "image/") && !strings.HasSuffix(strings.ToLower(filename), ".dwg")
}
