package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Storage keeps published export files.
type Storage interface {
	UploadFile(ctx context.Context, filename string, content io.Reader, contentType string) (*UploadResult, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

type UploadResult struct {
	Key string
	URL string
}

// Publish uploads the file at path, detecting its content type.
func Publish(ctx context.Context, s Storage, path string) (*UploadResult, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()

	res, err := s.UploadFile(ctx, filepath.Base(path), f, mtype.String())
	if err != nil {
		return nil, err
	}
	slog.Info("export published", "key", res.Key, "url", res.URL, "content_type", mtype.String())
	return res, nil
}

// generateKey returns exports/<yyyy/mm/dd>/<base>_<uuid8><ext>.
func generateKey(filename string, now time.Time) string {
	ext := filepath.Ext(filename)
	basename := strings.TrimSuffix(filepath.Base(filename), ext)

	safeBasename := strings.ReplaceAll(basename, " ", "_")
	safeBasename = strings.ReplaceAll(safeBasename, "/", "_")

	timestamp := now.Format("2006/01/02")
	uniqueID := uuid.New().String()[:8]

	return fmt.Sprintf("exports/%s/%s_%s%s", timestamp, safeBasename, uniqueID, ext)
}
