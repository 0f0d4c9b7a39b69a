package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LocalStorage writes uploads to a directory on disk. It is the fallback when
// no Cloudinary credentials are configured, mainly for development and tests.
type LocalStorage struct {
	root    string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStorage constructs a disk-backed storage rooted at dir. Files are
// served from baseURL by the surrounding static file handler.
func NewLocalStorage(dir, baseURL string, logger zerolog.Logger) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Upload writes the file under a sanitized, timestamped name.
func (s *LocalStorage) Upload(ctx context.Context, name string, reader io.Reader) (StoredFile, error) {
	fileName := buildFileName(name)
	path := filepath.Join(s.root, fileName)

	out, err := os.Create(path)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Info().Str("file", fileName).Msg("file stored on local disk")

	return StoredFile{
		URL:      s.baseURL + "/" + fileName,
		PublicID: fileName,
	}, nil
}

// Destroy removes the file from disk. A missing file is not an error.
func (s *LocalStorage) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	path := filepath.Join(s.root, filepath.Base(publicID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func buildFileName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s-%d%s", base, time.Now().UnixNano(), ext)
}
