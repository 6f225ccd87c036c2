package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/seatsurge/ticketd/internal/domain"
)

// ImageStore persists event images and returns the URL they are served
// under.
type ImageStore interface {
	Save(ctx context.Context, eventID, filename string, data io.Reader) (string, error)
}

// DiskImageStore stores images on the local filesystem. Files are named
// after the event so a re-upload replaces the previous image.
type DiskImageStore struct {
	baseDir string
	baseURL string
}

// NewDiskImageStore creates a DiskImageStore rooted at baseDir, serving
// under baseURL
func NewDiskImageStore(baseDir, baseURL string) (*DiskImageStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &DiskImageStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Save writes the image to disk and returns its serving URL
func (s *DiskImageStore) Save(ctx context.Context, eventID, filename string, data io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExts[ext] {
		return "", domain.ErrInvalidImageFormat
	}

	name := eventID + ext
	target := filepath.Join(s.baseDir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path.Join(s.baseURL, name), nil
}

var _ ImageStore = (*DiskImageStore)(nil)
