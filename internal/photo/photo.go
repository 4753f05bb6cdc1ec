// Package photo stores check-in photos and hands back opaque references.
package photo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store accepts raw image bytes and returns a stored reference string.
// Remove discards a stored photo whose reference was never persisted.
type Store interface {
	Save(ctx context.Context, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}

// DiskStore writes photos as files under a base directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the bytes to a uniquely named file and returns its name.
func (s *DiskStore) Save(_ context.Context, data []byte) (string, error) {
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return name, nil
}

// Remove deletes a stored photo file.
func (s *DiskStore) Remove(_ context.Context, ref string) error {
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}
