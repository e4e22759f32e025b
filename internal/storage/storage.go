// Package storage abstracts the object store that keeps avatar images.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is a stored blob: the public URL to serve it from and the opaque
// reference used to delete it later.
type Object struct {
	URL   string
	RefID string
}

// ObjectStorage stores and deletes binary objects. The disk implementation
// below serves local deployments; a cloud bucket can slot in behind the same
// interface.
type ObjectStorage interface {
	Store(ctx context.Context, data []byte, ext string) (Object, error)
	Delete(ctx context.Context, refID string) error
}

// DiskStorage writes objects under Dir and serves them at BaseURL. Keys are
// random UUIDs so uploads never collide or overwrite.
type DiskStorage struct {
	Dir     string
	BaseURL string
}

func NewDiskStorage(dir, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStorage{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *DiskStorage) Store(_ context.Context, data []byte, ext string) (Object, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return Object{}, err
	}
	return Object{URL: s.BaseURL + "/" + name, RefID: name}, nil
}

func (s *DiskStorage) Delete(_ context.Context, refID string) error {
	// refID is a bare UUID filename; reject anything that walks out of Dir
	if refID == "" || refID != filepath.Base(refID) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, refID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
