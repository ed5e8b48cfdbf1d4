// Package filestore keeps uploaded images on local disk under a single root directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrOutsideRoot is returned for paths that do not name a file directly under the store root.
var ErrOutsideRoot = errors.New("path is outside the file store")

// FileInfo describes a stored file by its public relative path.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is a disk-backed image store. Stored files are referenced as "<prefix>/<name>".
type Store struct {
	root   string
	prefix string
}

// New creates the root directory if needed.
func New(root, prefix string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", root, err)
	}
	return &Store{root: root, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Save writes data under a fresh uuid name and returns its relative path.
// The extension comes from the sniffed content, not from the client file name.
func (s *Store) Save(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + mimetype.Detect(data).Extension()
	full := filepath.Join(s.root, name)

	// O_EXCL: a uuid collision must never overwrite another record's image.
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	return path.Join(s.prefix, name), nil
}

// Delete removes the file referenced by rel.
func (s *Store) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Exists reports whether rel names a stored file.
func (s *Store) Exists(rel string) bool {
	full, err := s.resolve(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// List returns every regular file in the store.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    path.Join(s.prefix, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// resolve maps "<prefix>/<name>" to a file directly inside root.
func (s *Store) resolve(rel string) (string, error) {
	rel = filepath.ToSlash(strings.TrimPrefix(rel, "/"))
	name := strings.TrimPrefix(rel, s.prefix+"/")
	if name == rel && s.prefix != "" {
		return "", ErrOutsideRoot
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(s.root, name), nil
}
