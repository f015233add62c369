package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs under Dir and serves them below BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	filePath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", err
	}
	return normalize(key), nil
}

func (s *LocalStore) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return s.BaseURL + "/" + normalize(ref), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	filePath, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	clean := normalize(key)
	if clean == "" {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.Dir, filepath.FromSlash(clean)), nil
}

// normalize roots the key so ".." segments cannot climb out of Dir.
func normalize(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
