package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// fsStore keeps payloads as plain files under a root directory.
// The storage ref of a payload is its path relative to the root.
type fsStore struct {
	root string
}

var _ Store = &fsStore{}

// NewFs returns a Store backed by the given directory, creating it
// when missing.
func NewFs(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return &fsStore{root: root}, nil
}

// resolve maps a ref to an absolute path, rejecting refs escaping root.
func (s *fsStore) resolve(ref string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(ref))
	if cleaned == "/" || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: bad ref %q", domain.ErrStorage, ref)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *fsStore) Put(_ context.Context, suggestedName string, r io.Reader) (domain.StorageRef, error) {
	path, err := s.resolve(suggestedName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return domain.StorageRef(suggestedName), nil
}

func (s *fsStore) Get(_ context.Context, ref domain.StorageRef) (io.ReadCloser, error) {
	path, err := s.resolve(string(ref))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no object for ref %q", domain.ErrStorage, ref)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return f, nil
}

func (s *fsStore) Delete(_ context.Context, ref domain.StorageRef) error {
	path, err := s.resolve(string(ref))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	return nil
}
