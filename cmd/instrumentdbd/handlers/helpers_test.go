package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

// memStore keeps payloads in a map, for exercising handlers that stream
// to or from the object storage.
type memStore struct {
	payloads map[domain.StorageRef][]byte
}

var _ storage.Store = &memStore{}

func newMemStore() *memStore {
	return &memStore{payloads: map[domain.StorageRef][]byte{}}
}

func (s *memStore) Put(_ context.Context, suggestedName string, r io.Reader) (domain.StorageRef, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := domain.StorageRef(suggestedName)
	s.payloads[ref] = content
	return ref, nil
}

func (s *memStore) Get(_ context.Context, ref domain.StorageRef) (io.ReadCloser, error) {
	content, ok := s.payloads[ref]
	if !ok {
		return nil, fmt.Errorf("%w: no payload %s", domain.ErrStorage, ref)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *memStore) Delete(_ context.Context, ref domain.StorageRef) error {
	if _, ok := s.payloads[ref]; !ok {
		return fmt.Errorf("%w: no payload %s", domain.ErrStorage, ref)
	}
	delete(s.payloads, ref)
	return nil
}
