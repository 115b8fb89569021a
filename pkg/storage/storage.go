package storage

import (
	"context"
	"io"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Store is the binary object storage the catalog keeps payloads in:
// specification documents, data-file contents, plots, release documents.
//
// Implementations own durability and retries; callers treat every method
// as one bounded synchronous call and surface failures as-is.
type Store interface {
	// Put stores the content of r and returns a ref for it.
	//
	// suggestedName is a relative path like "data_files/<uuid>_<name>";
	// implementations may use it verbatim as the ref. Storing twice under
	// the same suggested name overwrites.
	Put(ctx context.Context, suggestedName string, r io.Reader) (domain.StorageRef, error)

	// Get opens the payload for reading. The caller closes it.
	Get(ctx context.Context, ref domain.StorageRef) (io.ReadCloser, error)

	// Delete removes the payload. Deleting an unknown ref is an error.
	Delete(ctx context.Context, ref domain.StorageRef) error
}
