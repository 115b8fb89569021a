package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type SpecInterface interface {
	// Create registers a new format specification.
	//
	// When spec.UUID is the zero uuid, a fresh one is assigned.
	// Returns the stored record.
	//
	// Causes an error wrapping domain.ErrConflict when the uuid or the
	// document_ref is taken.
	Create(ctx context.Context, spec domain.FormatSpecification) (domain.FormatSpecification, error)

	// Get retrieves format specifications identified by uuids.
	//
	// returns: mapping from uuid to record. uuids with no record are
	// left out silently.
	Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error)

	// GetByDocumentRef retrieves the format specification with the given
	// document reference string.
	//
	// Causes an error wrapping domain.ErrNotFound when there is none.
	GetByDocumentRef(ctx context.Context, documentRef string) (domain.FormatSpecification, error)

	// List returns every format specification, ordered by document_ref.
	List(ctx context.Context) ([]domain.FormatSpecification, error)

	// Delete removes a format specification.
	//
	// Quantities referencing it are removed in cascade, with their
	// data files.
	Delete(ctx context.Context, uuid uuid.UUID) error
}
