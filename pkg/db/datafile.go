package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// DataFileUpdate carries the only in-place edits a data file accepts.
// Everything else about an uploaded version is immutable; new content
// means a new upload.
type DataFileUpdate struct {
	Metadata *string
	Comment  *string
}

type DataFileInterface interface {
	// Upload registers a new version under file.Quantity.
	//
	// Prior versions are never touched: the current version of a quantity
	// is derived from the ordering, not stored.
	//
	// When file.UUID is the zero uuid, a fresh one is assigned. When
	// file.UploadDate is the zero time, the current time is recorded.
	// Dependencies carried by file are linked in the same transaction as
	// the record: the version either lands fully linked or not at all.
	// Release tags are ignored here; use ReleaseInterface.Attach.
	//
	// Causes an error wrapping domain.ErrValidation when metadata is
	// oversized or malformed, or when a plot payload comes without its
	// MIME type (or the type without a payload); domain.ErrNotFound when
	// the quantity or a declared dependency does not exist.
	Upload(ctx context.Context, file domain.DataFile) (domain.DataFile, error)

	// Get retrieves data files identified by uuids, with their dependency
	// sets and release tags.
	//
	// returns: mapping from uuid to record. uuids with no record are
	// left out silently.
	Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.DataFile, error)

	// CurrentVersion returns the most recent version of the quantity:
	// the first data file ordered by upload date descending, name, uuid.
	//
	// Causes an error wrapping domain.ErrNotFound when the quantity has
	// no data files (or does not exist).
	CurrentVersion(ctx context.Context, quantity uuid.UUID) (domain.DataFile, error)

	// AllVersions returns every version of the quantity, most recent
	// first (same ordering as CurrentVersion).
	AllVersions(ctx context.Context, quantity uuid.UUID) ([]domain.DataFile, error)

	// AddDependency records that file was produced using dependency.
	// Adding an already-recorded edge is a no-op.
	//
	// The dependency graph is not checked for cycles.
	//
	// Causes an error wrapping domain.ErrNotFound when either end does
	// not exist.
	AddDependency(ctx context.Context, file uuid.UUID, dependency uuid.UUID) error

	// Update edits the metadata and/or comment of a data file.
	// Nil fields are left as they are.
	Update(ctx context.Context, uuid uuid.UUID, delta DataFileUpdate) error

	// Delete removes the data file. Dependency edges and release
	// memberships touching it are removed in cascade.
	Delete(ctx context.Context, uuid uuid.UUID) error
}
