package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type ReleaseInterface interface {
	// Create registers a release with an initial (possibly empty) set of
	// member data files, given in release.DataFiles.
	//
	// When release.RelDate is the zero time, the current time is recorded.
	//
	// Causes an error wrapping domain.ErrValidation on a bad tag,
	// domain.ErrConflict when the tag is taken, and a domain.Problems
	// batch listing every unknown member uuid.
	Create(ctx context.Context, release domain.Release) (domain.Release, error)

	// Get retrieves the release with its member list.
	//
	// Causes an error wrapping domain.ErrNotFound when the tag is unknown.
	Get(ctx context.Context, tag string) (domain.Release, error)

	// List returns every release, most recent first.
	List(ctx context.Context) ([]domain.Release, error)

	// Attach adds a data file to the release. Attaching a member twice
	// is a no-op: membership is a set, whichever side it is edited from.
	Attach(ctx context.Context, tag string, file uuid.UUID) error

	// Detach removes a data file from the release. Detaching a
	// non-member is a no-op.
	Detach(ctx context.Context, tag string, file uuid.UUID) error

	// Resolve returns the member data file of this release under the
	// quantity named quantityName of the entity at entityPath.
	//
	// Causes an error wrapping domain.ErrNotFound when the path, the
	// quantity or the membership is missing, and domain.ErrTooMuch when
	// more than one version of the quantity is tagged with this release
	// (a caller error: a release holds one version per quantity).
	Resolve(ctx context.Context, tag string, entityPath []string, quantityName string) (domain.DataFile, error)

	// SetDumpFile records the storage ref of the document-only dump
	// generated for the release.
	SetDumpFile(ctx context.Context, tag string, dump domain.StorageRef) error

	// Delete removes the release. Member data files are only detached.
	Delete(ctx context.Context, tag string) error
}
