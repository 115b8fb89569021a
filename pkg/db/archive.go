package db

import (
	"context"

	"github.com/ziotom78/instrumentdb/pkg/schema"
)

type ArchiveInterface interface {
	// Import executes an import plan built by schema.Flatten.
	//
	// The whole plan runs inside one transaction: records are
	// materialized first, then dependency declarations are linked, then
	// releases are created and members attached. Dependency and member
	// references may point forward inside the plan or at pre-existing
	// records; references resolving to neither are collected into a
	// domain.Problems batch and the transaction is rolled back, leaving
	// the store exactly as it was.
	Import(ctx context.Context, plan *schema.Plan) error

	// Export reads a snapshot of the store: every specification, entity
	// and quantity, plus every data file and release or, when
	// selection.ReleaseTag is set, only that release and the data files
	// tagged with it.
	//
	// Record order inside the snapshot is the canonical one (names for
	// entities and quantities, newest first for data files), so a
	// document composed from it round-trips through Import.
	Export(ctx context.Context, selection schema.Selection) (*schema.Snapshot, error)
}
