package db

import "context"

type SchemaInterface interface {
	// Upgrade brings the database schema to the version this build
	// requires. It is safe to call on every start.
	Upgrade(ctx context.Context) error

	// Version returns the current schema version, 0 for a pristine
	// database.
	Version(ctx context.Context) (int, error)
}
