// Package postgres assembles the PostgreSQL implementation of
// db.InstrumentDatabase.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ziotom78/instrumentdb/pkg/db"
	kpgarchive "github.com/ziotom78/instrumentdb/pkg/db/postgres/archive"
	kpgdatafile "github.com/ziotom78/instrumentdb/pkg/db/postgres/datafile"
	kpgentity "github.com/ziotom78/instrumentdb/pkg/db/postgres/entity"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	kpgquantity "github.com/ziotom78/instrumentdb/pkg/db/postgres/quantity"
	kpgrelease "github.com/ziotom78/instrumentdb/pkg/db/postgres/release"
	kpgschema "github.com/ziotom78/instrumentdb/pkg/db/postgres/schema"
	kpgspec "github.com/ziotom78/instrumentdb/pkg/db/postgres/spec"
)

type instrumentDBPostgres struct {
	pool       *pgxpool.Pool
	specs      db.SpecInterface
	entities   db.EntityInterface
	quantities db.QuantityInterface
	dataFiles  db.DataFileInterface
	releases   db.ReleaseInterface
	archive    db.ArchiveInterface
	schema     db.SchemaInterface
}

// New connects to the database at url and returns the full interface
// bundle over one shared connection pool.
func New(ctx context.Context, url string) (db.InstrumentDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, err
	}

	p := kpool.Wrap(pool)
	return &instrumentDBPostgres{
		pool:       pool,
		specs:      kpgspec.New(p),
		entities:   kpgentity.New(p),
		quantities: kpgquantity.New(p),
		dataFiles:  kpgdatafile.New(p),
		releases:   kpgrelease.New(p),
		archive:    kpgarchive.New(p),
		schema:     kpgschema.New(p),
	}, nil
}

func (d *instrumentDBPostgres) Specs() db.SpecInterface {
	return d.specs
}

func (d *instrumentDBPostgres) Entities() db.EntityInterface {
	return d.entities
}

func (d *instrumentDBPostgres) Quantities() db.QuantityInterface {
	return d.quantities
}

func (d *instrumentDBPostgres) DataFiles() db.DataFileInterface {
	return d.dataFiles
}

func (d *instrumentDBPostgres) Releases() db.ReleaseInterface {
	return d.releases
}

func (d *instrumentDBPostgres) Archive() db.ArchiveInterface {
	return d.archive
}

func (d *instrumentDBPostgres) Schema() db.SchemaInterface {
	return d.schema
}

func (d *instrumentDBPostgres) Close() error {
	d.pool.Close()
	return nil
}
