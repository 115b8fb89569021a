package mocks

import (
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
)

// Database bundles one mock per interface, pre-wired as an
// db.InstrumentDatabase.
type Database struct {
	SpecsMock      *SpecInterface
	EntitiesMock   *EntityInterface
	QuantitiesMock *QuantityInterface
	DataFilesMock  *DataFileInterface
	ReleasesMock   *ReleaseInterface
	ArchiveMock    *ArchiveInterface
	SchemaMock     *SchemaInterface
}

func NewDatabase() *Database {
	return &Database{
		SpecsMock:      NewSpecInterface(),
		EntitiesMock:   NewEntityInterface(),
		QuantitiesMock: NewQuantityInterface(),
		DataFilesMock:  NewDataFileInterface(),
		ReleasesMock:   NewReleaseInterface(),
		ArchiveMock:    NewArchiveInterface(),
		SchemaMock:     NewSchemaInterface(),
	}
}

var _ kdb.InstrumentDatabase = &Database{}

func (d *Database) Specs() kdb.SpecInterface          { return d.SpecsMock }
func (d *Database) Entities() kdb.EntityInterface     { return d.EntitiesMock }
func (d *Database) Quantities() kdb.QuantityInterface { return d.QuantitiesMock }
func (d *Database) DataFiles() kdb.DataFileInterface  { return d.DataFilesMock }
func (d *Database) Releases() kdb.ReleaseInterface    { return d.ReleasesMock }
func (d *Database) Archive() kdb.ArchiveInterface     { return d.ArchiveMock }
func (d *Database) Schema() kdb.SchemaInterface       { return d.SchemaMock }
func (d *Database) Close() error                      { return nil }
