package db

// InstrumentDatabase bundles the persistence interfaces of the catalog.
type InstrumentDatabase interface {
	Specs() SpecInterface
	Entities() EntityInterface
	Quantities() QuantityInterface
	DataFiles() DataFileInterface
	Releases() ReleaseInterface
	Archive() ArchiveInterface
	Schema() SchemaInterface
	Close() error
}
