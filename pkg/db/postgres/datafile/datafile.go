package datafile

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/db"
	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type dataFilePG struct { // implements db.DataFileInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *dataFilePG {
	return &dataFilePG{pool: pool}
}

func (d *dataFilePG) Upload(ctx context.Context, file domain.DataFile) (domain.DataFile, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return domain.DataFile{}, err
	}
	defer tx.Rollback(ctx)

	created, err := kpgintr.UploadDataFile(ctx, tx, file)
	if err != nil {
		return domain.DataFile{}, err
	}
	for _, dependency := range file.Dependencies {
		if err := kpgintr.AddDependency(ctx, tx, created.UUID, dependency); err != nil {
			return domain.DataFile{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.DataFile{}, err
	}
	created.Dependencies = file.Dependencies
	return created, nil
}

func (d *dataFilePG) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.DataFile, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetDataFiles(ctx, conn, uuids)
}

func (d *dataFilePG) CurrentVersion(ctx context.Context, quantity uuid.UUID) (domain.DataFile, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return domain.DataFile{}, err
	}
	defer conn.Release()

	return kpgintr.CurrentVersion(ctx, conn, quantity)
}

func (d *dataFilePG) AllVersions(ctx context.Context, quantity uuid.UUID) ([]domain.DataFile, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.VersionsOfQuantity(ctx, conn, quantity)
}

func (d *dataFilePG) AddDependency(ctx context.Context, file uuid.UUID, dependency uuid.UUID) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.AddDependency(ctx, conn, file, dependency)
}

func (d *dataFilePG) Update(ctx context.Context, id uuid.UUID, delta db.DataFileUpdate) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.UpdateDataFile(ctx, conn, id, delta.Metadata, delta.Comment)
}

func (d *dataFilePG) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DeleteDataFile(ctx, conn, id)
}
