package release

import (
	"context"

	"github.com/google/uuid"

	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type releasePG struct { // implements db.ReleaseInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *releasePG {
	return &releasePG{pool: pool}
}

// Create runs in a transaction: either the release record and every
// initial member land together, or nothing does.
func (r *releasePG) Create(ctx context.Context, release domain.Release) (domain.Release, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Release{}, err
	}
	defer tx.Rollback(ctx)

	created, err := kpgintr.CreateRelease(ctx, tx, release)
	if err != nil {
		return domain.Release{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Release{}, err
	}
	return created, nil
}

func (r *releasePG) Get(ctx context.Context, tag string) (domain.Release, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.Release{}, err
	}
	defer conn.Release()

	return kpgintr.GetRelease(ctx, conn, tag)
}

func (r *releasePG) List(ctx context.Context) ([]domain.Release, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.ListReleases(ctx, conn)
}

func (r *releasePG) Attach(ctx context.Context, tag string, file uuid.UUID) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.AttachMember(ctx, conn, tag, file)
}

func (r *releasePG) Detach(ctx context.Context, tag string, file uuid.UUID) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DetachMember(ctx, conn, tag, file)
}

func (r *releasePG) Resolve(ctx context.Context, tag string, entityPath []string, quantityName string) (domain.DataFile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return domain.DataFile{}, err
	}
	defer conn.Release()

	return kpgintr.ResolveRelease(ctx, conn, tag, entityPath, quantityName)
}

func (r *releasePG) SetDumpFile(ctx context.Context, tag string, dump domain.StorageRef) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.SetDumpFile(ctx, conn, tag, dump)
}

func (r *releasePG) Delete(ctx context.Context, tag string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DeleteRelease(ctx, conn, tag)
}
