package entity

import (
	"context"

	"github.com/google/uuid"

	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type entityPG struct { // implements db.EntityInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *entityPG {
	return &entityPG{pool: pool}
}

func (e *entityPG) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return domain.Entity{}, err
	}
	defer conn.Release()

	return kpgintr.CreateEntity(ctx, conn, entity)
}

func (e *entityPG) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetEntities(ctx, conn, uuids)
}

func (e *entityPG) Roots(ctx context.Context) ([]domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.RootEntities(ctx, conn)
}

func (e *entityPG) Children(ctx context.Context, parent uuid.UUID) ([]domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.ChildEntities(ctx, conn, parent)
}

func (e *entityPG) ResolvePath(ctx context.Context, segments []string) (domain.Entity, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return domain.Entity{}, err
	}
	defer conn.Release()

	return kpgintr.ResolvePath(ctx, conn, segments)
}

func (e *entityPG) FullPath(ctx context.Context, id uuid.UUID) ([]string, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.FullPath(ctx, conn, id)
}

func (e *entityPG) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DeleteEntity(ctx, conn, id)
}
