package quantity

import (
	"context"

	"github.com/google/uuid"

	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type quantityPG struct { // implements db.QuantityInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *quantityPG {
	return &quantityPG{pool: pool}
}

func (q *quantityPG) Create(ctx context.Context, quantity domain.Quantity) (domain.Quantity, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return domain.Quantity{}, err
	}
	defer conn.Release()

	return kpgintr.CreateQuantity(ctx, conn, quantity)
}

func (q *quantityPG) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Quantity, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetQuantities(ctx, conn, uuids)
}

func (q *quantityPG) GetByName(ctx context.Context, entity uuid.UUID, name string) (domain.Quantity, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return domain.Quantity{}, err
	}
	defer conn.Release()

	return kpgintr.GetQuantityByName(ctx, conn, entity, name)
}

func (q *quantityPG) ListByEntity(ctx context.Context, entity uuid.UUID) ([]domain.Quantity, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.QuantitiesOfEntity(ctx, conn, entity)
}

func (q *quantityPG) List(ctx context.Context) ([]domain.Quantity, error) {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.ListQuantities(ctx, conn)
}

func (q *quantityPG) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := q.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DeleteQuantity(ctx, conn, id)
}
