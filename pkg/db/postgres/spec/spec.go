package spec

import (
	"context"

	"github.com/google/uuid"

	kpgintr "github.com/ziotom78/instrumentdb/pkg/db/postgres/internal"
	kpool "github.com/ziotom78/instrumentdb/pkg/db/postgres/pool"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type specPG struct { // implements db.SpecInterface
	pool kpool.Pool
}

func New(pool kpool.Pool) *specPG {
	return &specPG{pool: pool}
}

func (s *specPG) Create(ctx context.Context, spec domain.FormatSpecification) (domain.FormatSpecification, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return domain.FormatSpecification{}, err
	}
	defer conn.Release()

	return kpgintr.CreateSpec(ctx, conn, spec)
}

func (s *specPG) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetSpecs(ctx, conn, uuids)
}

func (s *specPG) GetByDocumentRef(ctx context.Context, documentRef string) (domain.FormatSpecification, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return domain.FormatSpecification{}, err
	}
	defer conn.Release()

	return kpgintr.GetSpecByDocumentRef(ctx, conn, documentRef)
}

func (s *specPG) List(ctx context.Context) ([]domain.FormatSpecification, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.ListSpecs(ctx, conn)
}

func (s *specPG) Delete(ctx context.Context, id uuid.UUID) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return kpgintr.DeleteSpec(ctx, conn, id)
}
