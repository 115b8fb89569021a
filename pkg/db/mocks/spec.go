package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type SpecInterface struct {
	Impl struct {
		Create           func(context.Context, domain.FormatSpecification) (domain.FormatSpecification, error)
		Get              func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error)
		GetByDocumentRef func(context.Context, string) (domain.FormatSpecification, error)
		List             func(context.Context) ([]domain.FormatSpecification, error)
		Delete           func(context.Context, uuid.UUID) error
	}
	Calls struct {
		Create           CallLog[struct{ Spec domain.FormatSpecification }]
		Get              CallLog[struct{ UUIDs []uuid.UUID }]
		GetByDocumentRef CallLog[struct{ DocumentRef string }]
		List             CallLog[struct{}]
		Delete           CallLog[struct{ UUID uuid.UUID }]
	}
}

func NewSpecInterface() *SpecInterface {
	return &SpecInterface{}
}

var _ kdb.SpecInterface = &SpecInterface{}

func (m *SpecInterface) Create(ctx context.Context, spec domain.FormatSpecification) (domain.FormatSpecification, error) {
	m.Calls.Create = append(m.Calls.Create, struct{ Spec domain.FormatSpecification }{Spec: spec})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *SpecInterface) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ UUIDs []uuid.UUID }{UUIDs: uuids})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, uuids)
	}
	panic(errors.New("it should not be called"))
}

func (m *SpecInterface) GetByDocumentRef(ctx context.Context, documentRef string) (domain.FormatSpecification, error) {
	m.Calls.GetByDocumentRef = append(m.Calls.GetByDocumentRef, struct{ DocumentRef string }{DocumentRef: documentRef})
	if m.Impl.GetByDocumentRef != nil {
		return m.Impl.GetByDocumentRef(ctx, documentRef)
	}
	panic(errors.New("it should not be called"))
}

func (m *SpecInterface) List(ctx context.Context) ([]domain.FormatSpecification, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *SpecInterface) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ UUID uuid.UUID }{UUID: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
