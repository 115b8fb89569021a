package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type QuantityInterface struct {
	Impl struct {
		Create       func(context.Context, domain.Quantity) (domain.Quantity, error)
		Get          func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.Quantity, error)
		GetByName    func(context.Context, uuid.UUID, string) (domain.Quantity, error)
		ListByEntity func(context.Context, uuid.UUID) ([]domain.Quantity, error)
		List         func(context.Context) ([]domain.Quantity, error)
		Delete       func(context.Context, uuid.UUID) error
	}
	Calls struct {
		Create    CallLog[struct{ Quantity domain.Quantity }]
		Get       CallLog[struct{ UUIDs []uuid.UUID }]
		GetByName CallLog[struct {
			Entity uuid.UUID
			Name   string
		}]
		ListByEntity CallLog[struct{ Entity uuid.UUID }]
		List         CallLog[struct{}]
		Delete       CallLog[struct{ UUID uuid.UUID }]
	}
}

func NewQuantityInterface() *QuantityInterface {
	return &QuantityInterface{}
}

var _ kdb.QuantityInterface = &QuantityInterface{}

func (m *QuantityInterface) Create(ctx context.Context, quantity domain.Quantity) (domain.Quantity, error) {
	m.Calls.Create = append(m.Calls.Create, struct{ Quantity domain.Quantity }{Quantity: quantity})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, quantity)
	}
	panic(errors.New("it should not be called"))
}

func (m *QuantityInterface) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Quantity, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ UUIDs []uuid.UUID }{UUIDs: uuids})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, uuids)
	}
	panic(errors.New("it should not be called"))
}

func (m *QuantityInterface) GetByName(ctx context.Context, entity uuid.UUID, name string) (domain.Quantity, error) {
	m.Calls.GetByName = append(m.Calls.GetByName, struct {
		Entity uuid.UUID
		Name   string
	}{
		Entity: entity, Name: name,
	})
	if m.Impl.GetByName != nil {
		return m.Impl.GetByName(ctx, entity, name)
	}
	panic(errors.New("it should not be called"))
}

func (m *QuantityInterface) ListByEntity(ctx context.Context, entity uuid.UUID) ([]domain.Quantity, error) {
	m.Calls.ListByEntity = append(m.Calls.ListByEntity, struct{ Entity uuid.UUID }{Entity: entity})
	if m.Impl.ListByEntity != nil {
		return m.Impl.ListByEntity(ctx, entity)
	}
	panic(errors.New("it should not be called"))
}

func (m *QuantityInterface) List(ctx context.Context) ([]domain.Quantity, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *QuantityInterface) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ UUID uuid.UUID }{UUID: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
