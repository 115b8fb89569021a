package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type EntityInterface struct {
	Impl struct {
		Create      func(context.Context, domain.Entity) (domain.Entity, error)
		Get         func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.Entity, error)
		Roots       func(context.Context) ([]domain.Entity, error)
		Children    func(context.Context, uuid.UUID) ([]domain.Entity, error)
		ResolvePath func(context.Context, []string) (domain.Entity, error)
		FullPath    func(context.Context, uuid.UUID) ([]string, error)
		Delete      func(context.Context, uuid.UUID) error
	}
	Calls struct {
		Create      CallLog[struct{ Entity domain.Entity }]
		Get         CallLog[struct{ UUIDs []uuid.UUID }]
		Roots       CallLog[struct{}]
		Children    CallLog[struct{ Parent uuid.UUID }]
		ResolvePath CallLog[struct{ Segments []string }]
		FullPath    CallLog[struct{ UUID uuid.UUID }]
		Delete      CallLog[struct{ UUID uuid.UUID }]
	}
}

func NewEntityInterface() *EntityInterface {
	return &EntityInterface{}
}

var _ kdb.EntityInterface = &EntityInterface{}

func (m *EntityInterface) Create(ctx context.Context, entity domain.Entity) (domain.Entity, error) {
	m.Calls.Create = append(m.Calls.Create, struct{ Entity domain.Entity }{Entity: entity})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, entity)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Entity, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ UUIDs []uuid.UUID }{UUIDs: uuids})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, uuids)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) Roots(ctx context.Context) ([]domain.Entity, error) {
	m.Calls.Roots = append(m.Calls.Roots, struct{}{})
	if m.Impl.Roots != nil {
		return m.Impl.Roots(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) Children(ctx context.Context, parent uuid.UUID) ([]domain.Entity, error) {
	m.Calls.Children = append(m.Calls.Children, struct{ Parent uuid.UUID }{Parent: parent})
	if m.Impl.Children != nil {
		return m.Impl.Children(ctx, parent)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) ResolvePath(ctx context.Context, segments []string) (domain.Entity, error) {
	m.Calls.ResolvePath = append(m.Calls.ResolvePath, struct{ Segments []string }{Segments: segments})
	if m.Impl.ResolvePath != nil {
		return m.Impl.ResolvePath(ctx, segments)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) FullPath(ctx context.Context, id uuid.UUID) ([]string, error) {
	m.Calls.FullPath = append(m.Calls.FullPath, struct{ UUID uuid.UUID }{UUID: id})
	if m.Impl.FullPath != nil {
		return m.Impl.FullPath(ctx, id)
	}
	panic(errors.New("it should not be called"))
}

func (m *EntityInterface) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ UUID uuid.UUID }{UUID: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
