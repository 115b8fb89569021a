package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type DataFileInterface struct {
	Impl struct {
		Upload         func(context.Context, domain.DataFile) (domain.DataFile, error)
		Get            func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.DataFile, error)
		CurrentVersion func(context.Context, uuid.UUID) (domain.DataFile, error)
		AllVersions    func(context.Context, uuid.UUID) ([]domain.DataFile, error)
		AddDependency  func(context.Context, uuid.UUID, uuid.UUID) error
		Update         func(context.Context, uuid.UUID, kdb.DataFileUpdate) error
		Delete         func(context.Context, uuid.UUID) error
	}
	Calls struct {
		Upload         CallLog[struct{ File domain.DataFile }]
		Get            CallLog[struct{ UUIDs []uuid.UUID }]
		CurrentVersion CallLog[struct{ Quantity uuid.UUID }]
		AllVersions    CallLog[struct{ Quantity uuid.UUID }]
		AddDependency  CallLog[struct {
			File       uuid.UUID
			Dependency uuid.UUID
		}]
		Update CallLog[struct {
			UUID  uuid.UUID
			Delta kdb.DataFileUpdate
		}]
		Delete CallLog[struct{ UUID uuid.UUID }]
	}
}

func NewDataFileInterface() *DataFileInterface {
	return &DataFileInterface{}
}

var _ kdb.DataFileInterface = &DataFileInterface{}

func (m *DataFileInterface) Upload(ctx context.Context, file domain.DataFile) (domain.DataFile, error) {
	m.Calls.Upload = append(m.Calls.Upload, struct{ File domain.DataFile }{File: file})
	if m.Impl.Upload != nil {
		return m.Impl.Upload(ctx, file)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.DataFile, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ UUIDs []uuid.UUID }{UUIDs: uuids})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, uuids)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) CurrentVersion(ctx context.Context, quantity uuid.UUID) (domain.DataFile, error) {
	m.Calls.CurrentVersion = append(m.Calls.CurrentVersion, struct{ Quantity uuid.UUID }{Quantity: quantity})
	if m.Impl.CurrentVersion != nil {
		return m.Impl.CurrentVersion(ctx, quantity)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) AllVersions(ctx context.Context, quantity uuid.UUID) ([]domain.DataFile, error) {
	m.Calls.AllVersions = append(m.Calls.AllVersions, struct{ Quantity uuid.UUID }{Quantity: quantity})
	if m.Impl.AllVersions != nil {
		return m.Impl.AllVersions(ctx, quantity)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) AddDependency(ctx context.Context, file uuid.UUID, dependency uuid.UUID) error {
	m.Calls.AddDependency = append(m.Calls.AddDependency, struct {
		File       uuid.UUID
		Dependency uuid.UUID
	}{
		File: file, Dependency: dependency,
	})
	if m.Impl.AddDependency != nil {
		return m.Impl.AddDependency(ctx, file, dependency)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) Update(ctx context.Context, id uuid.UUID, delta kdb.DataFileUpdate) error {
	m.Calls.Update = append(m.Calls.Update, struct {
		UUID  uuid.UUID
		Delta kdb.DataFileUpdate
	}{
		UUID: id, Delta: delta,
	})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, id, delta)
	}
	panic(errors.New("it should not be called"))
}

func (m *DataFileInterface) Delete(ctx context.Context, id uuid.UUID) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ UUID uuid.UUID }{UUID: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should not be called"))
}
