package mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type ReleaseInterface struct {
	Impl struct {
		Create      func(context.Context, domain.Release) (domain.Release, error)
		Get         func(context.Context, string) (domain.Release, error)
		List        func(context.Context) ([]domain.Release, error)
		Attach      func(context.Context, string, uuid.UUID) error
		Detach      func(context.Context, string, uuid.UUID) error
		Resolve     func(context.Context, string, []string, string) (domain.DataFile, error)
		SetDumpFile func(context.Context, string, domain.StorageRef) error
		Delete      func(context.Context, string) error
	}
	Calls struct {
		Create CallLog[struct{ Release domain.Release }]
		Get    CallLog[struct{ Tag string }]
		List   CallLog[struct{}]
		Attach CallLog[struct {
			Tag  string
			File uuid.UUID
		}]
		Detach CallLog[struct {
			Tag  string
			File uuid.UUID
		}]
		Resolve CallLog[struct {
			Tag          string
			EntityPath   []string
			QuantityName string
		}]
		SetDumpFile CallLog[struct {
			Tag  string
			Dump domain.StorageRef
		}]
		Delete CallLog[struct{ Tag string }]
	}
}

func NewReleaseInterface() *ReleaseInterface {
	return &ReleaseInterface{}
}

var _ kdb.ReleaseInterface = &ReleaseInterface{}

func (m *ReleaseInterface) Create(ctx context.Context, release domain.Release) (domain.Release, error) {
	m.Calls.Create = append(m.Calls.Create, struct{ Release domain.Release }{Release: release})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, release)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Get(ctx context.Context, tag string) (domain.Release, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ Tag string }{Tag: tag})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, tag)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) List(ctx context.Context) ([]domain.Release, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Attach(ctx context.Context, tag string, file uuid.UUID) error {
	m.Calls.Attach = append(m.Calls.Attach, struct {
		Tag  string
		File uuid.UUID
	}{
		Tag: tag, File: file,
	})
	if m.Impl.Attach != nil {
		return m.Impl.Attach(ctx, tag, file)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Detach(ctx context.Context, tag string, file uuid.UUID) error {
	m.Calls.Detach = append(m.Calls.Detach, struct {
		Tag  string
		File uuid.UUID
	}{
		Tag: tag, File: file,
	})
	if m.Impl.Detach != nil {
		return m.Impl.Detach(ctx, tag, file)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Resolve(ctx context.Context, tag string, entityPath []string, quantityName string) (domain.DataFile, error) {
	m.Calls.Resolve = append(m.Calls.Resolve, struct {
		Tag          string
		EntityPath   []string
		QuantityName string
	}{
		Tag: tag, EntityPath: entityPath, QuantityName: quantityName,
	})
	if m.Impl.Resolve != nil {
		return m.Impl.Resolve(ctx, tag, entityPath, quantityName)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) SetDumpFile(ctx context.Context, tag string, dump domain.StorageRef) error {
	m.Calls.SetDumpFile = append(m.Calls.SetDumpFile, struct {
		Tag  string
		Dump domain.StorageRef
	}{
		Tag: tag, Dump: dump,
	})
	if m.Impl.SetDumpFile != nil {
		return m.Impl.SetDumpFile(ctx, tag, dump)
	}
	panic(errors.New("it should not be called"))
}

func (m *ReleaseInterface) Delete(ctx context.Context, tag string) error {
	m.Calls.Delete = append(m.Calls.Delete, struct{ Tag string }{Tag: tag})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, tag)
	}
	panic(errors.New("it should not be called"))
}
