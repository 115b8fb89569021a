package mocks

import (
	"context"
	"errors"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
)

type SchemaInterface struct {
	Impl struct {
		Upgrade func(context.Context) error
		Version func(context.Context) (int, error)
	}
	Calls struct {
		Upgrade CallLog[struct{}]
		Version CallLog[struct{}]
	}
}

func NewSchemaInterface() *SchemaInterface {
	return &SchemaInterface{}
}

var _ kdb.SchemaInterface = &SchemaInterface{}

func (m *SchemaInterface) Upgrade(ctx context.Context) error {
	m.Calls.Upgrade = append(m.Calls.Upgrade, struct{}{})
	if m.Impl.Upgrade != nil {
		return m.Impl.Upgrade(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (m *SchemaInterface) Version(ctx context.Context) (int, error) {
	m.Calls.Version = append(m.Calls.Version, struct{}{})
	if m.Impl.Version != nil {
		return m.Impl.Version(ctx)
	}
	panic(errors.New("it should not be called"))
}
