package mocks

import (
	"context"
	"errors"

	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/schema"
)

type ArchiveInterface struct {
	Impl struct {
		Import func(context.Context, *schema.Plan) error
		Export func(context.Context, schema.Selection) (*schema.Snapshot, error)
	}
	Calls struct {
		Import CallLog[struct{ Plan *schema.Plan }]
		Export CallLog[struct{ Selection schema.Selection }]
	}
}

func NewArchiveInterface() *ArchiveInterface {
	return &ArchiveInterface{}
}

var _ kdb.ArchiveInterface = &ArchiveInterface{}

func (m *ArchiveInterface) Import(ctx context.Context, plan *schema.Plan) error {
	m.Calls.Import = append(m.Calls.Import, struct{ Plan *schema.Plan }{Plan: plan})
	if m.Impl.Import != nil {
		return m.Impl.Import(ctx, plan)
	}
	panic(errors.New("it should not be called"))
}

func (m *ArchiveInterface) Export(ctx context.Context, selection schema.Selection) (*schema.Snapshot, error) {
	m.Calls.Export = append(m.Calls.Export, struct{ Selection schema.Selection }{Selection: selection})
	if m.Impl.Export != nil {
		return m.Impl.Export(ctx, selection)
	}
	panic(errors.New("it should not be called"))
}
