package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type QuantityInterface interface {
	// Create attaches a quantity to an entity.
	//
	// When quantity.UUID is the zero uuid, a fresh one is assigned.
	//
	// Causes an error wrapping domain.ErrValidation on a bad name,
	// domain.ErrConflict when the entity already has a quantity with this
	// name, and domain.ErrNotFound when the entity or the format
	// specification does not exist.
	Create(ctx context.Context, quantity domain.Quantity) (domain.Quantity, error)

	// Get retrieves quantities identified by uuids.
	//
	// returns: mapping from uuid to record. uuids with no record are
	// left out silently.
	Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Quantity, error)

	// GetByName retrieves the quantity named name under the entity.
	//
	// Causes an error wrapping domain.ErrNotFound when there is none.
	GetByName(ctx context.Context, entity uuid.UUID, name string) (domain.Quantity, error)

	// ListByEntity returns the quantities of the entity in name order.
	ListByEntity(ctx context.Context, entity uuid.UUID) ([]domain.Quantity, error)

	// List returns every quantity, ordered by name then uuid.
	List(ctx context.Context) ([]domain.Quantity, error)

	// Delete removes the quantity and, in cascade, its data files.
	Delete(ctx context.Context, uuid uuid.UUID) error
}
