package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

type EntityInterface interface {
	// Create adds an entity to the tree. parent is nil for a root entity.
	//
	// When entity.UUID is the zero uuid, a fresh one is assigned.
	//
	// Causes an error wrapping domain.ErrValidation when the name violates
	// the naming rule, and one wrapping domain.ErrConflict when a sibling
	// with the same name exists. The uniqueness check is a database
	// constraint, so concurrent creations cannot race it.
	Create(ctx context.Context, entity domain.Entity) (domain.Entity, error)

	// Get retrieves entities identified by uuids.
	//
	// returns: mapping from uuid to record. uuids with no record are
	// left out silently.
	Get(ctx context.Context, uuids []uuid.UUID) (map[uuid.UUID]domain.Entity, error)

	// Roots returns the root entities in name order.
	Roots(ctx context.Context) ([]domain.Entity, error)

	// Children returns the child entities of parent in name order.
	Children(ctx context.Context, parent uuid.UUID) ([]domain.Entity, error)

	// ResolvePath walks the tree from a root named segments[0] down
	// through children matching each following segment.
	//
	// The walk is driven by the (parent, name) index: cost is O(depth),
	// never a full scan.
	//
	// Causes an error wrapping domain.ErrNotFound when any segment does
	// not match.
	ResolvePath(ctx context.Context, segments []string) (domain.Entity, error)

	// FullPath returns the names of the ancestors of the entity,
	// root first, the entity itself last.
	//
	// ResolvePath(FullPath(e)) == e for every entity e.
	FullPath(ctx context.Context, uuid uuid.UUID) ([]string, error)

	// Delete removes the entity, its subtree, and in cascade all
	// quantities and data files owned by removed entities.
	// Siblings are untouched.
	Delete(ctx context.Context, uuid uuid.UUID) error
}
