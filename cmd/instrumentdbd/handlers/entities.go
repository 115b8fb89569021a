package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apientities "github.com/ziotom78/instrumentdb/pkg/api/types/entities"
	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	apiquantities "github.com/ziotom78/instrumentdb/pkg/api/types/quantities"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

func CreateEntityHandler(dbEntities kdb.EntityInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		creation := apientities.Creation{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&creation); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		entity := domain.Entity{Name: creation.Name}
		if creation.UUID != "" {
			id, err := uuid.Parse(creation.UUID)
			if err != nil {
				return apierr.BadRequest("bad uuid", err)
			}
			entity.UUID = id
		}
		if creation.Parent != "" {
			parent, err := uuid.Parse(creation.Parent)
			if err != nil {
				return apierr.BadRequest("bad parent uuid", err)
			}
			entity.Parent = &parent
		}

		created, err := dbEntities.Create(ctx, entity)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusCreated, apientities.ComposeDetail(created))
	}
}

// ListEntitiesHandler returns the root entities, or the children of
// ?parent=<uuid>.
func ListEntitiesHandler(dbEntities kdb.EntityInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var entities []domain.Entity
		var err error
		if parentParam := c.QueryParam("parent"); parentParam != "" {
			parent, perr := uuid.Parse(parentParam)
			if perr != nil {
				return apierr.BadRequest("bad parent uuid", perr)
			}
			entities, err = dbEntities.Children(ctx, parent)
		} else {
			entities, err = dbEntities.Roots(ctx)
		}
		if err != nil {
			return apierr.FromError(err)
		}

		found := make([]apientities.Detail, 0, len(entities))
		for _, entity := range entities {
			found = append(found, apientities.ComposeDetail(entity))
		}
		return c.JSON(http.StatusOK, found)
	}
}

func GetEntityHandler(dbEntities kdb.EntityInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		entities, err := dbEntities.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		entity, ok := entities[id]
		if !ok {
			return apierr.NotFound()
		}

		segments, err := dbEntities.FullPath(ctx, id)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(
			http.StatusOK, apientities.ComposeDetailWithPath(entity, segments),
		)
	}
}

func DeleteEntityHandler(dbEntities kdb.EntityInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbEntities.Delete(ctx, id); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// TreeNode is the response of the tree navigation endpoint: an entity
// with its quantities and children, or a single quantity when the last
// path segment named one.
type TreeNode struct {
	Entity     *apientities.Detail    `json:"entity,omitempty"`
	Quantities []apiquantities.Detail `json:"quantities,omitempty"`
	Children   []apientities.Detail   `json:"children,omitempty"`
	Quantity   *apiquantities.Detail  `json:"quantity,omitempty"`
}

// TreeHandler resolves a slash path against the entity tree. Every
// segment names a child entity, except possibly the last, which may name
// a quantity of the entity reached by the preceding segments.
func TreeHandler(dbEntities kdb.EntityInterface, dbQuantities kdb.QuantityInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		segments := domain.SplitPath(c.Param("*"))
		if len(segments) == 0 {
			return apierr.BadRequest("empty path", domain.ErrValidation)
		}

		entity, err := dbEntities.ResolvePath(ctx, segments)
		if err == nil {
			quantities, err := dbQuantities.ListByEntity(ctx, entity.UUID)
			if err != nil {
				return apierr.FromError(err)
			}
			children, err := dbEntities.Children(ctx, entity.UUID)
			if err != nil {
				return apierr.FromError(err)
			}

			detail := apientities.ComposeDetailWithPath(entity, segments)
			node := TreeNode{Entity: &detail}
			for _, quantity := range quantities {
				node.Quantities = append(
					node.Quantities, apiquantities.ComposeDetail(quantity),
				)
			}
			for _, child := range children {
				node.Children = append(
					node.Children, apientities.ComposeDetail(child),
				)
			}
			return c.JSON(http.StatusOK, node)
		}

		// the last segment may name a quantity instead
		if len(segments) < 2 {
			return apierr.NotFound()
		}
		owner, ownerErr := dbEntities.ResolvePath(ctx, segments[:len(segments)-1])
		if ownerErr != nil {
			return apierr.NotFound()
		}
		quantity, qErr := dbQuantities.GetByName(
			ctx, owner.UUID, segments[len(segments)-1],
		)
		if qErr != nil {
			return apierr.NotFound()
		}

		detail := apiquantities.ComposeDetail(quantity)
		return c.JSON(http.StatusOK, TreeNode{Quantity: &detail})
	}
}
