package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	apiquantities "github.com/ziotom78/instrumentdb/pkg/api/types/quantities"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

func CreateQuantityHandler(dbQuantities kdb.QuantityInterface, dbSpecs kdb.SpecInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		creation := apiquantities.Creation{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&creation); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		entity, err := uuid.Parse(creation.Entity)
		if err != nil {
			return apierr.BadRequest("bad entity uuid", err)
		}

		quantity := domain.Quantity{Name: creation.Name, Entity: entity}
		if creation.UUID != "" {
			id, err := uuid.Parse(creation.UUID)
			if err != nil {
				return apierr.BadRequest("bad uuid", err)
			}
			quantity.UUID = id
		}

		// format_spec may be a uuid or a document_ref
		if creation.FormatSpec != "" {
			if id, err := uuid.Parse(creation.FormatSpec); err == nil {
				quantity.FormatSpec = id
			} else {
				spec, err := dbSpecs.GetByDocumentRef(ctx, creation.FormatSpec)
				if err != nil {
					return apierr.FromError(err)
				}
				quantity.FormatSpec = spec.UUID
			}
		}

		created, err := dbQuantities.Create(ctx, quantity)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusCreated, apiquantities.ComposeDetail(created))
	}
}

func GetQuantityHandler(dbQuantities kdb.QuantityInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		quantities, err := dbQuantities.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		quantity, ok := quantities[id]
		if !ok {
			return apierr.NotFound()
		}
		return c.JSON(http.StatusOK, apiquantities.ComposeDetail(quantity))
	}
}

func ListQuantitiesHandler(dbQuantities kdb.QuantityInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var quantities []domain.Quantity
		var err error
		if entityParam := c.QueryParam("entity"); entityParam != "" {
			entity, perr := uuid.Parse(entityParam)
			if perr != nil {
				return apierr.BadRequest("bad entity uuid", perr)
			}
			quantities, err = dbQuantities.ListByEntity(ctx, entity)
		} else {
			quantities, err = dbQuantities.List(ctx)
		}
		if err != nil {
			return apierr.FromError(err)
		}

		found := make([]apiquantities.Detail, 0, len(quantities))
		for _, quantity := range quantities {
			found = append(found, apiquantities.ComposeDetail(quantity))
		}
		return c.JSON(http.StatusOK, found)
	}
}

func DeleteQuantityHandler(dbQuantities kdb.QuantityInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbQuantities.Delete(ctx, id); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
