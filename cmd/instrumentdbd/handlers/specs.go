package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	apispecs "github.com/ziotom78/instrumentdb/pkg/api/types/specs"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

func CreateSpecHandler(dbSpecs kdb.SpecInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		creation := apispecs.Creation{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&creation); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		spec := domain.FormatSpecification{
			DocumentRef:  creation.DocumentRef,
			Title:        creation.Title,
			DocFileName:  creation.DocFileName,
			DocMimeType:  creation.DocMimeType,
			FileMimeType: creation.FileMimeType,
		}
		if creation.UUID != "" {
			id, err := uuid.Parse(creation.UUID)
			if err != nil {
				return apierr.BadRequest("bad uuid", err)
			}
			spec.UUID = id
		}
		if spec.DocumentRef == "" {
			return apierr.BadRequest(
				"document_ref is required", domain.ErrValidation,
			)
		}

		created, err := dbSpecs.Create(ctx, spec)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusCreated, apispecs.ComposeDetail(created))
	}
}

func ListSpecsHandler(dbSpecs kdb.SpecInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		specs, err := dbSpecs.List(ctx)
		if err != nil {
			return apierr.FromError(err)
		}

		found := make([]apispecs.Detail, 0, len(specs))
		for _, spec := range specs {
			found = append(found, apispecs.ComposeDetail(spec))
		}
		return c.JSON(http.StatusOK, found)
	}
}

func GetSpecHandler(dbSpecs kdb.SpecInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		specs, err := dbSpecs.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		spec, ok := specs[id]
		if !ok {
			return apierr.NotFound()
		}
		return c.JSON(http.StatusOK, apispecs.ComposeDetail(spec))
	}
}

// GetSpecDocumentHandler streams the attached specification document.
func GetSpecDocumentHandler(dbSpecs kdb.SpecInterface, store storage.Store, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		specs, err := dbSpecs.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		spec, ok := specs[id]
		if !ok || spec.DocFile.Empty() {
			return apierr.NotFound()
		}

		payload, err := store.Get(ctx, spec.DocFile)
		if err != nil {
			return apierr.FromError(err)
		}
		defer payload.Close()

		mime := spec.DocMimeType
		if mime == "" {
			mime = echo.MIMEOctetStream
		}
		return c.Stream(http.StatusOK, mime, payload)
	}
}

func DeleteSpecHandler(dbSpecs kdb.SpecInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbSpecs.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apierr.NotFound()
			}
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
