package handlers

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/dump"
	"github.com/ziotom78/instrumentdb/pkg/metrics"
	"github.com/ziotom78/instrumentdb/pkg/schema"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

// ImportSchemaHandler ingests a whole document (YAML or JSON) in one
// transaction. Documents referencing payload files are rejected: over
// HTTP only the records travel, payloads go through the admin tool.
// Releases named by the document get their JSON dump regenerated once
// the records are committed.
func ImportSchemaHandler(archive kdb.ArchiveInterface, dbReleases kdb.ReleaseInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		doc, err := schema.Decode(c.Request().Body)
		if err != nil {
			metrics.ImportsTotal.WithLabelValues("rejected").Inc()
			return apierr.BadRequest("unparsable document", err)
		}
		plan, err := schema.Flatten(doc)
		if err != nil {
			metrics.ImportsTotal.WithLabelValues("rejected").Inc()
			return apierr.FromError(err)
		}
		if plan.HasAttachments() {
			metrics.ImportsTotal.WithLabelValues("rejected").Inc()
			return apierr.BadRequest(
				"the document references payload files; "+
					"documents with payloads go through the admin tool",
				domain.ErrValidation,
			)
		}

		if err := archive.Import(ctx, plan); err != nil {
			metrics.ImportsTotal.WithLabelValues("failed").Inc()
			return apierr.FromError(err)
		}
		for _, r := range plan.Releases {
			if err := dump.Refresh(ctx, archive, dbReleases, store, r.Release.Tag); err != nil {
				metrics.ImportsTotal.WithLabelValues("failed").Inc()
				return apierr.FromError(err)
			}
		}
		metrics.ImportsTotal.WithLabelValues("ok").Inc()
		return c.NoContent(http.StatusCreated)
	}
}

// ExportSchemaHandler serializes the store, or one release with
// ?release=<tag>, as a document. ?format= picks yaml (default) or json;
// ?only_tree= and ?skip_empty= trim the output.
func ExportSchemaHandler(archive kdb.ArchiveInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		snapshot, err := archive.Export(
			ctx, schema.Selection{ReleaseTag: c.QueryParam("release")},
		)
		if err != nil {
			metrics.ExportsTotal.WithLabelValues("failed").Inc()
			return apierr.FromError(err)
		}

		options := schema.Options{
			NoAttachments:       true,
			OnlyTree:            c.QueryParam("only_tree") == "true",
			SkipEmptyEntities:   c.QueryParam("skip_empty") == "true",
			SkipEmptyQuantities: c.QueryParam("skip_empty") == "true",
		}
		doc, _ := schema.Compose(snapshot, options)

		buffer := bytes.Buffer{}
		mime := "application/yaml"
		switch format := c.QueryParam("format"); format {
		case "json":
			mime = echo.MIMEApplicationJSON
			err = schema.EncodeJSON(&buffer, doc)
		case "yaml", "":
			err = schema.EncodeYAML(&buffer, doc)
		default:
			metrics.ExportsTotal.WithLabelValues("rejected").Inc()
			return apierr.BadRequest(
				`unknown format `+format+`, use "yaml" or "json"`,
				domain.ErrValidation,
			)
		}
		if err != nil {
			metrics.ExportsTotal.WithLabelValues("failed").Inc()
			return apierr.InternalServerError(err)
		}
		metrics.ExportsTotal.WithLabelValues("ok").Inc()
		return c.Blob(http.StatusOK, mime, buffer.Bytes())
	}
}
