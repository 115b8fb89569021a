package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apidatafiles "github.com/ziotom78/instrumentdb/pkg/api/types/datafiles"
	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	apireleases "github.com/ziotom78/instrumentdb/pkg/api/types/releases"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/dump"
	"github.com/ziotom78/instrumentdb/pkg/schema"
	"github.com/ziotom78/instrumentdb/pkg/storage"
)

func CreateReleaseHandler(dbReleases kdb.ReleaseInterface, archive kdb.ArchiveInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		creation := apireleases.Creation{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&creation); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		release := domain.Release{Tag: creation.Tag, Comment: creation.Comment}
		if creation.ReleaseDate != "" {
			date, err := schema.ParseDate(creation.ReleaseDate)
			if err != nil {
				return apierr.BadRequest("bad release date", err)
			}
			release.RelDate = date
		}
		for _, member := range creation.DataFiles {
			id, err := uuid.Parse(member)
			if err != nil {
				return apierr.BadRequest("bad data file uuid", err)
			}
			release.DataFiles = append(release.DataFiles, id)
		}

		created, err := dbReleases.Create(ctx, release)
		if err != nil {
			return apierr.FromError(err)
		}
		if err := refreshDump(ctx, archive, dbReleases, store, created.Tag); err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusCreated, apireleases.ComposeDetail(created))
	}
}

func ListReleasesHandler(dbReleases kdb.ReleaseInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		releases, err := dbReleases.List(ctx)
		if err != nil {
			return apierr.FromError(err)
		}
		found := make([]apireleases.Detail, 0, len(releases))
		for _, release := range releases {
			found = append(found, apireleases.ComposeDetail(release))
		}
		return c.JSON(http.StatusOK, found)
	}
}

func GetReleaseHandler(dbReleases kdb.ReleaseInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		release, err := dbReleases.Get(ctx, c.Param("tag"))
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusOK, apireleases.ComposeDetail(release))
	}
}

func DeleteReleaseHandler(dbReleases kdb.ReleaseInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		if err := dbReleases.Delete(ctx, c.Param("tag")); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func AttachReleaseMemberHandler(dbReleases kdb.ReleaseInterface, archive kdb.ArchiveInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tag := c.Param("tag")
		id, err := uuid.Parse(c.Param("uuid"))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbReleases.Attach(ctx, tag, id); err != nil {
			return apierr.FromError(err)
		}
		if err := refreshDump(ctx, archive, dbReleases, store, tag); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func DetachReleaseMemberHandler(dbReleases kdb.ReleaseInterface, archive kdb.ArchiveInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tag := c.Param("tag")
		id, err := uuid.Parse(c.Param("uuid"))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbReleases.Detach(ctx, tag, id); err != nil {
			return apierr.FromError(err)
		}
		if err := refreshDump(ctx, archive, dbReleases, store, tag); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// refreshDump regenerates the document-only JSON dump of a release and
// records its ref. Called whenever membership changes.
func refreshDump(ctx context.Context, archive kdb.ArchiveInterface, dbReleases kdb.ReleaseInterface, store storage.Store, tag string) error {
	return dump.Refresh(ctx, archive, dbReleases, store, tag)
}

// ResolveReleaseHandler resolves tag + entity path + quantity name to the
// member data file tagged with the release.
func ResolveReleaseHandler(dbReleases kdb.ReleaseInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		segments := domain.SplitPath(c.Param("*"))
		if len(segments) < 2 {
			return apierr.BadRequest(
				"the path must name an entity and a quantity",
				domain.ErrValidation,
			)
		}
		file, err := dbReleases.Resolve(
			ctx,
			c.Param("tag"),
			segments[:len(segments)-1],
			segments[len(segments)-1],
		)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusOK, apidatafiles.ComposeDetail(file))
	}
}

// DumpReleaseHandler streams the document-only JSON dump of a release.
func DumpReleaseHandler(dbReleases kdb.ReleaseInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		release, err := dbReleases.Get(ctx, c.Param("tag"))
		if err != nil {
			return apierr.FromError(err)
		}
		if release.DumpFile.Empty() {
			return apierr.NotFound()
		}
		payload, err := store.Get(ctx, release.DumpFile)
		if err != nil {
			return apierr.FromError(err)
		}
		defer payload.Close()
		return c.Stream(http.StatusOK, echo.MIMEApplicationJSON, payload)
	}
}

// DownloadReleaseDocumentHandler streams the attached release document.
func DownloadReleaseDocumentHandler(dbReleases kdb.ReleaseInterface, store storage.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		release, err := dbReleases.Get(ctx, c.Param("tag"))
		if err != nil {
			return apierr.FromError(err)
		}
		if release.Document.Empty() {
			return apierr.NotFound()
		}
		payload, err := store.Get(ctx, release.Document)
		if err != nil {
			return apierr.FromError(err)
		}
		defer payload.Close()

		mime := release.DocumentMime
		if mime == "" {
			mime = echo.MIMEOctetStream
		}
		return c.Stream(http.StatusOK, mime, payload)
	}
}
