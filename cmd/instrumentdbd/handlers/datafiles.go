package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apidatafiles "github.com/ziotom78/instrumentdb/pkg/api/types/datafiles"
	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	kdb "github.com/ziotom78/instrumentdb/pkg/db"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/schema"
	"github.com/ziotom78/instrumentdb/pkg/storage"
	"github.com/ziotom78/instrumentdb/pkg/utils/pointer"
)

// UploadDataFileHandler registers a new version under the quantity of the
// URL.
//
// Two request shapes are accepted: a plain JSON body with the descriptive
// fields, or a multipart form with the same JSON under "data" plus
// optional "file_data" and "plot_file" parts carrying the payloads.
func UploadDataFileHandler(dbDataFiles kdb.DataFileInterface, store storage.Store, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		quantity, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad quantity uuid", err)
		}

		upload := apidatafiles.Upload{}
		multipart := strings.HasPrefix(
			c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm,
		)
		if multipart {
			data := c.FormValue("data")
			if data == "" {
				return apierr.BadRequest(
					`multipart uploads need a "data" field`, domain.ErrValidation,
				)
			}
			if err := json.Unmarshal([]byte(data), &upload); err != nil {
				return apierr.BadRequest("unparsable data field", err)
			}
		} else {
			decoder := json.NewDecoder(c.Request().Body)
			decoder.DisallowUnknownFields()
			if err := decoder.Decode(&upload); err != nil {
				return apierr.BadRequest("unparsable request body", err)
			}
		}

		file := domain.DataFile{
			Name:        upload.Name,
			Metadata:    string(upload.Metadata),
			Quantity:    quantity,
			SpecVersion: upload.SpecVersion,
			Comment:     upload.Comment,
		}
		if upload.UUID != "" {
			id, err := uuid.Parse(upload.UUID)
			if err != nil {
				return apierr.BadRequest("bad uuid", err)
			}
			file.UUID = id
		} else {
			file.UUID = uuid.New()
		}
		if upload.UploadDate != "" {
			date, err := schema.ParseDate(upload.UploadDate)
			if err != nil {
				return apierr.BadRequest("bad upload date", err)
			}
			file.UploadDate = date
		}

		for _, dep := range upload.Dependencies {
			id, err := uuid.Parse(dep)
			if err != nil {
				return apierr.BadRequest(
					fmt.Sprintf("bad dependency uuid %q", dep), err,
				)
			}
			file.Dependencies = append(file.Dependencies, id)
		}

		if multipart {
			ref, _, err := storeFormFile(
				c, store, "file_data", "data_files/"+file.UUID.String(),
			)
			if err != nil {
				return apierr.FromError(err)
			}
			file.FileData = ref

			ref, sniffed, err := storeFormFile(
				c, store, "plot_file", "plot_files/"+file.UUID.String(),
			)
			if err != nil {
				return apierr.FromError(err)
			}
			if !ref.Empty() {
				file.PlotFile = ref
				file.PlotMime = c.FormValue("plot_mime_type")
				if file.PlotMime == "" {
					file.PlotMime = sniffed
				}
			}
		}

		created, err := dbDataFiles.Upload(ctx, file)
		if err != nil {
			// the row never landed; the payloads stored above must not
			// outlive it
			for _, ref := range []domain.StorageRef{file.FileData, file.PlotFile} {
				if ref.Empty() {
					continue
				}
				if derr := store.Delete(ctx, ref); derr != nil {
					c.Logger().Errorf("can not clean up payload %s: %s", ref, derr)
				}
			}
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusCreated, apidatafiles.ComposeDetail(created))
	}
}

// storeFormFile saves a multipart part into the storage and sniffs its
// mime type, or returns "" when the part is absent.
func storeFormFile(c echo.Context, store storage.Store, field string, dest string) (domain.StorageRef, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// echo reports a missing part as an error
		return "", "", nil
	}
	src, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	defer src.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", "", fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	mime := mimetype.Detect(head[:n]).String()

	ref, err := store.Put(
		c.Request().Context(), dest,
		io.MultiReader(bytes.NewReader(head[:n]), src),
	)
	return ref, mime, err
}

func GetDataFileHandler(dbDataFiles kdb.DataFileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		files, err := dbDataFiles.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		file, ok := files[id]
		if !ok {
			return apierr.NotFound()
		}
		return c.JSON(http.StatusOK, apidatafiles.ComposeDetail(file))
	}
}

// AllVersionsHandler lists every version of a quantity, most recent
// first.
func AllVersionsHandler(dbDataFiles kdb.DataFileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		quantity, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad quantity uuid", err)
		}

		files, err := dbDataFiles.AllVersions(ctx, quantity)
		if err != nil {
			return apierr.FromError(err)
		}
		found := make([]apidatafiles.Detail, 0, len(files))
		for _, file := range files {
			found = append(found, apidatafiles.ComposeDetail(file))
		}
		return c.JSON(http.StatusOK, found)
	}
}

// CurrentVersionHandler returns the newest version of a quantity.
func CurrentVersionHandler(dbDataFiles kdb.DataFileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		quantity, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad quantity uuid", err)
		}

		file, err := dbDataFiles.CurrentVersion(ctx, quantity)
		if err != nil {
			return apierr.FromError(err)
		}
		return c.JSON(http.StatusOK, apidatafiles.ComposeDetail(file))
	}
}

// DownloadDataFileHandler streams the payload of a version, or its plot
// when plot is true.
func DownloadDataFileHandler(dbDataFiles kdb.DataFileInterface, store storage.Store, paramKey string, plot bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		files, err := dbDataFiles.Get(ctx, []uuid.UUID{id})
		if err != nil {
			return apierr.FromError(err)
		}
		file, ok := files[id]
		if !ok {
			return apierr.NotFound()
		}

		ref := file.FileData
		mime := echo.MIMEOctetStream
		if plot {
			ref = file.PlotFile
			if file.PlotMime != "" {
				mime = file.PlotMime
			}
		}
		if ref.Empty() {
			return apierr.NotFound()
		}

		payload, err := store.Get(ctx, ref)
		if err != nil {
			return apierr.FromError(err)
		}
		defer payload.Close()
		return c.Stream(http.StatusOK, mime, payload)
	}
}

func PatchDataFileHandler(dbDataFiles kdb.DataFileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}

		update := apidatafiles.Update{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&update); err != nil {
			return apierr.BadRequest("unparsable request body", err)
		}

		delta := kdb.DataFileUpdate{Comment: update.Comment}
		if update.Metadata != nil {
			delta.Metadata = pointer.Ref(string(*update.Metadata))
		}
		if err := dbDataFiles.Update(ctx, id, delta); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func DeleteDataFileHandler(dbDataFiles kdb.DataFileInterface, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		id, err := uuid.Parse(c.Param(paramKey))
		if err != nil {
			return apierr.BadRequest("bad uuid", err)
		}
		if err := dbDataFiles.Delete(ctx, id); err != nil {
			return apierr.FromError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
