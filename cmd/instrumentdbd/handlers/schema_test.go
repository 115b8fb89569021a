package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	httptestutil "github.com/ziotom78/instrumentdb/internal/testutils/http"
	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
	dbmock "github.com/ziotom78/instrumentdb/pkg/db/mocks"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/schema"

	"github.com/ziotom78/instrumentdb/cmd/instrumentdbd/handlers"
)

func TestImportSchemaHandler(t *testing.T) {
	t.Run("a well-formed document lands in one Import call", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Import = func(_ context.Context, plan *schema.Plan) error {
			if len(plan.Entities) != 2 {
				t.Errorf("Import: %d entities planned", len(plan.Entities))
			}
			if len(plan.Quantities) != 1 {
				t.Errorf("Import: %d quantities planned", len(plan.Quantities))
			}
			return nil
		}

		document := `{
			"entities": [
				{
					"name": "telescope",
					"children": [{"name": "horns"}],
					"quantities": [{"name": "layout"}]
				}
			]
		}`

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/schema/import", strings.NewReader(document),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.ImportSchemaHandler(mckArchive, dbmock.NewReleaseInterface(), newMemStore())
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: got %d, want %d", resp.Code, http.StatusCreated)
		}
		if mckArchive.Calls.Import.Times() != 1 {
			t.Errorf("Import: called %d times", mckArchive.Calls.Import.Times())
		}
	})

	t.Run("a document referencing payload files is rejected before Import", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()

		document := `{
			"entities": [
				{
					"name": "telescope",
					"quantities": [
						{
							"name": "layout",
							"data_files": [
								{"name": "layout.csv", "file_data": "data_files/layout.csv"}
							]
						}
					]
				}
			]
		}`

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/schema/import", strings.NewReader(document),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.ImportSchemaHandler(mckArchive, dbmock.NewReleaseInterface(), newMemStore())
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("expected a 400, got %v", err)
		}
		if mckArchive.Calls.Import.Times() != 0 {
			t.Error("Import should not run for a document with payloads")
		}
	})

	t.Run("an imported release gets its document dump regenerated", func(t *testing.T) {
		store := newMemStore()
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Import = func(context.Context, *schema.Plan) error {
			return nil
		}
		mckArchive.Impl.Export = func(_ context.Context, selection schema.Selection) (*schema.Snapshot, error) {
			if selection.ReleaseTag != "v1" {
				t.Errorf("Export: selection %+v", selection)
			}
			return &schema.Snapshot{}, nil
		}
		mckReleases := dbmock.NewReleaseInterface()
		mckReleases.Impl.SetDumpFile = func(_ context.Context, tag string, ref domain.StorageRef) error {
			if tag != "v1" {
				t.Errorf("SetDumpFile: tag %q", tag)
			}
			if _, err := store.Get(context.Background(), ref); err != nil {
				t.Errorf("dump ref %s points at nothing: %s", ref, err)
			}
			return nil
		}

		document := `{"releases": [{"tag": "v1"}]}`

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/schema/import", strings.NewReader(document),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.ImportSchemaHandler(mckArchive, mckReleases, store)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: got %d, want %d", resp.Code, http.StatusCreated)
		}
		if mckReleases.Calls.SetDumpFile.Times() != 1 {
			t.Errorf("SetDumpFile: called %d times", mckReleases.Calls.SetDumpFile.Times())
		}
	})

	t.Run("reference problems from the archive surface as a 400 listing them", func(t *testing.T) {
		missing := uuid.New()
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Import = func(context.Context, *schema.Plan) error {
			problems := &domain.Problems{}
			problems.Addf("no data file %s", missing)
			return problems.AsError()
		}

		document := `{"entities": [{"name": "telescope"}]}`

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/schema/import", strings.NewReader(document),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.ImportSchemaHandler(mckArchive, dbmock.NewReleaseInterface(), newMemStore())
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Fatalf("expected a 400, got %v", err)
		}
		message, ok := httperr.Message.(apierr.ErrorMessage)
		if !ok {
			t.Fatalf("unexpected message shape: %T", httperr.Message)
		}
		if len(message.Problems) != 1 || !strings.Contains(message.Problems[0], missing.String()) {
			t.Errorf("unexpected problems: %v", message.Problems)
		}
	})
}

func TestExportSchemaHandler(t *testing.T) {
	t.Run("it writes the snapshot as a YAML document", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Export = func(_ context.Context, selection schema.Selection) (*schema.Snapshot, error) {
			if selection.ReleaseTag != "" {
				t.Errorf("Export: selection %+v", selection)
			}
			return &schema.Snapshot{
				Entities: []domain.Entity{{UUID: uuid.New(), Name: "telescope"}},
			}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/schema/export")

		testee := handlers.ExportSchemaHandler(mckArchive)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !strings.Contains(resp.Body.String(), "telescope") {
			t.Errorf("document misses the entity: %q", resp.Body.String())
		}
	})

	t.Run("?release= narrows the selection", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Export = func(_ context.Context, selection schema.Selection) (*schema.Snapshot, error) {
			if selection.ReleaseTag != "v1.0" {
				t.Errorf("Export: selection %+v", selection)
			}
			return &schema.Snapshot{}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/schema/export?release=v1.0&format=json")

		testee := handlers.ExportSchemaHandler(mckArchive)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	})

	t.Run("an unknown release yields 404", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Export = func(context.Context, schema.Selection) (*schema.Snapshot, error) {
			return nil, fmt.Errorf("%w: no release nope", domain.ErrNotFound)
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/schema/export?release=nope")

		testee := handlers.ExportSchemaHandler(mckArchive)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusNotFound {
			t.Errorf("expected a 404, got %v", err)
		}
	})

	t.Run("an unknown format is rejected", func(t *testing.T) {
		mckArchive := dbmock.NewArchiveInterface()
		mckArchive.Impl.Export = func(context.Context, schema.Selection) (*schema.Snapshot, error) {
			return &schema.Snapshot{}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/schema/export?format=xml")

		testee := handlers.ExportSchemaHandler(mckArchive)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("expected a 400, got %v", err)
		}
	})
}
