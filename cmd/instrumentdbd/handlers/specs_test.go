package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	httptestutil "github.com/ziotom78/instrumentdb/internal/testutils/http"
	apispecs "github.com/ziotom78/instrumentdb/pkg/api/types/specs"
	dbmock "github.com/ziotom78/instrumentdb/pkg/db/mocks"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/try"

	"github.com/ziotom78/instrumentdb/cmd/instrumentdbd/handlers"
)

func TestCreateSpecHandler(t *testing.T) {
	t.Run("it registers the specification", func(t *testing.T) {
		created := domain.FormatSpecification{
			UUID: uuid.New(), DocumentRef: "DOC-0042", Title: "beam file layout",
		}
		mckSpecs := dbmock.NewSpecInterface()
		mckSpecs.Impl.Create = func(_ context.Context, spec domain.FormatSpecification) (domain.FormatSpecification, error) {
			if spec.DocumentRef != "DOC-0042" {
				t.Errorf("Create: document_ref %q", spec.DocumentRef)
			}
			return created, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/format_specs",
			strings.NewReader(`{"document_ref": "DOC-0042", "title": "beam file layout"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateSpecHandler(mckSpecs)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: got %d, want %d", resp.Code, http.StatusCreated)
		}

		detail := apispecs.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if detail.DocumentRef != "DOC-0042" {
			t.Errorf("unexpected detail: %+v", detail)
		}
	})

	t.Run("a body without document_ref is rejected", func(t *testing.T) {
		mckSpecs := dbmock.NewSpecInterface()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/format_specs", strings.NewReader(`{"title": "nameless"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateSpecHandler(mckSpecs)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("expected a 400, got %v", err)
		}
	})
}

func TestGetSpecDocumentHandler(t *testing.T) {
	t.Run("it streams the attached document with its mime type", func(t *testing.T) {
		store := newMemStore()
		ref := try.To(store.Put(
			context.Background(), "format_spec/x", strings.NewReader("%PDF-1.7"),
		)).OrFatal(t)

		spec := domain.FormatSpecification{
			UUID: uuid.New(), DocumentRef: "DOC-0042",
			DocFile: ref, DocMimeType: "application/pdf",
		}
		mckSpecs := dbmock.NewSpecInterface()
		mckSpecs.Impl.Get = func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error) {
			return map[uuid.UUID]domain.FormatSpecification{spec.UUID: spec}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/format_specs/"+spec.UUID.String()+"/document")
		c.SetPath("/api/format_specs/:uuid/document")
		c.SetParamNames("uuid")
		c.SetParamValues(spec.UUID.String())

		testee := handlers.GetSpecDocumentHandler(mckSpecs, store, "uuid")
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Body.String() != "%PDF-1.7" {
			t.Errorf("streamed %q", resp.Body.String())
		}
		if ctype := resp.Header().Get("Content-Type"); ctype != "application/pdf" {
			t.Errorf("content type %q", ctype)
		}
	})

	t.Run("a specification without document yields 404", func(t *testing.T) {
		spec := domain.FormatSpecification{UUID: uuid.New(), DocumentRef: "DOC-0042"}
		mckSpecs := dbmock.NewSpecInterface()
		mckSpecs.Impl.Get = func(context.Context, []uuid.UUID) (map[uuid.UUID]domain.FormatSpecification, error) {
			return map[uuid.UUID]domain.FormatSpecification{spec.UUID: spec}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/format_specs/"+spec.UUID.String()+"/document")
		c.SetPath("/api/format_specs/:uuid/document")
		c.SetParamNames("uuid")
		c.SetParamValues(spec.UUID.String())

		testee := handlers.GetSpecDocumentHandler(mckSpecs, newMemStore(), "uuid")
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusNotFound {
			t.Errorf("expected a 404, got %v", err)
		}
	})
}
