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
	apiquantities "github.com/ziotom78/instrumentdb/pkg/api/types/quantities"
	dbmock "github.com/ziotom78/instrumentdb/pkg/db/mocks"
	"github.com/ziotom78/instrumentdb/pkg/domain"

	"github.com/ziotom78/instrumentdb/cmd/instrumentdbd/handlers"
)

func TestCreateQuantityHandler(t *testing.T) {
	t.Run("format_spec given as uuid is taken verbatim", func(t *testing.T) {
		entity := uuid.New()
		spec := uuid.New()
		mckQuantities := dbmock.NewQuantityInterface()
		mckQuantities.Impl.Create = func(_ context.Context, quantity domain.Quantity) (domain.Quantity, error) {
			if quantity.FormatSpec != spec {
				t.Errorf("Create: format spec %s, want %s", quantity.FormatSpec, spec)
			}
			quantity.UUID = uuid.New()
			return quantity, nil
		}
		mckSpecs := dbmock.NewSpecInterface()

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/quantities",
			strings.NewReader(
				`{"name": "beam", "entity": "`+entity.String()+
					`", "format_spec": "`+spec.String()+`"}`,
			),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateQuantityHandler(mckQuantities, mckSpecs)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: got %d, want %d", resp.Code, http.StatusCreated)
		}
		if mckSpecs.Calls.GetByDocumentRef.Times() != 0 {
			t.Error("a uuid reference should not hit the specification table")
		}
	})

	t.Run("format_spec given as document_ref is resolved first", func(t *testing.T) {
		entity := uuid.New()
		spec := domain.FormatSpecification{UUID: uuid.New(), DocumentRef: "DOC-0042"}
		mckQuantities := dbmock.NewQuantityInterface()
		mckQuantities.Impl.Create = func(_ context.Context, quantity domain.Quantity) (domain.Quantity, error) {
			if quantity.FormatSpec != spec.UUID {
				t.Errorf("Create: format spec %s, want %s", quantity.FormatSpec, spec.UUID)
			}
			return quantity, nil
		}
		mckSpecs := dbmock.NewSpecInterface()
		mckSpecs.Impl.GetByDocumentRef = func(_ context.Context, documentRef string) (domain.FormatSpecification, error) {
			if documentRef != "DOC-0042" {
				t.Errorf("GetByDocumentRef: asked for %q", documentRef)
			}
			return spec, nil
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/quantities",
			strings.NewReader(
				`{"name": "beam", "entity": "`+entity.String()+
					`", "format_spec": "DOC-0042"}`,
			),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateQuantityHandler(mckQuantities, mckSpecs)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	})
}

func TestListQuantitiesHandler(t *testing.T) {
	t.Run("?entity= narrows to the quantities of that entity", func(t *testing.T) {
		entity := uuid.New()
		mckQuantities := dbmock.NewQuantityInterface()
		mckQuantities.Impl.ListByEntity = func(_ context.Context, got uuid.UUID) ([]domain.Quantity, error) {
			if got != entity {
				t.Errorf("ListByEntity: asked for %s, want %s", got, entity)
			}
			return []domain.Quantity{{UUID: uuid.New(), Name: "beam", Entity: entity}}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/quantities?entity="+entity.String())

		testee := handlers.ListQuantitiesHandler(mckQuantities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		found := []apiquantities.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &found); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if len(found) != 1 || found[0].Name != "beam" {
			t.Errorf("unexpected listing: %+v", found)
		}
	})

	t.Run("a malformed ?entity= is rejected", func(t *testing.T) {
		mckQuantities := dbmock.NewQuantityInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/quantities?entity=not-a-uuid")

		testee := handlers.ListQuantitiesHandler(mckQuantities)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("expected a 400, got %v", err)
		}
	})
}
