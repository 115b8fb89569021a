package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	httptestutil "github.com/ziotom78/instrumentdb/internal/testutils/http"
	apientities "github.com/ziotom78/instrumentdb/pkg/api/types/entities"
	dbmock "github.com/ziotom78/instrumentdb/pkg/db/mocks"
	"github.com/ziotom78/instrumentdb/pkg/domain"

	"github.com/ziotom78/instrumentdb/cmd/instrumentdbd/handlers"
)

func TestCreateEntityHandler(t *testing.T) {
	t.Run("it registers the entity and echoes it back", func(t *testing.T) {
		created := domain.Entity{UUID: uuid.New(), Name: "telescope"}
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.Create = func(_ context.Context, entity domain.Entity) (domain.Entity, error) {
			return created, nil
		}

		e := echo.New()
		c, resp := httptestutil.Post(
			e, "/api/entities", strings.NewReader(`{"name": "telescope"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateEntityHandler(mckEntities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if resp.Code != http.StatusCreated {
			t.Errorf("status code: got %d, want %d", resp.Code, http.StatusCreated)
		}
		if mckEntities.Calls.Create.Times() != 1 {
			t.Fatalf("Create: called %d times", mckEntities.Calls.Create.Times())
		}
		if name := mckEntities.Calls.Create[0].Entity.Name; name != "telescope" {
			t.Errorf("Create: passed name %q", name)
		}

		detail := apientities.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if detail.UUID != created.UUID.String() || detail.Name != "telescope" {
			t.Errorf("unexpected detail: %+v", detail)
		}
	})

	t.Run("it rejects a body with unknown fields", func(t *testing.T) {
		mckEntities := dbmock.NewEntityInterface()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/entities", strings.NewReader(`{"name": "x", "nick": "y"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateEntityHandler(mckEntities)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusBadRequest {
			t.Errorf("expected a 400, got %v", err)
		}
	})

	t.Run("it maps a name conflict onto 409", func(t *testing.T) {
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.Create = func(context.Context, domain.Entity) (domain.Entity, error) {
			return domain.Entity{}, fmt.Errorf("%w: sibling name taken", domain.ErrConflict)
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/entities", strings.NewReader(`{"name": "telescope"}`),
			httptestutil.ContentType("application/json"),
		)

		testee := handlers.CreateEntityHandler(mckEntities)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusConflict {
			t.Errorf("expected a 409, got %v", err)
		}
	})
}

func TestListEntitiesHandler(t *testing.T) {
	t.Run("without parameters it returns the roots", func(t *testing.T) {
		roots := []domain.Entity{
			{UUID: uuid.New(), Name: "ground segment"},
			{UUID: uuid.New(), Name: "telescope"},
		}
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.Roots = func(context.Context) ([]domain.Entity, error) {
			return roots, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/entities")

		testee := handlers.ListEntitiesHandler(mckEntities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		found := []apientities.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &found); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if len(found) != 2 || found[0].Name != "ground segment" {
			t.Errorf("unexpected listing: %+v", found)
		}
	})

	t.Run("?parent= narrows to the children of that entity", func(t *testing.T) {
		parent := uuid.New()
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.Children = func(_ context.Context, got uuid.UUID) ([]domain.Entity, error) {
			if got != parent {
				t.Errorf("Children: asked for %s, want %s", got, parent)
			}
			return []domain.Entity{{UUID: uuid.New(), Name: "horn01", Parent: &parent}}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/entities?parent="+parent.String())

		testee := handlers.ListEntitiesHandler(mckEntities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		found := []apientities.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &found); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if len(found) != 1 || found[0].Name != "horn01" {
			t.Errorf("unexpected listing: %+v", found)
		}
	})
}

func TestTreeHandler(t *testing.T) {
	t.Run("a path naming an entity yields the entity with its quantities and children", func(t *testing.T) {
		horns := domain.Entity{UUID: uuid.New(), Name: "horns"}
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.ResolvePath = func(_ context.Context, segments []string) (domain.Entity, error) {
			if len(segments) != 2 || segments[0] != "telescope" || segments[1] != "horns" {
				t.Errorf("ResolvePath: asked for %v", segments)
			}
			return horns, nil
		}
		mckEntities.Impl.Children = func(context.Context, uuid.UUID) ([]domain.Entity, error) {
			return []domain.Entity{{UUID: uuid.New(), Name: "horn01"}}, nil
		}
		mckQuantities := dbmock.NewQuantityInterface()
		mckQuantities.Impl.ListByEntity = func(context.Context, uuid.UUID) ([]domain.Quantity, error) {
			return []domain.Quantity{{UUID: uuid.New(), Name: "layout", Entity: horns.UUID}}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tree/telescope/horns")
		c.SetPath("/api/tree/*")
		c.SetParamNames("*")
		c.SetParamValues("telescope/horns")

		testee := handlers.TreeHandler(mckEntities, mckQuantities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		node := handlers.TreeNode{}
		if err := json.Unmarshal(resp.Body.Bytes(), &node); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if node.Entity == nil || node.Entity.Name != "horns" {
			t.Fatalf("unexpected node: %+v", node)
		}
		if node.Entity.Path != "telescope/horns" {
			t.Errorf("unexpected path: %s", node.Entity.Path)
		}
		if len(node.Quantities) != 1 || node.Quantities[0].Name != "layout" {
			t.Errorf("unexpected quantities: %+v", node.Quantities)
		}
		if len(node.Children) != 1 || node.Children[0].Name != "horn01" {
			t.Errorf("unexpected children: %+v", node.Children)
		}
	})

	t.Run("the last segment may name a quantity of the preceding entity", func(t *testing.T) {
		horns := domain.Entity{UUID: uuid.New(), Name: "horns"}
		layout := domain.Quantity{UUID: uuid.New(), Name: "layout", Entity: horns.UUID}

		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.ResolvePath = func(_ context.Context, segments []string) (domain.Entity, error) {
			if len(segments) == 3 {
				return domain.Entity{}, fmt.Errorf("%w: no such entity", domain.ErrNotFound)
			}
			return horns, nil
		}
		mckQuantities := dbmock.NewQuantityInterface()
		mckQuantities.Impl.GetByName = func(_ context.Context, entity uuid.UUID, name string) (domain.Quantity, error) {
			if entity != horns.UUID || name != "layout" {
				t.Errorf("GetByName: asked for %s of %s", name, entity)
			}
			return layout, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tree/telescope/horns/layout")
		c.SetPath("/api/tree/*")
		c.SetParamNames("*")
		c.SetParamValues("telescope/horns/layout")

		testee := handlers.TreeHandler(mckEntities, mckQuantities)
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		node := handlers.TreeNode{}
		if err := json.Unmarshal(resp.Body.Bytes(), &node); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if node.Quantity == nil || node.Quantity.UUID != layout.UUID.String() {
			t.Errorf("unexpected node: %+v", node)
		}
	})

	t.Run("a path resolving to nothing yields 404", func(t *testing.T) {
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.ResolvePath = func(context.Context, []string) (domain.Entity, error) {
			return domain.Entity{}, fmt.Errorf("%w: no such entity", domain.ErrNotFound)
		}
		mckQuantities := dbmock.NewQuantityInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/tree/nowhere")
		c.SetPath("/api/tree/*")
		c.SetParamNames("*")
		c.SetParamValues("nowhere")

		testee := handlers.TreeHandler(mckEntities, mckQuantities)
		err := testee(c)
		httperr := &echo.HTTPError{}
		if !errors.As(err, &httperr) || httperr.Code != http.StatusNotFound {
			t.Errorf("expected a 404, got %v", err)
		}
	})
}

func TestGetEntityHandler(t *testing.T) {
	t.Run("it returns the entity with its full path", func(t *testing.T) {
		parent := uuid.New()
		horn := domain.Entity{UUID: uuid.New(), Name: "horn01", Parent: &parent}
		mckEntities := dbmock.NewEntityInterface()
		mckEntities.Impl.Get = func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Entity, error) {
			return map[uuid.UUID]domain.Entity{horn.UUID: horn}, nil
		}
		mckEntities.Impl.FullPath = func(context.Context, uuid.UUID) ([]string, error) {
			return []string{"telescope", "horns", "horn01"}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/entities/"+horn.UUID.String())
		c.SetPath("/api/entities/:uuid")
		c.SetParamNames("uuid")
		c.SetParamValues(horn.UUID.String())

		testee := handlers.GetEntityHandler(mckEntities, "uuid")
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		detail := apientities.Detail{}
		if err := json.Unmarshal(resp.Body.Bytes(), &detail); err != nil {
			t.Fatalf("unparsable response: %s", err)
		}
		if detail.Path != "telescope/horns/horn01" {
			t.Errorf("unexpected path: %s", detail.Path)
		}
	})
}
