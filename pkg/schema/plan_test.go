package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/schema"
)

func TestFlatten(t *testing.T) {
	t.Run("a nested document flattens parent-before-child", func(t *testing.T) {
		doc := &schema.Document{
			FormatSpecifications: []schema.SpecNode{
				{DocumentRef: "DOC-0001", Title: "Beam maps"},
			},
			Entities: []schema.EntityNode{
				{
					Name: "telescope",
					Children: []schema.EntityNode{
						{
							Name: "horn01",
							Quantities: []schema.QuantityNode{
								{
									Name:       "beam",
									FormatSpec: "DOC-0001",
									DataFiles: []schema.DataFileNode{
										{
											Name:       "beam-v1",
											UploadDate: "2026-01-15",
											Metadata:   map[string]any{"fwhm_deg": 1.5},
										},
									},
								},
							},
						},
					},
				},
			},
		}

		plan, err := schema.Flatten(doc)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if len(plan.Specs) != 1 || plan.Specs[0].Spec.DocumentRef != "DOC-0001" {
			t.Errorf("unexpected specs: %+v", plan.Specs)
		}

		if len(plan.Entities) != 2 {
			t.Fatalf("expected 2 entities, got %d", len(plan.Entities))
		}
		root, child := plan.Entities[0], plan.Entities[1]
		if root.Name != "telescope" || root.Parent != nil {
			t.Errorf("unexpected root: %+v", root)
		}
		if child.Name != "horn01" || child.Parent == nil || *child.Parent != root.UUID {
			t.Errorf("child not linked to root: %+v", child)
		}

		if len(plan.Quantities) != 1 {
			t.Fatalf("expected 1 quantity, got %d", len(plan.Quantities))
		}
		q := plan.Quantities[0]
		if q.EntityRef != child.UUID.String() || q.SpecRef != "DOC-0001" {
			t.Errorf("unexpected quantity refs: %+v", q)
		}

		if len(plan.DataFiles) != 1 {
			t.Fatalf("expected 1 data file, got %d", len(plan.DataFiles))
		}
		d := plan.DataFiles[0]
		if d.QuantityRef != q.Quantity.UUID.String() {
			t.Errorf("data file not linked to quantity: %+v", d)
		}
		if d.File.Metadata != `{"fwhm_deg":1.5}` {
			t.Errorf("unexpected metadata: %q", d.File.Metadata)
		}
		if d.File.UploadDate.IsZero() {
			t.Error("upload date was not parsed")
		}
	})

	t.Run("flat sections carry explicit owner references", func(t *testing.T) {
		entityId := uuid.New().String()
		quantityId := uuid.New().String()
		doc := &schema.Document{
			Quantities: []schema.QuantityNode{
				{UUID: quantityId, Name: "beam", Entity: entityId},
			},
			DataFiles: []schema.DataFileNode{
				{Name: "beam-v2", Quantity: quantityId},
			},
		}

		plan, err := schema.Flatten(doc)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if plan.Quantities[0].EntityRef != entityId {
			t.Errorf("unexpected entity ref: %q", plan.Quantities[0].EntityRef)
		}
		if plan.DataFiles[0].QuantityRef != quantityId {
			t.Errorf("unexpected quantity ref: %q", plan.DataFiles[0].QuantityRef)
		}
	})

	t.Run("dependencies may reference data files declared later", func(t *testing.T) {
		first := uuid.New().String()
		second := uuid.New().String()
		quantityId := uuid.New().String()
		doc := &schema.Document{
			DataFiles: []schema.DataFileNode{
				{UUID: first, Name: "derived", Quantity: quantityId, Dependencies: []string{second}},
				{UUID: second, Name: "source", Quantity: quantityId},
			},
		}

		plan, err := schema.Flatten(doc)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if len(plan.Dependencies) != 1 {
			t.Fatalf("expected 1 dependency link, got %d", len(plan.Dependencies))
		}
		link := plan.Dependencies[0]
		if link.Owner.String() != first || link.Dependency.String() != second {
			t.Errorf("unexpected link: %+v", link)
		}
	})

	t.Run("every problem in a broken document is reported at once", func(t *testing.T) {
		doc := &schema.Document{
			Entities: []schema.EntityNode{
				{Name: "bad name with spaces"},
				{Name: "dup"},
				{Name: "dup"},
			},
			DataFiles: []schema.DataFileNode{
				{
					Name:         "orphan",
					UUID:         "not-a-uuid",
					PlotMimeType: "image/png",
				},
			},
			Releases: []schema.ReleaseNode{
				{Tag: "bad tag!"},
			},
		}

		_, err := schema.Flatten(doc)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected a validation error, got %v", err)
		}

		problems := new(domain.Problems)
		if !errors.As(err, &problems) {
			t.Fatalf("expected a problem batch, got %T", err)
		}
		found := strings.Join(problems.Each(), "\n")
		for _, fragment := range []string{
			"bad name with spaces",
			`duplicated entity name "dup"`,
			"not-a-uuid",
			"no owning quantity",
			"plot_mime_type without plot_file",
			"bad tag!",
		} {
			if !strings.Contains(found, fragment) {
				t.Errorf("problem %q was not reported; got:\n%s", fragment, found)
			}
		}
	})

	t.Run("oversized metadata is rejected", func(t *testing.T) {
		doc := &schema.Document{
			DataFiles: []schema.DataFileNode{
				{
					Name:     "huge",
					Quantity: uuid.New().String(),
					Metadata: map[string]any{
						"blob": strings.Repeat("x", domain.MaxMetadataLen),
					},
				},
			},
		}

		_, err := schema.Flatten(doc)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected a validation error, got %v", err)
		}
	})

	t.Run("HasAttachments spots payload references", func(t *testing.T) {
		plain := &schema.Document{
			DataFiles: []schema.DataFileNode{
				{Name: "bare", Quantity: uuid.New().String()},
			},
		}
		plan, err := schema.Flatten(plain)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if plan.HasAttachments() {
			t.Error("plan without payloads reported attachments")
		}

		withPayload := &schema.Document{
			DataFiles: []schema.DataFileNode{
				{Name: "full", Quantity: uuid.New().String(), FileData: "data_files/full.fits"},
			},
		}
		plan, err = schema.Flatten(withPayload)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !plan.HasAttachments() {
			t.Error("plan with a payload reported no attachments")
		}
	})
}
