package schema_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/cmp"
	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/schema"
)

func testSnapshot() *schema.Snapshot {
	specId := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	rootId := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	hornId := uuid.MustParse("33333333-3333-3333-3333-333333333333")
	emptyId := uuid.MustParse("44444444-4444-4444-4444-444444444444")
	beamId := uuid.MustParse("55555555-5555-5555-5555-555555555555")
	oldId := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	newId := uuid.MustParse("77777777-7777-7777-7777-777777777777")

	return &schema.Snapshot{
		Specs: []domain.FormatSpecification{
			{
				UUID:        specId,
				DocumentRef: "DOC-0001",
				Title:       "Beam maps",
				DocMimeType: "application/pdf",
				DocFile:     domain.StorageRef("format_spec/doc-0001.pdf"),
			},
		},
		Entities: []domain.Entity{
			{UUID: rootId, Name: "telescope"},
			{UUID: hornId, Name: "horn01", Parent: &rootId},
			{UUID: emptyId, Name: "spare", Parent: &rootId},
		},
		Quantities: []domain.Quantity{
			{UUID: beamId, Name: "beam", Entity: hornId, FormatSpec: specId},
		},
		DataFiles: []domain.DataFile{
			{
				UUID:       oldId,
				Name:       "beam-v1",
				UploadDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
				Quantity:   beamId,
			},
			{
				UUID:         newId,
				Name:         "beam-v2",
				UploadDate:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
				Quantity:     beamId,
				Metadata:     `{"fwhm_deg":1.5}`,
				FileData:     domain.StorageRef("data_files/beam-v2.fits"),
				Dependencies: []uuid.UUID{oldId},
			},
		},
		Releases: []domain.Release{
			{
				Tag:       "v1.0",
				RelDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				DataFiles: []uuid.UUID{newId},
			},
		},
	}
}

func TestCompose(t *testing.T) {
	t.Run("the document nests the whole tree deterministically", func(t *testing.T) {
		doc, attachments := schema.Compose(testSnapshot(), schema.Options{})

		if len(doc.Entities) != 1 || doc.Entities[0].Name != "telescope" {
			t.Fatalf("unexpected roots: %+v", doc.Entities)
		}
		children := doc.Entities[0].Children
		childNames := make([]string, len(children))
		for nth, child := range children {
			childNames[nth] = child.Name
		}
		if !cmp.SliceEq(childNames, []string{"horn01", "spare"}) {
			t.Errorf("children not sorted by name: %v", childNames)
		}

		beam := children[0].Quantities[0]
		if beam.FormatSpec != "DOC-0001" {
			t.Errorf("quantity names its spec by %q, not by document_ref", beam.FormatSpec)
		}

		versions := make([]string, len(beam.DataFiles))
		for nth, d := range beam.DataFiles {
			versions[nth] = d.Name
		}
		if !cmp.SliceEq(versions, []string{"beam-v2", "beam-v1"}) {
			t.Errorf("data files not in version order: %v", versions)
		}
		if beam.DataFiles[0].Metadata["fwhm_deg"] != 1.5 {
			t.Errorf("metadata lost: %+v", beam.DataFiles[0].Metadata)
		}
		if len(beam.DataFiles[0].Dependencies) != 1 {
			t.Errorf("dependencies lost: %+v", beam.DataFiles[0].Dependencies)
		}

		if len(doc.Releases) != 1 || doc.Releases[0].Tag != "v1.0" {
			t.Fatalf("unexpected releases: %+v", doc.Releases)
		}

		// spec document + data file payload
		if len(attachments) != 2 {
			t.Errorf("expected 2 attachments, got %+v", attachments)
		}
		for _, a := range attachments {
			if a.Ref.Empty() || a.Dest == "" {
				t.Errorf("incomplete attachment: %+v", a)
			}
		}
	})

	t.Run("NoAttachments strips every payload reference", func(t *testing.T) {
		doc, attachments := schema.Compose(
			testSnapshot(), schema.Options{NoAttachments: true},
		)
		if len(attachments) != 0 {
			t.Errorf("expected no attachments, got %+v", attachments)
		}
		if doc.FormatSpecifications[0].DocFile != "" {
			t.Error("spec document reference survived")
		}
		beam := doc.Entities[0].Children[0].Quantities[0]
		if beam.DataFiles[0].FileData != "" {
			t.Error("data file payload reference survived")
		}
	})

	t.Run("OnlyTree drops data files and releases", func(t *testing.T) {
		doc, _ := schema.Compose(testSnapshot(), schema.Options{OnlyTree: true})
		if len(doc.Releases) != 0 {
			t.Errorf("releases survived: %+v", doc.Releases)
		}
		beam := doc.Entities[0].Children[0].Quantities[0]
		if len(beam.DataFiles) != 0 {
			t.Errorf("data files survived: %+v", beam.DataFiles)
		}
	})

	t.Run("SkipEmptyEntities prunes childless quantity-less subtrees", func(t *testing.T) {
		doc, _ := schema.Compose(
			testSnapshot(), schema.Options{SkipEmptyEntities: true},
		)
		children := doc.Entities[0].Children
		if len(children) != 1 || children[0].Name != "horn01" {
			t.Errorf("expected only horn01 to survive, got %+v", children)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	encodings := map[string]func(doc *schema.Document) (*schema.Document, error){
		"YAML": func(doc *schema.Document) (*schema.Document, error) {
			buf := bytes.NewBuffer(nil)
			if err := schema.EncodeYAML(buf, doc); err != nil {
				return nil, err
			}
			return schema.Decode(buf)
		},
		"JSON": func(doc *schema.Document) (*schema.Document, error) {
			buf := bytes.NewBuffer(nil)
			if err := schema.EncodeJSON(buf, doc); err != nil {
				return nil, err
			}
			return schema.Decode(buf)
		},
	}

	for encoding, rewrite := range encodings {
		t.Run("compose, encode as "+encoding+", decode, flatten", func(t *testing.T) {
			snap := testSnapshot()
			doc, _ := schema.Compose(snap, schema.Options{})

			decoded, err := rewrite(doc)
			if err != nil {
				t.Fatalf("round trip failed: %s", err)
			}

			plan, err := schema.Flatten(decoded)
			if err != nil {
				t.Fatalf("flattening the decoded document failed: %s", err)
			}

			if len(plan.Entities) != len(snap.Entities) {
				t.Errorf(
					"entity count changed: %d != %d",
					len(plan.Entities), len(snap.Entities),
				)
			}
			if len(plan.Quantities) != len(snap.Quantities) {
				t.Errorf(
					"quantity count changed: %d != %d",
					len(plan.Quantities), len(snap.Quantities),
				)
			}
			if len(plan.DataFiles) != len(snap.DataFiles) {
				t.Errorf(
					"data file count changed: %d != %d",
					len(plan.DataFiles), len(snap.DataFiles),
				)
			}
			if len(plan.Releases) != len(snap.Releases) {
				t.Errorf(
					"release count changed: %d != %d",
					len(plan.Releases), len(snap.Releases),
				)
			}

			for _, want := range snap.DataFiles {
				got, ok := findPlannedFile(plan, want.UUID)
				if !ok {
					t.Errorf("data file %s lost in the round trip", want.UUID)
					continue
				}
				if got.File.Name != want.Name {
					t.Errorf("name changed: %q != %q", got.File.Name, want.Name)
				}
				if !got.File.UploadDate.Equal(want.UploadDate) {
					t.Errorf(
						"upload date changed: %s != %s",
						got.File.UploadDate, want.UploadDate,
					)
				}
				if got.File.Metadata != want.Metadata {
					t.Errorf("metadata changed: %q != %q", got.File.Metadata, want.Metadata)
				}
			}
		})
	}
}

func findPlannedFile(plan *schema.Plan, id uuid.UUID) (schema.DataFilePlan, bool) {
	for _, d := range plan.DataFiles {
		if d.File.UUID == id {
			return d, true
		}
	}
	return schema.DataFilePlan{}, false
}
