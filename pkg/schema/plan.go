package schema

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Plan is a Document flattened into creation order: specifications first,
// then entities parent-before-child, then quantities and data files, with
// dependency and release links kept aside for the later passes.
//
// Owner and format-spec references are carried as the raw strings found in
// the document; the import executor resolves them against the records the
// plan creates and against pre-existing ones, batching every reference that
// resolves to neither.
type Plan struct {
	Specs      []SpecPlan
	Entities   []domain.Entity
	Quantities []QuantityPlan
	DataFiles  []DataFilePlan

	// dependency declarations, linked after every data file exists.
	// Forward references inside the plan are legal.
	Dependencies []DependencyLink

	Releases []ReleasePlan
}

type SpecPlan struct {
	Spec domain.FormatSpecification

	// attachment path relative to the document, "" when none
	DocPath string
}

type QuantityPlan struct {
	Quantity domain.Quantity

	// uuid of the owning entity (Quantity.Entity is set already when the
	// node was nested; EntityRef keeps the raw string for flat nodes)
	EntityRef string

	// uuid or document_ref of the format specification
	SpecRef string
}

type DataFilePlan struct {
	File domain.DataFile

	// uuid of the owning quantity for flat nodes, like EntityRef above
	QuantityRef string

	// attachment paths relative to the document, "" when none
	FilePath string
	PlotPath string
}

type DependencyLink struct {
	Owner      uuid.UUID
	Dependency uuid.UUID
}

type ReleasePlan struct {
	Release domain.Release

	// attachment path relative to the document, "" when none
	DocPath string
}

// HasAttachments reports whether any plan record references a payload
// file next to the document.
func (p *Plan) HasAttachments() bool {
	for _, s := range p.Specs {
		if s.DocPath != "" {
			return true
		}
	}
	for _, d := range p.DataFiles {
		if d.FilePath != "" || d.PlotPath != "" {
			return true
		}
	}
	for _, r := range p.Releases {
		if r.DocPath != "" {
			return true
		}
	}
	return false
}

// Flatten validates a document and turns it into a Plan.
//
// Local problems (bad names, malformed uuids or dates, oversized or
// non-JSON metadata, plot payloads without a MIME type, duplicated sibling
// names) are all collected into one domain.Problems batch; the plan is
// returned only when the batch is empty. References to records outside the
// document are not checked here: that is the executor's part.
func Flatten(doc *Document) (*Plan, error) {
	f := flattener{plan: &Plan{}, problems: &domain.Problems{}}

	for _, node := range doc.FormatSpecifications {
		f.spec(node)
	}
	for _, node := range doc.Entities {
		f.entity(node, nil)
	}
	for _, node := range doc.Quantities {
		f.quantity(node, node.Entity)
	}
	for _, node := range doc.DataFiles {
		f.dataFile(node, node.Quantity)
	}
	for _, node := range doc.Releases {
		f.release(node)
	}

	if err := f.problems.AsError(); err != nil {
		return nil, err
	}
	return f.plan, nil
}

type flattener struct {
	plan     *Plan
	problems *domain.Problems

	// (owner uuid or "" for roots, name) pairs seen so far,
	// to reject duplicated siblings inside one document
	siblings map[[2]string]bool
}

// parseUUID parses s, or assigns a fresh uuid when s is empty.
func (f *flattener) parseUUID(s string, what string, name string) uuid.UUID {
	if s == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(s)
	if err != nil {
		f.problems.Addf(`%s "%s": bad uuid %q`, what, name, s)
		return uuid.Nil
	}
	return id
}

func (f *flattener) parseDate(s string, what string, name string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := ParseDate(s)
	if err != nil {
		f.problems.Addf(`%s "%s": %s`, what, name, err)
		return time.Time{}
	}
	return t
}

func (f *flattener) checkSibling(owner string, name string, what string) {
	if f.siblings == nil {
		f.siblings = map[[2]string]bool{}
	}
	key := [2]string{owner, name}
	if f.siblings[key] {
		f.problems.Addf(`duplicated %s name "%s"`, what, name)
	}
	f.siblings[key] = true
}

func (f *flattener) spec(node SpecNode) {
	if node.DocumentRef == "" {
		f.problems.Addf(`format specification "%s": empty document_ref`, node.Title)
	}
	f.plan.Specs = append(f.plan.Specs, SpecPlan{
		Spec: domain.FormatSpecification{
			UUID:         f.parseUUID(node.UUID, "format specification", node.DocumentRef),
			DocumentRef:  node.DocumentRef,
			Title:        node.Title,
			DocFileName:  node.DocFileName,
			DocMimeType:  node.DocMimeType,
			FileMimeType: node.FileMimeType,
		},
		DocPath: node.DocFile,
	})
}

func (f *flattener) entity(node EntityNode, parent *uuid.UUID) {
	if err := domain.ValidateName(node.Name); err != nil {
		f.problems.Add(err.Error())
	}

	owner := ""
	if parent != nil {
		owner = parent.String()
	}
	f.checkSibling(owner, node.Name, "entity")

	id := f.parseUUID(node.UUID, "entity", node.Name)
	f.plan.Entities = append(f.plan.Entities, domain.Entity{
		UUID:   id,
		Name:   node.Name,
		Parent: parent,
	})

	for _, q := range node.Quantities {
		f.quantity(q, id.String())
	}
	for _, child := range node.Children {
		parentId := id
		f.entity(child, &parentId)
	}
}

func (f *flattener) quantity(node QuantityNode, entityRef string) {
	if err := domain.ValidateName(node.Name); err != nil {
		f.problems.Add(err.Error())
	}
	if entityRef == "" {
		f.problems.Addf(`quantity "%s": no owning entity`, node.Name)
	}
	f.checkSibling("q/"+entityRef, node.Name, "quantity")

	id := f.parseUUID(node.UUID, "quantity", node.Name)
	f.plan.Quantities = append(f.plan.Quantities, QuantityPlan{
		Quantity:  domain.Quantity{UUID: id, Name: node.Name},
		EntityRef: entityRef,
		SpecRef:   node.FormatSpec,
	})

	for _, d := range node.DataFiles {
		f.dataFile(d, id.String())
	}
}

func (f *flattener) dataFile(node DataFileNode, quantityRef string) {
	if quantityRef == "" {
		f.problems.Addf(`data file "%s": no owning quantity`, node.Name)
	}

	metadata := ""
	if len(node.Metadata) != 0 {
		encoded, err := json.Marshal(node.Metadata)
		if err != nil {
			f.problems.Addf(`data file "%s": unencodable metadata: %s`, node.Name, err)
		} else {
			metadata = string(encoded)
		}
	}
	if err := domain.ValidateMetadata(metadata); err != nil {
		f.problems.Addf(`data file "%s": %s`, node.Name, err)
	}

	if node.PlotFile != "" && node.PlotMimeType == "" {
		f.problems.Addf(`data file "%s": plot_file without plot_mime_type`, node.Name)
	}
	if node.PlotFile == "" && node.PlotMimeType != "" {
		f.problems.Addf(`data file "%s": plot_mime_type without plot_file`, node.Name)
	}

	id := f.parseUUID(node.UUID, "data file", node.Name)
	for _, dep := range node.Dependencies {
		depId, err := uuid.Parse(dep)
		if err != nil {
			f.problems.Addf(`data file "%s": bad dependency uuid %q`, node.Name, dep)
			continue
		}
		f.plan.Dependencies = append(f.plan.Dependencies, DependencyLink{
			Owner: id, Dependency: depId,
		})
	}

	f.plan.DataFiles = append(f.plan.DataFiles, DataFilePlan{
		File: domain.DataFile{
			UUID:        id,
			Name:        node.Name,
			UploadDate:  f.parseDate(node.UploadDate, "data file", node.Name),
			Metadata:    metadata,
			SpecVersion: node.SpecVersion,
			PlotMime:    node.PlotMimeType,
			Comment:     node.Comment,
		},
		QuantityRef: quantityRef,
		FilePath:    node.FileData,
		PlotPath:    node.PlotFile,
	})
}

func (f *flattener) release(node ReleaseNode) {
	if err := domain.ValidateTag(node.Tag); err != nil {
		f.problems.Add(err.Error())
	}

	members := []uuid.UUID{}
	for _, m := range node.DataFiles {
		id, err := uuid.Parse(m)
		if err != nil {
			f.problems.Addf(`release "%s": bad data file uuid %q`, node.Tag, m)
			continue
		}
		members = append(members, id)
	}

	f.plan.Releases = append(f.plan.Releases, ReleasePlan{
		Release: domain.Release{
			Tag:          node.Tag,
			RelDate:      f.parseDate(node.ReleaseDate, "release", node.Tag),
			Comment:      node.Comment,
			DocumentMime: node.DocumentMime,
			DataFiles:    members,
		},
		DocPath: node.Document,
	})
}
