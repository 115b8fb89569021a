package schema

import (
	"fmt"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

// Snapshot is the raw material of an export: plain records, as read from
// the database. When the export is restricted to a release, the reader
// already dropped the data files outside it; Compose never touches the
// database.
type Snapshot struct {
	Specs      []domain.FormatSpecification
	Entities   []domain.Entity
	Quantities []domain.Quantity
	DataFiles  []domain.DataFile
	Releases   []domain.Release
}

// Selection narrows what the database reads into a Snapshot.
type Selection struct {
	// only records reachable from this release; "" takes everything
	ReleaseTag string
}

// Options tune what Compose writes out.
type Options struct {
	// drop every attachment reference; the document stands alone
	NoAttachments bool

	// entities and quantities only, no data files and no releases
	OnlyTree bool

	SkipEmptyEntities   bool
	SkipEmptyQuantities bool
}

// Attachment pairs a stored payload with the path, relative to the
// document file, that the document references it under.
type Attachment struct {
	Ref  domain.StorageRef
	Dest string
}

// Compose turns a snapshot into a nested export document plus the list of
// payloads to copy next to it.
//
// The output is deterministic: entities, quantities and releases are sorted
// by name resp. tag, data files follow the version ordering (upload date
// descending, then name, then uuid), and attachment paths are derived from
// record uuids.
func Compose(snap *Snapshot, options Options) (*Document, []Attachment) {
	c := composer{snap: snap, options: options}
	return c.document(), c.attachments
}

type composer struct {
	snap        *Snapshot
	options     Options
	attachments []Attachment
}

// attach registers ref for copying and returns its document-relative path,
// or "" when there is nothing to copy or attachments are off.
func (c *composer) attach(ref domain.StorageRef, dir string, id uuid.UUID, mime string) string {
	if ref.Empty() || c.options.NoAttachments {
		return ""
	}
	dest := fmt.Sprintf("%s/%s%s", dir, id, extensionFor(mime))
	c.attachments = append(c.attachments, Attachment{Ref: ref, Dest: dest})
	return dest
}

func extensionFor(mime string) string {
	if mime == "" {
		return ""
	}
	if mt := mimetype.Lookup(mime); mt != nil {
		return mt.Extension()
	}
	return ""
}

func (c *composer) document() *Document {
	doc := &Document{
		FormatSpecifications: c.specs(),
		Entities: slices.Map(
			c.rootEntities(),
			func(e domain.Entity) EntityNode { return c.entity(e) },
		),
	}
	doc.Entities = c.prune(doc.Entities)

	if !c.options.OnlyTree {
		doc.Releases = c.releases()
	}
	return doc
}

func (c *composer) specs() []SpecNode {
	specs := make([]domain.FormatSpecification, len(c.snap.Specs))
	copy(specs, c.snap.Specs)
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].DocumentRef < specs[j].DocumentRef
	})

	return slices.Map(specs, func(s domain.FormatSpecification) SpecNode {
		return SpecNode{
			UUID:         s.UUID.String(),
			DocumentRef:  s.DocumentRef,
			Title:        s.Title,
			DocFileName:  s.DocFileName,
			FileMimeType: s.FileMimeType,
			DocMimeType:  s.DocMimeType,
			DocFile:      c.attach(s.DocFile, "format_spec", s.UUID, s.DocMimeType),
		}
	})
}

func (c *composer) rootEntities() []domain.Entity {
	roots := slices.Filter(c.snap.Entities, func(e domain.Entity) bool {
		return e.Parent == nil
	})
	sort.Slice(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })
	return roots
}

func (c *composer) childrenOf(parent uuid.UUID) []domain.Entity {
	children := slices.Filter(c.snap.Entities, func(e domain.Entity) bool {
		return e.Parent != nil && *e.Parent == parent
	})
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

func (c *composer) entity(e domain.Entity) EntityNode {
	return EntityNode{
		UUID:       e.UUID.String(),
		Name:       e.Name,
		Quantities: c.quantitiesOf(e.UUID),
		Children: slices.Map(
			c.childrenOf(e.UUID),
			func(child domain.Entity) EntityNode { return c.entity(child) },
		),
	}
}

// prune drops empty entity subtrees when the options ask for it.
func (c *composer) prune(nodes []EntityNode) []EntityNode {
	if !c.options.SkipEmptyEntities {
		return nodes
	}
	kept := []EntityNode{}
	for _, node := range nodes {
		node.Children = c.prune(node.Children)
		if len(node.Quantities) == 0 && len(node.Children) == 0 {
			continue
		}
		kept = append(kept, node)
	}
	return kept
}

func (c *composer) quantitiesOf(entity uuid.UUID) []QuantityNode {
	quantities := slices.Filter(c.snap.Quantities, func(q domain.Quantity) bool {
		return q.Entity == entity
	})
	sort.Slice(quantities, func(i, j int) bool {
		return quantities[i].Name < quantities[j].Name
	})

	nodes := []QuantityNode{}
	for _, q := range quantities {
		files := []DataFileNode{}
		if !c.options.OnlyTree {
			files = c.dataFilesOf(q)
		}
		if c.options.SkipEmptyQuantities && len(files) == 0 && !c.options.OnlyTree {
			continue
		}
		nodes = append(nodes, QuantityNode{
			UUID:       q.UUID.String(),
			Name:       q.Name,
			FormatSpec: c.specRef(q.FormatSpec),
			DataFiles:  files,
		})
	}
	return nodes
}

// specRef names a format specification by document_ref when the spec is in
// the snapshot, by uuid otherwise.
func (c *composer) specRef(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	for _, s := range c.snap.Specs {
		if s.UUID == id {
			return s.DocumentRef
		}
	}
	return id.String()
}

func (c *composer) dataFilesOf(q domain.Quantity) []DataFileNode {
	files := slices.Filter(c.snap.DataFiles, func(d domain.DataFile) bool {
		return d.Quantity == q.UUID
	})
	domain.SortDataFiles(files)

	fileMime := ""
	for _, s := range c.snap.Specs {
		if s.UUID == q.FormatSpec {
			fileMime = s.FileMimeType
		}
	}

	return slices.Map(files, func(d domain.DataFile) DataFileNode {
		node := DataFileNode{
			UUID:         d.UUID.String(),
			Name:         d.Name,
			Metadata:     decodeMetadata(d.Metadata),
			SpecVersion:  d.SpecVersion,
			PlotMimeType: d.PlotMime,
			Comment:      d.Comment,
			FileData:     c.attach(d.FileData, "data_files", d.UUID, fileMime),
			PlotFile:     c.attach(d.PlotFile, "plot_files", d.UUID, d.PlotMime),
			Dependencies: slices.Map(
				d.Dependencies,
				func(dep uuid.UUID) string { return dep.String() },
			),
		}
		if !d.UploadDate.IsZero() {
			node.UploadDate = formatDate(d.UploadDate)
		}
		if node.PlotFile == "" {
			node.PlotMimeType = ""
		}
		return node
	})
}

func (c *composer) releases() []ReleaseNode {
	releases := make([]domain.Release, len(c.snap.Releases))
	copy(releases, c.snap.Releases)
	sort.Slice(releases, func(i, j int) bool {
		return releases[i].Tag < releases[j].Tag
	})

	return slices.Map(releases, func(r domain.Release) ReleaseNode {
		members := make([]uuid.UUID, len(r.DataFiles))
		copy(members, r.DataFiles)
		sort.Slice(members, func(i, j int) bool {
			return members[i].String() < members[j].String()
		})

		node := ReleaseNode{
			Tag:     r.Tag,
			Comment: r.Comment,
			DataFiles: slices.Map(
				members,
				func(id uuid.UUID) string { return id.String() },
			),
			DocumentMime: r.DocumentMime,
		}
		if !r.RelDate.IsZero() {
			node.ReleaseDate = formatDate(r.RelDate)
		}
		if !r.Document.Empty() && !c.options.NoAttachments {
			dest := fmt.Sprintf(
				"release_documents/%s%s", r.Tag, extensionFor(r.DocumentMime),
			)
			c.attachments = append(c.attachments, Attachment{Ref: r.Document, Dest: dest})
			node.Document = dest
		}
		if node.Document == "" {
			node.DocumentMime = ""
		}
		return node
	})
}
