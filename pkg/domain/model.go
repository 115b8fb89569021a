package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/cmp"
)

// StorageRef is an opaque handle to a payload held by the object storage
// collaborator. Records never embed payload bytes, only refs.
type StorageRef string

func (r StorageRef) Empty() bool {
	return r == ""
}

// FormatSpecification is an immutable reference document describing
// a file format. Quantities point at it; nobody owns it.
type FormatSpecification struct {
	UUID         uuid.UUID
	DocumentRef  string
	Title        string
	DocFileName  string
	DocMimeType  string
	FileMimeType string
	DocFile      StorageRef
}

func (f *FormatSpecification) Equal(o *FormatSpecification) bool {
	if f == nil || o == nil {
		return f == nil && o == nil
	}
	return f.UUID == o.UUID &&
		f.DocumentRef == o.DocumentRef &&
		f.Title == o.Title &&
		f.DocFileName == o.DocFileName &&
		f.DocMimeType == o.DocMimeType &&
		f.FileMimeType == o.FileMimeType &&
		f.DocFile == o.DocFile
}

// Entity is one node of the instrument tree.
//
// Parent is nil for root entities. Sibling names are unique,
// so the slash-joined ancestor names identify an entity globally.
type Entity struct {
	UUID   uuid.UUID
	Name   string
	Parent *uuid.UUID
}

func (e *Entity) Equal(o *Entity) bool {
	if e == nil || o == nil {
		return e == nil && o == nil
	}
	return e.UUID == o.UUID &&
		e.Name == o.Name &&
		cmp.PEqualWith(e.Parent, o.Parent, cmp.EqEq[uuid.UUID])
}

// Quantity is a named slot under an entity holding a version history
// of data files, all conforming to one format specification.
type Quantity struct {
	UUID       uuid.UUID
	Name       string
	Entity     uuid.UUID
	FormatSpec uuid.UUID
}

func (q *Quantity) Equal(o *Quantity) bool {
	if q == nil || o == nil {
		return q == nil && o == nil
	}
	return *q == *o
}

// DataFile is one uploaded version of a quantity's data.
//
// There is no stored "latest" pointer: the current version of a quantity is
// the first of its data files in the canonical ordering
// (upload date descending, then name, then uuid).
type DataFile struct {
	UUID        uuid.UUID
	Name        string
	UploadDate  time.Time
	Metadata    string // JSON text, may be empty
	FileData    StorageRef
	Quantity    uuid.UUID
	SpecVersion string
	PlotFile    StorageRef
	PlotMime    string
	Comment     string

	// uuids of the data files used as inputs to produce this one.
	// May reference any data file of any quantity; cycles are tolerated.
	Dependencies []uuid.UUID

	// tags of the releases this version belongs to.
	ReleaseTags []string
}

func (d *DataFile) Equal(o *DataFile) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.UUID == o.UUID &&
		d.Name == o.Name &&
		d.UploadDate.Equal(o.UploadDate) &&
		d.Metadata == o.Metadata &&
		d.FileData == o.FileData &&
		d.Quantity == o.Quantity &&
		d.SpecVersion == o.SpecVersion &&
		d.PlotFile == o.PlotFile &&
		d.PlotMime == o.PlotMime &&
		d.Comment == o.Comment &&
		cmp.SliceContentEq(d.Dependencies, o.Dependencies) &&
		cmp.SliceContentEq(d.ReleaseTags, o.ReleaseTags)
}

// SortDataFiles puts files into the version ordering: upload date
// descending, then name, then uuid. The first file of a quantity in this
// ordering is its current version.
func SortDataFiles(files []DataFile) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := &files[i], &files[j]
		if !a.UploadDate.Equal(b.UploadDate) {
			return a.UploadDate.After(b.UploadDate)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return strings.Compare(a.UUID.String(), b.UUID.String()) < 0
	})
}

// Release tags a consistent snapshot of data-file versions across the tree.
//
// The tag is the primary key and is immutable; membership is not.
type Release struct {
	Tag          string
	RelDate      time.Time
	Comment      string
	Document     StorageRef
	DocumentMime string

	// document-only JSON dump of everything tagged with this release,
	// regenerated when membership changes.
	DumpFile StorageRef

	DataFiles []uuid.UUID
}

func (r *Release) Equal(o *Release) bool {
	if r == nil || o == nil {
		return r == nil && o == nil
	}
	return r.Tag == o.Tag &&
		r.RelDate.Equal(o.RelDate) &&
		r.Comment == o.Comment &&
		r.Document == o.Document &&
		r.DocumentMime == o.DocumentMime &&
		cmp.SliceContentEq(r.DataFiles, o.DataFiles)
}
