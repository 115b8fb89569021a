// Package schema reads and writes the document format that round-trips a
// whole instrument model: format specifications, the entity forest with
// quantities and data files, and releases.
//
// The same logical schema is accepted as YAML or JSON (JSON is a subset of
// YAML, so one decoder covers both), and the choice of encoding never
// changes the resulting objects.
package schema

import (
	"fmt"
	"time"
)

// Document is the top-level structure of an import/export file.
//
// On import, quantities and data files may be nested under their entity
// (resp. quantity) node, or listed flat in the Quantities / DataFiles
// sections with an explicit owner reference. Export always nests.
type Document struct {
	FormatSpecifications []SpecNode     `yaml:"format_specifications,omitempty" json:"format_specifications,omitempty"`
	Entities             []EntityNode   `yaml:"entities,omitempty" json:"entities,omitempty"`
	Quantities           []QuantityNode `yaml:"quantities,omitempty" json:"quantities,omitempty"`
	DataFiles            []DataFileNode `yaml:"data_files,omitempty" json:"data_files,omitempty"`
	Releases             []ReleaseNode  `yaml:"releases,omitempty" json:"releases,omitempty"`
}

type SpecNode struct {
	UUID         string `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	DocumentRef  string `yaml:"document_ref" json:"document_ref"`
	Title        string `yaml:"title,omitempty" json:"title,omitempty"`
	DocFileName  string `yaml:"doc_file_name,omitempty" json:"doc_file_name,omitempty"`
	FileMimeType string `yaml:"file_mime_type,omitempty" json:"file_mime_type,omitempty"`
	DocMimeType  string `yaml:"doc_mime_type,omitempty" json:"doc_mime_type,omitempty"`

	// path of the attached specification document,
	// relative to the document file
	DocFile string `yaml:"doc_file,omitempty" json:"doc_file,omitempty"`
}

type EntityNode struct {
	UUID       string         `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Name       string         `yaml:"name" json:"name"`
	Quantities []QuantityNode `yaml:"quantities,omitempty" json:"quantities,omitempty"`
	Children   []EntityNode   `yaml:"children,omitempty" json:"children,omitempty"`
}

type QuantityNode struct {
	UUID string `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Name string `yaml:"name" json:"name"`

	// uuid or document_ref of the format specification
	FormatSpec string `yaml:"format_spec,omitempty" json:"format_spec,omitempty"`

	// uuid of the owning entity; only for nodes in the flat
	// Quantities section
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`

	DataFiles []DataFileNode `yaml:"data_files,omitempty" json:"data_files,omitempty"`
}

type DataFileNode struct {
	UUID       string         `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Name       string         `yaml:"name" json:"name"`
	UploadDate string         `yaml:"upload_date,omitempty" json:"upload_date,omitempty"`
	Metadata   map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`

	// path of the payload, relative to the document file
	FileData string `yaml:"file_data,omitempty" json:"file_data,omitempty"`

	// uuid of the owning quantity; only for nodes in the flat
	// DataFiles section
	Quantity string `yaml:"quantity,omitempty" json:"quantity,omitempty"`

	SpecVersion  string   `yaml:"spec_version,omitempty" json:"spec_version,omitempty"`
	PlotFile     string   `yaml:"plot_file,omitempty" json:"plot_file,omitempty"`
	PlotMimeType string   `yaml:"plot_mime_type,omitempty" json:"plot_mime_type,omitempty"`
	Comment      string   `yaml:"comment,omitempty" json:"comment,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

type ReleaseNode struct {
	Tag          string   `yaml:"tag" json:"tag"`
	ReleaseDate  string   `yaml:"release_date,omitempty" json:"release_date,omitempty"`
	Comment      string   `yaml:"comment,omitempty" json:"comment,omitempty"`
	DataFiles    []string `yaml:"data_files" json:"data_files"`
	Document     string   `yaml:"release_document,omitempty" json:"release_document,omitempty"`
	DocumentMime string   `yaml:"release_document_mime_type,omitempty" json:"release_document_mime_type,omitempty"`
}

// accepted timestamp layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads a timestamp in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
