package specs

import (
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Detail is the API rendering of a format specification.
type Detail struct {
	UUID         string `json:"uuid"`
	DocumentRef  string `json:"document_ref"`
	Title        string `json:"title,omitempty"`
	DocFileName  string `json:"doc_file_name,omitempty"`
	DocMimeType  string `json:"doc_mime_type,omitempty"`
	FileMimeType string `json:"file_mime_type,omitempty"`

	// true when a specification document is attached and can be
	// downloaded from /api/format_specs/:uuid/document
	HasDocument bool `json:"has_document"`
}

func ComposeDetail(spec domain.FormatSpecification) Detail {
	return Detail{
		UUID:         spec.UUID.String(),
		DocumentRef:  spec.DocumentRef,
		Title:        spec.Title,
		DocFileName:  spec.DocFileName,
		DocMimeType:  spec.DocMimeType,
		FileMimeType: spec.FileMimeType,
		HasDocument:  !spec.DocFile.Empty(),
	}
}

// Creation is the request body registering a new format specification.
// The document payload itself is uploaded separately.
type Creation struct {
	UUID         string `json:"uuid,omitempty"`
	DocumentRef  string `json:"document_ref"`
	Title        string `json:"title,omitempty"`
	DocFileName  string `json:"doc_file_name,omitempty"`
	DocMimeType  string `json:"doc_mime_type,omitempty"`
	FileMimeType string `json:"file_mime_type,omitempty"`
}
