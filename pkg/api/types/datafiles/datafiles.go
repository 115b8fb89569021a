package datafiles

import (
	"encoding/json"
	"time"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"

	"github.com/google/uuid"
)

// Detail is the API rendering of one data file version.
type Detail struct {
	UUID        string          `json:"uuid"`
	Name        string          `json:"name"`
	UploadDate  string          `json:"upload_date"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Quantity    string          `json:"quantity"`
	SpecVersion string          `json:"spec_version,omitempty"`
	PlotMime    string          `json:"plot_mime_type,omitempty"`
	Comment     string          `json:"comment,omitempty"`

	Dependencies []string `json:"dependencies"`
	ReleaseTags  []string `json:"release_tags"`

	HasFileData bool `json:"has_file_data"`
	HasPlotFile bool `json:"has_plot_file"`
}

func ComposeDetail(file domain.DataFile) Detail {
	detail := Detail{
		UUID:        file.UUID.String(),
		Name:        file.Name,
		UploadDate:  file.UploadDate.UTC().Format(time.RFC3339Nano),
		Quantity:    file.Quantity.String(),
		SpecVersion: file.SpecVersion,
		PlotMime:    file.PlotMime,
		Comment:     file.Comment,
		Dependencies: slices.Map(
			file.Dependencies,
			func(dep uuid.UUID) string { return dep.String() },
		),
		ReleaseTags: file.ReleaseTags,
		HasFileData: !file.FileData.Empty(),
		HasPlotFile: !file.PlotFile.Empty(),
	}
	if file.Metadata != "" {
		detail.Metadata = json.RawMessage(file.Metadata)
	}
	if detail.Dependencies == nil {
		detail.Dependencies = []string{}
	}
	if detail.ReleaseTags == nil {
		detail.ReleaseTags = []string{}
	}
	return detail
}

// Upload is the request body registering a new version under a quantity.
// Payload bytes travel separately; here only descriptive fields.
type Upload struct {
	UUID         string          `json:"uuid,omitempty"`
	Name         string          `json:"name"`
	UploadDate   string          `json:"upload_date,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	SpecVersion  string          `json:"spec_version,omitempty"`
	Comment      string          `json:"comment,omitempty"`
	Dependencies []string        `json:"dependencies,omitempty"`
}

// Update is the request body editing the mutable fields of a version.
type Update struct {
	Metadata *json.RawMessage `json:"metadata,omitempty"`
	Comment  *string          `json:"comment,omitempty"`
}
