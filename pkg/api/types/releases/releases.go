package releases

import (
	"time"

	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/utils/slices"
)

// Detail is the API rendering of a release.
type Detail struct {
	Tag         string   `json:"tag"`
	ReleaseDate string   `json:"release_date"`
	Comment     string   `json:"comment,omitempty"`
	DataFiles   []string `json:"data_files"`

	HasDocument bool `json:"has_document"`
	HasDump     bool `json:"has_dump"`
}

func ComposeDetail(release domain.Release) Detail {
	return Detail{
		Tag:         release.Tag,
		ReleaseDate: release.RelDate.UTC().Format(time.RFC3339Nano),
		Comment:     release.Comment,
		DataFiles: slices.Map(
			release.DataFiles,
			func(member uuid.UUID) string { return member.String() },
		),
		HasDocument: !release.Document.Empty(),
		HasDump:     !release.DumpFile.Empty(),
	}
}

// Creation is the request body tagging a release.
type Creation struct {
	Tag         string   `json:"tag"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Comment     string   `json:"comment,omitempty"`
	DataFiles   []string `json:"data_files,omitempty"`
}
