package entities

import (
	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Detail is the API rendering of one entity node.
type Detail struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`

	// slash-joined names from the root down to this entity
	Path string `json:"path,omitempty"`
}

func ComposeDetail(entity domain.Entity) Detail {
	detail := Detail{
		UUID: entity.UUID.String(),
		Name: entity.Name,
	}
	if entity.Parent != nil {
		detail.Parent = entity.Parent.String()
	}
	return detail
}

func ComposeDetailWithPath(entity domain.Entity, segments []string) Detail {
	detail := ComposeDetail(entity)
	detail.Path = domain.JoinPath(segments)
	return detail
}

// Creation is the request body adding an entity to the tree.
// Parent is empty for a root entity.
type Creation struct {
	UUID   string `json:"uuid,omitempty"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}
