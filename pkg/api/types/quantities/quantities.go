package quantities

import (
	"github.com/google/uuid"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Detail is the API rendering of a quantity.
type Detail struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	Entity     string `json:"entity"`
	FormatSpec string `json:"format_spec,omitempty"`
}

func ComposeDetail(quantity domain.Quantity) Detail {
	detail := Detail{
		UUID:   quantity.UUID.String(),
		Name:   quantity.Name,
		Entity: quantity.Entity.String(),
	}
	if quantity.FormatSpec != uuid.Nil {
		detail.FormatSpec = quantity.FormatSpec.String()
	}
	return detail
}

// Creation is the request body attaching a quantity to an entity.
// FormatSpec may be a uuid or a specification document_ref.
type Creation struct {
	UUID       string `json:"uuid,omitempty"`
	Name       string `json:"name"`
	Entity     string `json:"entity"`
	FormatSpec string `json:"format_spec,omitempty"`
}
