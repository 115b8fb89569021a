package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

// Decode reads a schema document, YAML or JSON.
func Decode(r io.Reader) (*Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: unparsable schema document: %s", domain.ErrValidation, err)
	}
	return &doc, nil
}

// EncodeYAML writes the document as YAML.
func EncodeYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// EncodeJSON writes the document as JSON.
func EncodeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// decodeMetadata parses the stored JSON metadata of a data file.
// Metadata was validated on the way in, so parse failures cannot happen;
// a nil map stands for "no metadata" either way.
func decodeMetadata(metadata string) map[string]any {
	if metadata == "" {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(metadata), &decoded); err != nil {
		return nil
	}
	return decoded
}
