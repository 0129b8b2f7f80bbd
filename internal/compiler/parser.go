package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/layoutkit/pkg/domain"
)

// Parser converts raw layout documents into groups.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a layout document. Both a bare group array and the
// {"layout": [...]} envelope used by the HTTP API are accepted.
// A document without a layout (null, or an envelope missing the key) is a
// validation error; an empty array is a valid empty layout.
func (p *Parser) Parse(data []byte) ([]domain.ExportGroup, error) {
	trimmed := bytes.TrimSpace(data)

	var layout []domain.ExportGroup
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var envelope struct {
			Layout []domain.ExportGroup `json:"layout"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		layout = envelope.Layout
	} else if err := json.Unmarshal(trimmed, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	if err := domain.ValidateLayout(layout); err != nil {
		return nil, err
	}
	return layout, nil
}
