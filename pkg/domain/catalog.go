package domain

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldDefinition describes one catalog field (a backend "vardef").
// Only label and editorType are interpreted; every other key is carried as-is.
type FieldDefinition = Attributes

// Catalog is the ordered dictionary of field definitions keyed by field id.
// The zero value is an empty catalog.
type Catalog struct {
	fields *orderedmap.OrderedMap[string, *FieldDefinition]
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{fields: orderedmap.New[string, *FieldDefinition]()}
}

func (c *Catalog) init() {
	if c.fields == nil {
		c.fields = orderedmap.New[string, *FieldDefinition]()
	}
}

// Set adds or replaces a definition. New ids are appended at the end.
func (c *Catalog) Set(fieldID string, def *FieldDefinition) {
	c.init()
	if def == nil {
		def = NewAttributes()
	}
	c.fields.Set(fieldID, def)
}

// Get returns the definition registered under fieldID.
func (c *Catalog) Get(fieldID string) (*FieldDefinition, bool) {
	if c == nil || c.fields == nil {
		return nil, false
	}
	return c.fields.Get(fieldID)
}

// Len reports the number of definitions.
func (c *Catalog) Len() int {
	if c == nil || c.fields == nil {
		return 0
	}
	return c.fields.Len()
}

// Each calls fn for every definition in catalog order.
func (c *Catalog) Each(fn func(fieldID string, def *FieldDefinition)) {
	if c == nil || c.fields == nil {
		return
	}
	for pair := c.fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// IDs lists field ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, c.Len())
	c.Each(func(id string, _ *FieldDefinition) {
		ids = append(ids, id)
	})
	return ids
}

// MarshalJSON encodes the catalog as a JSON object in catalog order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	if c == nil || c.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.fields)
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, *FieldDefinition]()
	if err := json.Unmarshal(data, fields); err != nil {
		return err
	}
	// Entries written as null still need an (empty) definition.
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = NewAttributes()
		}
	}
	c.fields = fields
	return nil
}
