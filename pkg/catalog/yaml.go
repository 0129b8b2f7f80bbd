package catalog

import (
	"fmt"

	"github.com/aretw0/layoutkit/pkg/domain"
	"gopkg.in/yaml.v3"
)

// parseYAML walks the yaml.Node tree instead of decoding into a map, so the
// order of field ids and of each definition's keys is preserved.
func parseYAML(data []byte) (*domain.Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := domain.NewCatalog()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return c, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return c, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog must be a mapping of field ids, got %s", kindName(root))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		id := root.Content[i].Value
		defNode := root.Content[i+1]

		def := domain.NewAttributes()
		switch {
		case defNode.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(defNode.Content); j += 2 {
				v, err := decodeValue(defNode.Content[j+1])
				if err != nil {
					return nil, fmt.Errorf("field %s: %w", id, err)
				}
				def.Set(defNode.Content[j].Value, v)
			}
		case defNode.Tag == "!!null":
		default:
			return nil, fmt.Errorf("field %s: definition must be a mapping, got %s", id, kindName(defNode))
		}
		c.Set(id, def)
	}
	return c, nil
}

// decodeValue converts a nested node to the shapes encoding/json would
// produce for the same document: numbers become float64, mappings map[string]any.
func decodeValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.AliasNode {
		return decodeValue(n.Alias)
	}
	if n.Kind == yaml.ScalarNode && (n.Tag == "!!int" || n.Tag == "!!float") {
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	}
	if n.Kind == yaml.SequenceNode {
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
	if n.Kind == yaml.MappingNode {
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := decodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "unknown"
	}
}
