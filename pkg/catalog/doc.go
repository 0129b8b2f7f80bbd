// Package catalog loads the field catalog (field id -> definition) from JSON or YAML.
// Both decoders keep the document's key order, which is the order nodes appear in the UI.
package catalog
