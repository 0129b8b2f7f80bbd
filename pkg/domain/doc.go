/*
Package domain contains the data model of the layout builder.

It defines the editable units of a workspace and the persisted layout format.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: a form field (or the spacer placeholder) that can be placed in a container.
  - Container: a named, column-configured group of nodes.
  - Catalog: the ordered dictionary of field definitions nodes are built from.
  - ExportGroup: a container in the stored JSON format ("group" with "items").
  - Attributes: ordered JSON-like key/value sets carried opaquely through import and export.
*/
package domain
