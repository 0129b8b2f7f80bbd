/*
Package layoutkit is the backend of a drag-and-drop form layout builder.

Users arrange fields from a catalog into named containers (groups). The
package converts between three shapes of the same data: the catalog of field
definitions, the editable workspace of containers and nodes, and the export
document persisted by a layout repository.

# Concepts

  - Catalog: ordered field definitions keyed by field id. Each field becomes a
    draggable node, and a reserved "spacer" node is always offered last.
  - Workspace: the containers being edited plus the pool of nodes not yet
    placed. Placed fields leave the pool and come back when their container is
    removed. Spacers can be placed any number of times.
  - Layout: the export document, an array of groups ({name, itemType,
    colCount, items}) where each item carries dataField, editorType, label and
    any catalog metadata. Spacers are never exported.

# Usage

	kit := layoutkit.New("./storage/layouts")

	ws, err := kit.Workspace(ctx)
	if err != nil {
		log.Fatal(err)
	}

	c := ws.AddContainer("Personal Info")
	ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[:2])

	saved, err := ws.SaveLayout(ctx, "Customer Form")

Importing the saved layout into a fresh workspace and exporting it again
yields the same document.

# Adapters

Repositories live under pkg/adapters (file, memory, redis and an HTTP client
for a remote API). pkg/persistence/middleware adds locking, metrics and
logging around any repository. pkg/adapters/http and pkg/adapters/mcp expose
a repository and catalog over HTTP and the Model Context Protocol.
*/
package layoutkit
