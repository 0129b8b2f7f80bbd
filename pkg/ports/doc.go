/*
Package ports defines the driven ports (interfaces) of layoutkit.

These interfaces decouple the workspace and the HTTP/MCP surfaces from the
storage backends, so the same code runs against a directory of JSON files,
Redis, an in-memory map or a remote layoutkit server.

# Key Interfaces

  - LayoutRepository: saves, lists and retrieves layout documents.
  - CatalogLoader: provides the field catalog.
  - DistributedLocker: provides distributed locking for concurrent saves across replicas.
*/
package ports
