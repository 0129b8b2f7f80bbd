/*
Package transform converts between the catalog, the editable workspace and the
stored layout format.

All functions are pure: they never mutate their inputs and never fail. Missing
data is resolved through fallbacks (label → field id, editorType → "dxTextBox").

  - ImportCatalog: catalog → node list (plus one trailing spacer).
  - ExportWorkspace: containers → export groups, merging catalog definitions with node metadata.
  - ImportLayout: export groups → containers with freshly generated ids.
*/
package transform
