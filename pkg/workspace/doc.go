/*
Package workspace holds the editable state of one layout-building session.

A Workspace owns an ordered list of containers, the pool of catalog nodes
not yet placed in any container, and the loading flags a UI binds to. It is
created explicitly with New and handed to whoever needs it; there is no
process-wide instance.

Every method is safe for concurrent use. Loads fetch from the repository
without holding the lock and swap the new state in at the end, so readers
keep seeing the previous state until a load completes. When two loads race,
the last one to finish wins.
*/
package workspace
