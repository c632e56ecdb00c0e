// Package persist provides the Coordinator, the single owner of every
// in-memory collection and the only component that talks to a store.
//
// For each record kind the coordinator keeps one cache per store path and
// offers three operations:
//
//   - get-or-load (Users, Courses, ...): returns the cached collection, reading
//     it from the backend the first time the path is used
//   - cache (CacheUser, ...): puts one record into the path's cache without
//     any I/O; a path that was never loaded starts out empty
//   - save (SaveUsers, ...): rewrites the backing collection from the cache;
//     a path that was never loaded or cached is left alone
//
// An empty path selects the kind's default path. Any other path must start
// with "/" and is rejected before I/O otherwise.
//
// Caching before loading is a hazard: saving such a path replaces whatever
// was stored with only the records cached since. Callers that add to an
// existing collection should get-or-load it first.
//
// # Failure policy
//
// Invalid paths and invalid records are returned to the caller. Storage
// failures on save are logged and swallowed; the cache keeps the new
// records and Flush writes them again. ErrNotDirectory is the exception
// and is returned, because it points at a broken directory layout rather
// than a transient failure.
//
// # Concurrency
//
// Each (kind, path) cache has its own mutex, held for the whole of one
// operation. Different paths and kinds never block each other. Bind holds
// the binding path's mutex across its duplicate check, insert and save,
// so concurrent binds of the same edge store it once.
//
// Caches are never evicted.
package persist
