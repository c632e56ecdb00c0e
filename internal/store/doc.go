// Package store persists collections of records as line-oriented files.
//
// Each collection lives at a store path: a relative location that must
// start with "/" and is joined onto a base directory. A collection is
// saved as one canonical JSON record per line and always rewritten in
// full.
//
// # Components
//
//   - Backend: reads and writes the lines of one store path.
//     FileBackend keeps one UTF-8 text file per path; SQLiteBackend keeps
//     the same lines as rows of a single SQLite database.
//   - Codec: encodes one record kind to a canonical line and back.
//   - Table: the per-kind DAO. Load returns id -> record, Save rewrites.
//
// # Failure policy
//
//   - A path without a leading "/" is rejected before any I/O (ErrInvalidPath).
//   - A path that cannot be read yields an empty collection.
//   - A line that does not decode is logged and skipped.
//   - Save returns I/O errors; callers decide whether to surface them.
//
// # Canonical lines
//
// Lines are canonical JSON: object keys sorted, strings kept byte for byte,
// no HTML escaping. Identical collections produce byte-identical files,
// which keeps golden tests and diffs stable.
package store
