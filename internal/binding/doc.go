// Package binding provides the in-memory index of bindings for one store
// path and the relationship query built on it.
//
// Resolve is the only traversal primitive. A query such as "students in a
// course" is a pair of predicates, SourceIs(course) and DestKindIs(user),
// whose surviving bindings are dereferenced through a model.Resolver.
//
// Index is safe for concurrent use. It does not perform I/O; loading and
// saving are the coordinator's job.
package binding
