// Package model provides the typed records persisted by binder.
//
// This package contains value types only. Every other internal package
// imports model; model imports nothing internal. It defines:
//   - Kind: the closed set of record kinds (answer, binding, course, question, ticket, user)
//   - one string-backed identifier type per kind, each reporting its Kind
//   - the entity records (User, Course, Ticket, Question, Answer)
//   - Binding: a typed directed edge between two identifiers
//
// Identifiers of different kinds never compare equal, even when their
// string values match, because they are distinct Go types.
//
// Resolution of an identifier back into its record is dispatched by kind
// through the Resolver interface. The resolver is always passed in
// explicitly; nothing in this package holds a reference to storage.
package model
