// Package harness runs YAML scenarios against a fresh coordinator and
// compares the files they leave behind with golden snapshots.
//
// # Scenario Format
//
//	name: enrollment
//	description: "Enrolling twice stores one edge per direction"
//	records:
//	  - kind: user
//	    fields: { id: u1, name: Ann, password: pw, type: STUDENT }
//	flow:
//	  - enroll: { course: c1, user: u1 }
//	  - bind: { path: /tickets.bindings, src: "ticket:t1", dest: "question:q1" }
//	    expect: { created: true }
//	  - submit: { id: a1, question: q1, user: u1, value: b }
//	assertions:
//	  - type: resolve
//	    path: /courses.bindings
//	    src: "course:c1"
//	    dest_kind: user
//	    ids: [u1]
//	  - type: binding_count
//	    path: /courses.bindings
//	    count: 1
//
// Records are cached at their kind's path (or the record's own path) and
// every touched path is saved before the flow starts. Each flow step holds
// exactly one operation: bind, enroll, attach_ticket, attach_question or
// submit.
//
// # Assertion Types
//
//   - resolve: the destination ids reached from a binding file (set match)
//   - binding_count: number of bindings stored at a path
//   - record_count: number of records of a kind at a path
//   - record: a subset match on the stored JSON of one record
//
// # Deterministic Testing
//
// Binding ids come from a sequence generator (b-1, b-2, ...) and answer
// submission times from a step clock starting at 2024-09-02T08:00:00Z,
// so the same scenario always writes byte-identical files. RunWithGolden
// compares those files against testdata/golden/<name>.golden.
package harness
