// Package roster answers the relationship questions of a course
// administration: who is enrolled where, which tickets a course runs, which
// questions a ticket asks and which answers were submitted.
//
// Every relationship is a binding. Enrollment is stored in both directions
// (course to user in the courses binding file, user to course in the users
// binding file); tickets and questions hang off their parent's binding file;
// answers live in the per-question shard of the questions binding directory.
// Queries are Resolve calls filtered by source id and destination kind, so
// a binding whose destination record is missing is silently left out.
package roster
