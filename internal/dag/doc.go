// Package dag is a small, concurrency-safe directed acyclic graph keyed by
// string IDs.
//
// It knows nothing about declarations or tasks. The engine uses it to order
// declarations by the artifacts they consume, and the plan uses it to order
// registered tasks by the outputs they read. Every ordering it returns is
// deterministic: ties are broken by ID.
package dag
