// Package engine turns a loaded build description into registered build
// tasks.
//
// Declarations form a graph through the artifacts they reference. The engine
// rejects unknown references and cycles, then walks the graph level by level.
// Declarations within one level are independent and are generated
// concurrently, bounded by the configured worker count. Every level sees the
// artifacts of all earlier levels through the converter's evaluation context.
//
// All declarations share one vitis.Generator, so the external tool is looked
// up once per run however many declarations there are.
package engine
