// Package plan is the in-process host for generated build tasks.
//
// A Plan accepts task batches from a vitis.Generator, hands back artifact
// handles, and tracks which task produces each output so that consumers are
// ordered after their producers. Registration of a batch is atomic: either
// every task in it is recorded or none is.
//
// # Ordering
//
// Producer to consumer edges are derived from paths, not from handles. A task
// whose input path equals another task's output depends on that task, in
// whichever order the two were registered. Rendered plans list tasks by
// dependency level and, within a level, by task ID.
//
// # Rendering
//
// A plan renders as JSON, YAML or HCL. All three carry the same fields.
package plan
