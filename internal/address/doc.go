/*
Package address provides the canonical identifiers used for declarations and
the build tasks generated from them.

A declaration address has the form `<kind>.<name>`, e.g. `xo.mm` or
`bitstream.top`. A task address appends the pipeline stage that produced it,
e.g. `bitstream.top.link`.

The same string form is used in HCL references (`xo.mm` inside a `sources`
list), in task IDs of a rendered plan, and on the command line.
*/
package address
