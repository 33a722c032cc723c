// Package hcl_adapter implements config.Loader and config.Converter for HCL
// build descriptions.
//
// A description holds `xo` and `bitstream` blocks. Attributes are kept as
// raw expressions at load time; only the references they make to other
// declarations (`xo.<name>`, `bitstream.<name>`) are extracted so the engine
// can order generation. Expressions are evaluated later, once the artifacts
// they reference exist, with those artifacts injected into the evaluation
// context as capsule values.
package hcl_adapter
