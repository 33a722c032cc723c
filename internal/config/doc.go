// Package config defines the format-agnostic model of a build description,
// along with the interfaces (Loader, Converter) for loading it and for
// evaluating its attribute expressions.
//
// The `config.Model` is the single source of truth for the `engine`
// package. Concrete implementations of the interfaces, such as for HCL, are
// provided in separate packages.
package config
