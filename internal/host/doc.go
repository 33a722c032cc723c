// Package host provides the local environment the generator runs against:
// the build, scratch and private directory roots of the current build and a
// program finder for the external compiler.
package host
