// Package vitis generates the build tasks that turn FPGA kernel sources into
// Xilinx kernel objects (.xo) and bitstreams (.xclbin) with the external v++
// compiler.
//
// The package never runs v++. It translates a small, validated set of
// declared parameters into a resolved tool handle, deterministic artifact
// paths and an exact argument vector per pipeline stage, and hands the
// resulting BuildTask values to a host TaskSink that owns execution.
//
// The pieces, leaf first:
//
//   - ToolResolver locates the compiler once per Generator and caches it.
//   - ArtifactPlanner computes object, bitstream and working-directory paths.
//   - Aggregate merges positional and keyword source lists.
//   - CompileCommand and LinkCommand build the per-stage argument vectors.
//   - PipelineAssembler sequences the stages of one request.
//   - Generator exposes the declarative entry points GenerateXO and Bitstream.
package vitis

// ModuleInfo describes the generator module to the host build system.
type ModuleInfo struct {
	Name     string
	Since    string
	Unstable bool
}

// Info is the metadata of this module.
var Info = ModuleInfo{Name: "FPGA/Xilinx", Since: "1.4.0", Unstable: true}

// DefaultTool is the compiler executable looked up when no other name is configured.
const DefaultTool = "v++"
