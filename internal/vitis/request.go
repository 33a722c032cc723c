package vitis

import (
	"fmt"
	"regexp"

	"github.com/vk/xclgen/internal/address"
)

// BuildTargets are the values v++ accepts for -t.
var BuildTargets = []string{"sw_emu", "hw_emu", "hw"}

// platformRegex accepts platform names such as xilinx_u250_gen3x16_xdma_4_1_202210_1.
var platformRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)

// BuildRequest is the validated input of one pipeline. It is created once per
// declared kernel or bitstream and not modified afterwards.
type BuildRequest struct {
	Kernel        string
	Platform      string
	BuildTarget   string
	Sources       []SourceRef
	KernelSrcDir  string
	BitstreamName string
}

// validateXO checks a kernel-object request. Required fields are checked
// before anything else so that a misconfigured request touches nothing.
func (r BuildRequest) validateXO() error {
	switch {
	case r.Kernel == "":
		return missingf("kernel is required")
	case r.Platform == "":
		return missingf("platform is required")
	case r.BuildTarget == "":
		return missingf("build_target is required")
	case len(r.Sources) == 0:
		return missingf("at least one source is required")
	}
	if !address.ValidName(r.Kernel) {
		return invalidf("kernel name %q must match [A-Za-z0-9_][A-Za-z0-9_-]*", r.Kernel)
	}
	return r.validateCommon()
}

// bitstreamNames resolves the kernel and bitstream names of a bitstream
// request. BitstreamName is the source of truth; Kernel may only repeat it.
func (r BuildRequest) bitstreamNames() (kernel, bitstream string, err error) {
	kernel, bitstream = r.Kernel, r.BitstreamName
	switch {
	case bitstream == "" && kernel == "":
		return "", "", missingf("bitstream_name is required")
	case bitstream == "":
		bitstream = kernel
	case kernel == "":
		kernel = bitstream
	case kernel != bitstream:
		return "", "", collisionf("kernel %q disagrees with bitstream_name %q", kernel, bitstream)
	}
	return kernel, bitstream, nil
}

func (r BuildRequest) validateBitstream() error {
	kernel, _, err := r.bitstreamNames()
	if err != nil {
		return err
	}
	switch {
	case r.Platform == "":
		return missingf("platform is required")
	case r.BuildTarget == "":
		return missingf("build_target is required")
	case len(r.Sources) == 0:
		return missingf("at least one source is required")
	}
	if !address.ValidName(kernel) {
		return invalidf("bitstream name %q must match [A-Za-z0-9_][A-Za-z0-9_-]*", kernel)
	}
	return r.validateCommon()
}

func (r BuildRequest) validateCommon() error {
	if !platformRegex.MatchString(r.Platform) {
		return invalidf("platform %q is not a platform name", r.Platform)
	}
	if !knownBuildTarget(r.BuildTarget) {
		return invalidf("build_target %q must be one of %v", r.BuildTarget, BuildTargets)
	}
	for i, src := range r.Sources {
		if _, err := sourcePath(src); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	return nil
}

func knownBuildTarget(t string) bool {
	for _, known := range BuildTargets {
		if t == known {
			return true
		}
	}
	return false
}
