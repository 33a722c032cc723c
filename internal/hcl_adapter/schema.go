package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks from any file.
type fileRoot struct {
	XOs        []*xoBlock        `hcl:"xo,block"`
	Bitstreams []*bitstreamBlock `hcl:"bitstream,block"`
}

// xoBlock is the schema of an `xo` block. Every attribute is optional at
// the schema level so that missing values surface as generation errors.
type xoBlock struct {
	Name         string         `hcl:"name,label"`
	Kernel       hcl.Expression `hcl:"kernel,optional"`
	Sources      hcl.Expression `hcl:"sources,optional"`
	Inputs       hcl.Expression `hcl:"inputs,optional"`
	Platform     hcl.Expression `hcl:"platform,optional"`
	BuildTarget  hcl.Expression `hcl:"build_target,optional"`
	KernelSrcDir hcl.Expression `hcl:"kernel_src_dir,optional"`
	DeclRange    hcl.Range      `hcl:",def_range"`
}

// bitstreamBlock is the schema of a `bitstream` block. Its label is the
// bitstream name.
type bitstreamBlock struct {
	Name        string         `hcl:"name,label"`
	Sources     hcl.Expression `hcl:"sources,optional"`
	Inputs      hcl.Expression `hcl:"inputs,optional"`
	Platform    hcl.Expression `hcl:"platform,optional"`
	BuildTarget hcl.Expression `hcl:"build_target,optional"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}
