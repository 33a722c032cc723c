package vitis

import (
	"path/filepath"
	"strings"
)

// ArtifactPlanner computes where each artifact of a pipeline lives. All
// methods are pure functions of their arguments and the roots captured at
// construction.
type ArtifactPlanner struct {
	buildDir   string
	scratchDir string
	privateDir string
}

// NewArtifactPlanner captures the host's directory roots.
func NewArtifactPlanner(dirs Dirs) ArtifactPlanner {
	return ArtifactPlanner{
		buildDir:   dirs.BuildDir(),
		scratchDir: dirs.ScratchDir(),
		privateDir: dirs.PrivateDir(),
	}
}

// ObjectPath is `<scratch>/<kernel>.xo`.
func (p ArtifactPlanner) ObjectPath(kernel string) ArtifactPath {
	return ArtifactPath{Kind: KindObject, Path: filepath.Join(p.scratchDir, kernel+".xo")}
}

// BitstreamPath is `<build>/<name>.xclbin`.
func (p ArtifactPlanner) BitstreamPath(name string) ArtifactPath {
	return ArtifactPath{Kind: KindBitstream, Path: filepath.Join(p.buildDir, name+".xclbin")}
}

// WorkingDir is `<private>/_x.<build_target>.<platform>`. Build targets never
// contain a dot, so the name splits back into its two parts unambiguously.
func (p ArtifactPlanner) WorkingDir(buildTarget, platform string) ArtifactPath {
	return ArtifactPath{Kind: KindScratch, Path: filepath.Join(p.privateDir, "_x."+buildTarget+"."+platform)}
}

// IncludeDir is the kernel header directory under the build root. An empty
// kernelSrcDir yields the build root itself with a trailing separator.
func (p ArtifactPlanner) IncludeDir(kernelSrcDir string) string {
	switch {
	case kernelSrcDir == "":
		return strings.TrimRight(p.buildDir, string(filepath.Separator)) + string(filepath.Separator)
	case filepath.IsAbs(kernelSrcDir):
		return filepath.Clean(kernelSrcDir)
	default:
		return filepath.Join(p.buildDir, kernelSrcDir)
	}
}
