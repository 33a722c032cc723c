package integration_tests

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xclgen/internal/testutil"
)

func TestGenerateXO_SingleKernel(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"main.hcl": `
			xo "mm" {
				sources      = ["k.cpp"]
				platform     = "xilinx_u250"
				build_target = "hw"
			}
		`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	doc := result.Plan(t)
	require.Len(t, doc.Tasks, 1)

	build := result.BuildDir()
	task := doc.Tasks[0]
	assert.Equal(t, "xo.mm.compile", task.ID)
	want := []string{
		filepath.Join(result.BinDir(), "v++"), "-c", "-g", "-t", "hw", "--platform", "xilinx_u250",
		"-k", "mm", "-I", build + "/",
		"--temp_dir", filepath.Join(build, "private", "_x.hw.xilinx_u250"),
		"-o", filepath.Join(build, "scratch", "mm.xo"),
		"k.cpp",
	}
	if diff := cmp.Diff(want, task.Command); diff != "" {
		t.Errorf("compile command mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{filepath.Join(build, "scratch", "mm.xo")}, task.Outputs)
	assert.Equal(t, []string{"k.cpp"}, task.Inputs)
	assert.True(t, task.BuildByDefault)
	assert.False(t, task.Console)
	assert.False(t, task.AlwaysStale)
}

func TestBitstream_CompileThenLink(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
			bitstream "top" {
				sources      = ["a.cpp"]
				platform     = "p1"
				build_target = "hw"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files)

	require.NoError(t, result.Err, result.LogOutput)
	doc := result.Plan(t)
	assert.Equal(t, []string{"bitstream.top.compile", "bitstream.top.link"}, testutil.TaskIDs(doc))

	compile, link := doc.Tasks[0], doc.Tasks[1]
	assert.False(t, compile.BuildByDefault, "the object of a bitstream is built on demand")
	assert.Subset(t, link.Inputs, compile.Outputs)
	assert.Equal(t, []string{"bitstream.top.compile"}, link.DependsOn)
	assert.True(t, link.Console)
	assert.True(t, link.BuildByDefault)
	assert.Equal(t, []string{filepath.Join(result.BuildDir(), "top.xclbin")}, link.Outputs)
	assert.Equal(t, compile.WorkingDir, link.WorkingDir)
}

func TestKernelsFeedBitstream(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"kernels.hcl": `
			xo "vadd" {
				sources      = ["vadd.cpp"]
				platform     = "p1"
				build_target = "hw_emu"
			}

			xo "vmul" {
				kernel         = "krnl_vmul"
				sources        = ["vmul.cpp"]
				platform       = "p1"
				build_target   = "hw_emu"
				kernel_src_dir = "src/vmul"
			}
		`,
		"system/top.hcl": `
			bitstream "system" {
				inputs       = [xo.vadd]
				sources      = [xo.vmul, "host_glue.cpp"]
				platform     = "p1"
				build_target = "hw_emu"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files)

	require.NoError(t, result.Err, result.LogOutput)
	doc := result.Plan(t)
	require.Len(t, doc.Tasks, 4)

	scratch := filepath.Join(result.BuildDir(), "scratch")
	compile := testutil.TaskByID(t, doc, "bitstream.system.compile")
	assert.Equal(t, []string{
		filepath.Join(scratch, "vadd.xo"),
		filepath.Join(scratch, "krnl_vmul.xo"),
		"host_glue.cpp",
	}, compile.Inputs, "positional inputs come first")
	assert.ElementsMatch(t, []string{"xo.krnl_vmul.compile", "xo.vadd.compile"}, compile.DependsOn)

	vmul := testutil.TaskByID(t, doc, "xo.krnl_vmul.compile")
	assert.Contains(t, vmul.Command, filepath.Join(result.BuildDir(), "src", "vmul"))

	for _, producer := range []string{"xo.vadd.compile", "xo.krnl_vmul.compile"} {
		assert.Less(t, testutil.IndexOf(doc, producer), testutil.IndexOf(doc, "bitstream.system.compile"))
	}
	assert.Less(t, testutil.IndexOf(doc, "bitstream.system.compile"), testutil.IndexOf(doc, "bitstream.system.link"))

	assert.Contains(t, result.LogOutput, "Resolved external tool.")
}

func TestSharedWorkingDirPerTargetAndPlatform(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
			xo "a" {
				sources      = ["a.cpp"]
				platform     = "p1"
				build_target = "hw"
			}
			xo "b" {
				sources      = ["b.cpp"]
				platform     = "p1"
				build_target = "hw"
			}
			xo "c" {
				sources      = ["c.cpp"]
				platform     = "p2"
				build_target = "sw_emu"
			}
		`,
	}

	result := testutil.RunIntegrationTest(t, files)

	require.NoError(t, result.Err, result.LogOutput)
	doc := result.Plan(t)
	a := testutil.TaskByID(t, doc, "xo.a.compile")
	b := testutil.TaskByID(t, doc, "xo.b.compile")
	c := testutil.TaskByID(t, doc, "xo.c.compile")
	assert.Equal(t, a.WorkingDir, b.WorkingDir)
	assert.NotEqual(t, a.WorkingDir, c.WorkingDir)
	assert.Equal(t, filepath.Join(result.BuildDir(), "private", "_x.sw_emu.p2"), c.WorkingDir)
}

func TestPlanIsDeterministic(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"main.hcl": `
			xo "z" {
				sources      = ["z.cpp"]
				platform     = "p"
				build_target = "hw"
			}
			xo "a" {
				sources      = ["a.cpp"]
				platform     = "p"
				build_target = "hw"
			}
			bitstream "m" {
				sources      = [xo.z, xo.a]
				platform     = "p"
				build_target = "hw"
			}
		`,
	}

	first := testutil.RunIntegrationTest(t, files)
	require.NoError(t, first.Err)
	want := []string{"xo.a.compile", "xo.z.compile", "bitstream.m.compile", "bitstream.m.link"}

	for i := 0; i < 5; i++ {
		again := testutil.RunIntegrationTest(t, files)
		require.NoError(t, again.Err)
		assert.Equal(t, want, testutil.TaskIDs(again.Plan(t)))
	}
	assert.Equal(t, want, testutil.TaskIDs(first.Plan(t)))
}
