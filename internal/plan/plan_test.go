package plan

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xclgen/internal/address"
	"github.com/vk/xclgen/internal/vitis"
)

type fakeEnv struct{}

func (fakeEnv) BuildDir() string   { return "/b" }
func (fakeEnv) ScratchDir() string { return "/s" }
func (fakeEnv) PrivateDir() string { return "/p" }
func (fakeEnv) FindProgram(name string) (string, error) {
	return "/opt/bin/" + name, nil
}

func task(id, output string, inputs ...string) *vitis.BuildTask {
	addr, err := address.Parse(id)
	if err != nil {
		panic(err)
	}
	return &vitis.BuildTask{
		ID:         addr,
		Command:    vitis.StageCommand{Args: []string{"/opt/bin/v++", "-o", output}, BuildByDefault: true},
		Inputs:     vitis.Paths(inputs...),
		Outputs:    []vitis.ArtifactPath{{Kind: vitis.KindObject, Path: output}},
		WorkingDir: vitis.ArtifactPath{Kind: vitis.KindScratch, Path: "/p/_x.hw.p1"},
	}
}

func taskIDs(t *testing.T, p *Plan) []string {
	t.Helper()
	tasks, err := p.Tasks()
	require.NoError(t, err)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID.String()
	}
	return ids
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("returns one handle per task", func(t *testing.T) {
		p := New()
		a, b := task("xo.a.compile", "/s/a.xo", "a.cpp"), task("xo.b.compile", "/s/b.xo", "b.cpp")

		handles, err := p.Register(ctx, a, b)
		require.NoError(t, err)
		require.Len(t, handles, 2)
		assert.Equal(t, a.ID, handles[0].Producer)
		assert.Equal(t, "/s/a.xo", handles[0].Output.Path)
		assert.Equal(t, "/s/b.xo", handles[1].Output.Path)
		assert.Equal(t, 2, p.Len())

		got, ok := p.Task("xo.a.compile")
		require.True(t, ok)
		assert.Same(t, a, got)
	})

	t.Run("identical task is idempotent", func(t *testing.T) {
		p := New()
		first, err := p.Register(ctx, task("xo.a.compile", "/s/a.xo", "a.cpp"))
		require.NoError(t, err)
		second, err := p.Register(ctx, task("xo.a.compile", "/s/a.xo", "a.cpp"))
		require.NoError(t, err)
		assert.Same(t, first[0], second[0])
		assert.Equal(t, 1, p.Len())
	})

	t.Run("same id with other contents conflicts", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx, task("xo.a.compile", "/s/a.xo", "a.cpp"))
		require.NoError(t, err)
		_, err = p.Register(ctx, task("xo.a.compile", "/s/a.xo", "other.cpp"))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("two tasks writing one output collide", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx, task("xo.a.compile", "/s/k.xo", "a.cpp"))
		require.NoError(t, err)
		_, err = p.Register(ctx, task("xo.b.compile", "/s/k.xo", "b.cpp"))
		assert.ErrorIs(t, err, vitis.ErrNameCollision)
	})

	t.Run("failed batch records nothing", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx,
			task("xo.a.compile", "/s/k.xo", "a.cpp"),
			task("xo.b.compile", "/s/k.xo", "b.cpp"),
		)
		require.ErrorIs(t, err, vitis.ErrNameCollision)
		assert.Equal(t, 0, p.Len())

		_, err = p.Register(ctx, task("xo.b.compile", "/s/k.xo", "b.cpp"))
		assert.NoError(t, err)
	})

	t.Run("malformed tasks are rejected", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx)
		assert.Error(t, err)

		_, err = p.Register(ctx, nil)
		assert.ErrorContains(t, err, "nil task")

		noOutputs := task("xo.a.compile", "/s/a.xo")
		noOutputs.Outputs = nil
		_, err = p.Register(ctx, noOutputs)
		assert.ErrorContains(t, err, "declares no outputs")

		badInput := task("xo.a.compile", "/s/a.xo")
		badInput.Inputs = []vitis.SourceRef{vitis.PathSource(" ")}
		_, err = p.Register(ctx, badInput)
		assert.ErrorIs(t, err, vitis.ErrInvalidSource)
	})
}

func TestOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("consumers follow producers", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx, task("xo.z.compile", "/s/z.xo", "z.cpp"))
		require.NoError(t, err)
		_, err = p.Register(ctx, task("bitstream.a.link", "/b/a.xclbin", "/s/z.xo"))
		require.NoError(t, err)

		assert.Equal(t, []string{"xo.z.compile", "bitstream.a.link"}, taskIDs(t, p))

		deps, err := p.DependsOn("bitstream.a.link")
		require.NoError(t, err)
		assert.Equal(t, []string{"xo.z.compile"}, deps)
	})

	t.Run("consumer registered before its producer", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx, task("bitstream.a.link", "/b/a.xclbin", "/s/z.xo"))
		require.NoError(t, err)
		_, err = p.Register(ctx, task("xo.z.compile", "/s/z.xo", "z.cpp"))
		require.NoError(t, err)

		assert.Equal(t, []string{"xo.z.compile", "bitstream.a.link"}, taskIDs(t, p))
	})

	t.Run("task reading its own output", func(t *testing.T) {
		p := New()
		_, err := p.Register(ctx, task("xo.z.compile", "/s/z.xo", "z.cpp", "/s/z.xo"))
		require.NoError(t, err)
		_, err = p.Register(ctx, task("bitstream.a.link", "/b/a.xclbin", "/s/z.xo"))
		require.NoError(t, err)

		deps, err := p.DependsOn("xo.z.compile")
		require.NoError(t, err)
		assert.Empty(t, deps)
		assert.Equal(t, []string{"xo.z.compile", "bitstream.a.link"}, taskIDs(t, p))
	})

	t.Run("generated pipeline", func(t *testing.T) {
		p := New()
		gen := vitis.NewGenerator(fakeEnv{}, p)

		mm, err := gen.GenerateXO(ctx, vitis.XOOptions{
			Kernel: "mm", Sources: vitis.Paths("mm.cpp"), Platform: "p1", BuildTarget: "hw",
		})
		require.NoError(t, err)
		_, err = gen.Bitstream(ctx, vitis.BitstreamOptions{
			BitstreamName: "top", Sources: []vitis.SourceRef{vitis.PathSource("top.cpp"), mm}, Platform: "p1", BuildTarget: "hw",
		})
		require.NoError(t, err)

		want := []string{"xo.mm.compile", "bitstream.top.compile", "bitstream.top.link"}
		if diff := cmp.Diff(want, taskIDs(t, p)); diff != "" {
			t.Errorf("task order mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRegisterConcurrent(t *testing.T) {
	p := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("k%d", i%8)
			_, err := p.Register(ctx, task("xo."+name+".compile", "/s/"+name+".xo", name+".cpp"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, p.Len())
}

func TestConflictIsCollision(t *testing.T) {
	assert.ErrorIs(t, ErrConflict, vitis.ErrNameCollision)
}
