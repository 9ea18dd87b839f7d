package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Pipeline: push-based transform chain
// Expectation: files run through every stage in order, errors are collected
// without stopping later files, dropped files never reach the end.
// =============================================================================

func upper() Transform {
	return TransformFunc(func(f *File, out Emitter) {
		f.Contents = []byte(strings.ToUpper(string(f.Contents)))
		out.Push(f)
	})
}

func rejectEmpty() Transform {
	return TransformFunc(func(f *File, out Emitter) {
		if len(f.Contents) == 0 {
			out.Error(NewPluginError(ErrUnsupportedInput, "empty file %s", f.Relative()))
			return
		}
		out.Push(f)
	})
}

func TestCollect_RunsStagesInOrder(t *testing.T) {
	var order []string
	tag := func(name string) Transform {
		return TransformFunc(func(f *File, out Emitter) {
			order = append(order, name)
			out.Push(f)
		})
	}

	p := New(tag("a"), tag("b"), tag("c"))
	files, errs := p.Collect([]*File{{Path: "x.coffee", Contents: []byte("x")}})

	assert.Empty(t, errs)
	require.Len(t, files, 1)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestCollect_ErrorDoesNotStopLaterFiles(t *testing.T) {
	p := New(rejectEmpty(), upper())

	files, errs := p.Collect([]*File{
		{Path: "a.coffee", Contents: []byte{}},
		{Path: "b.coffee", Contents: []byte("b = 1")},
	})

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrUnsupportedInput))
	require.Len(t, files, 1)
	assert.Equal(t, "B = 1", string(files[0].Contents))
}

func TestPipe_AppendsWithoutMutatingOriginal(t *testing.T) {
	base := New(upper())
	extended := base.Pipe(rejectEmpty())

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestRun_DrainsChannelSource(t *testing.T) {
	p := New(rejectEmpty(), upper())

	src := make(chan *File, 3)
	src <- &File{Path: "a.coffee", Contents: []byte("a")}
	src <- &File{Path: "b.coffee", Contents: []byte{}}
	src <- &File{Path: "c.coffee", Contents: []byte("c")}
	close(src)

	files, errs := Drain(p.Run(context.Background(), src))

	require.Len(t, files, 2)
	assert.Equal(t, "A", string(files[0].Contents))
	assert.Equal(t, "C", string(files[1].Contents))
	require.Len(t, errs, 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := make(chan *File) // never written
	files, errs := Drain(New(upper()).Run(ctx, src))

	assert.Empty(t, files)
	assert.Empty(t, errs)
}

func TestFile_States(t *testing.T) {
	assert.True(t, (&File{Path: "dir"}).IsNull())
	assert.False(t, (&File{Contents: []byte{}}).IsNull(), "empty buffer is not null")

	streamed := &File{Stream: strings.NewReader("x")}
	assert.True(t, streamed.IsStream())
	assert.False(t, streamed.IsNull())
}

func TestFile_Relative(t *testing.T) {
	f := &File{Base: "/repo/src", Path: "/repo/src/app/main.coffee"}
	assert.Equal(t, "app/main.coffee", f.Relative())

	noBase := &File{Path: "lib/x.coffee"}
	assert.Equal(t, "lib/x.coffee", noBase.Relative())
}

func TestPluginError_KindAndCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := WrapPluginError(ErrConfiguration, cause, "could not load config from file")

	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrLintFailed))
	assert.Equal(t, "lintpipe: could not load config from file: disk on fire", err.Error())

	var pe *PluginError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, PluginName, pe.Plugin)
}
