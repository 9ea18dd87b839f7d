package fsglob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/lintpipe/internal/domain/pipeline"
)

// =============================================================================
// Glob source: patterns in, pipeline files out
// Expectation: matches are ordered and unique, carry the glob base and cwd,
// honor "!" exclusions, and directories become null files.
// =============================================================================

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
	return root
}

func relatives(files []*pipeline.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Relative()
	}
	return out
}

func TestFiles_RecursiveGlob(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.coffee":           "a = 1\n",
		"src/lib/util.coffee":      "b = 2\n",
		"src/lib/notes.md":         "# notes\n",
		"src/docs/guide.litcoffee": "Prose\n",
	})
	s, err := New(root)
	require.NoError(t, err)

	files, err := s.Files("src/**/*.coffee")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.coffee", "lib/util.coffee"}, relatives(files))

	f := files[0]
	assert.Equal(t, root, f.Cwd)
	assert.Equal(t, filepath.Join(root, "src"), f.Base)
	assert.Equal(t, filepath.Join(root, "src", "app.coffee"), f.Path)
	assert.Equal(t, []byte("a = 1\n"), f.Contents)
	assert.False(t, f.IsNull())
	assert.False(t, f.IsStream())
}

func TestFiles_Exclusion(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.coffee":           "a\n",
		"src/vendor/jquery.coffee": "b\n",
	})
	s, err := New(root)
	require.NoError(t, err)

	files, err := s.Files("src/**/*.coffee", "!src/vendor/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.coffee"}, relatives(files))
}

func TestFiles_DeduplicatesAcrossPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.coffee": "a\n",
		"b.coffee": "b\n",
	})
	s, err := New(root)
	require.NoError(t, err)

	files, err := s.Files("*.coffee", "a.coffee")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.coffee", "b.coffee"}, relatives(files))
}

func TestFiles_LiteralPathUsesParentAsBase(t *testing.T) {
	root := writeTree(t, map[string]string{"src/one.coffee": "x\n"})
	s, err := New(root)
	require.NoError(t, err)

	files, err := s.Files(filepath.Join(root, "src", "one.coffee"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "src"), files[0].Base)
	assert.Equal(t, "one.coffee", files[0].Relative())
}

func TestFiles_MissingLiteralIsError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Files("missing.coffee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found with singular glob")
}

func TestFiles_EmptyGlobIsNotError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	files, err := s.Files("**/*.coffee")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFiles_BadPattern(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Files("src/[.coffee")
	assert.Error(t, err)
}

func TestFiles_DirectoriesAreNullFiles(t *testing.T) {
	root := writeTree(t, map[string]string{"pkg/a.coffee": "a\n"})

	s, err := New(root)
	require.NoError(t, err)
	files, err := s.Files("*")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, files[0].IsNull())

	s, err = New(root, WithFilesOnly())
	require.NoError(t, err)
	files, err = s.Files("*")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFiles_EmptyFileIsNotNull(t *testing.T) {
	root := writeTree(t, map[string]string{"empty.coffee": ""})
	s, err := New(root)
	require.NoError(t, err)

	files, err := s.Files("*.coffee")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.False(t, files[0].IsNull())
	assert.Empty(t, files[0].Contents)
}

func TestFiles_Streaming(t *testing.T) {
	root := writeTree(t, map[string]string{"s.coffee": "streamed\n"})
	s, err := New(root, WithStreaming())
	require.NoError(t, err)

	files, err := s.Files("*.coffee")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.True(t, files[0].IsStream())
	assert.Nil(t, files[0].Contents)

	data, err := io.ReadAll(files[0].Stream)
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", string(data))

	n, err := files[0].Stream.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err, "reads after EOF keep returning EOF")
}

func TestFeed(t *testing.T) {
	files := []*pipeline.File{{Path: "a"}, {Path: "b"}}
	var got []string
	for f := range Feed(context.Background(), files) {
		got = append(got, f.Path)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}
