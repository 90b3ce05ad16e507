package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dchatterjee/lexicon/internal/index"
	"github.com/dchatterjee/lexicon/internal/jsonout"
	"github.com/dchatterjee/lexicon/internal/pool"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestIsTextFileCaseInsensitive(t *testing.T) {
	assert.True(t, IsTextFile("a.TXT"))
	assert.True(t, IsTextFile("a.Text"))
	assert.False(t, IsTextFile("a.md"))
}

func TestBuildSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "tiny.txt", "hello world hello")

	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}

	require.NoError(t, ing.Build(dir))
	p.Finish()

	path := filepath.Join(dir, "tiny.txt")
	assert.Equal(t, []int{1, 3}, shared.Positions("hello", path))
	assert.Equal(t, []int{2}, shared.Positions("world", path))
}

func TestBuildEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}

	require.NoError(t, ing.Build(dir))
	p.Finish()
	assert.Equal(t, 0, shared.NumStems())
}

func TestBuildIgnoresNonTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "tiny.txt", "hello")
	writeFixture(t, dir, "notes.md", "markdown ignored")

	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}
	require.NoError(t, ing.Build(dir))
	p.Finish()

	assert.False(t, shared.ContainsStem("markdown"))
}

func TestBuildFollowsSymlinkedRoot(t *testing.T) {
	realDir := t.TempDir()
	writeFixture(t, realDir, "tiny.txt", "hello world hello")

	symRoot := filepath.Join(t.TempDir(), "corpus-link")
	require.NoError(t, os.Symlink(realDir, symRoot))

	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}

	require.NoError(t, ing.Build(symRoot))
	p.Finish()

	path := filepath.Join(realDir, "tiny.txt")
	assert.Equal(t, []int{1, 3}, shared.Positions("hello", path))
}

func TestBuildFollowsSymlinkedSubdirectoryOnce(t *testing.T) {
	root := t.TempDir()
	linkedTarget := t.TempDir()
	writeFixture(t, linkedTarget, "nested.txt", "alpha beta")

	require.NoError(t, os.Symlink(linkedTarget, filepath.Join(root, "sub-link")))
	writeFixture(t, root, "top.txt", "gamma delta")

	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}

	require.NoError(t, ing.Build(root))
	p.Finish()

	assert.True(t, shared.ContainsStem("alpha"))
	assert.True(t, shared.ContainsStem("gamma"))
}

func TestBuildDoesNotFollowSymlinkNestedInsideSymlinkedSubdirectory(t *testing.T) {
	root := t.TempDir()
	linkedTarget := t.TempDir()
	writeFixture(t, linkedTarget, "nested.txt", "alpha beta")

	doublyLinkedTarget := t.TempDir()
	writeFixture(t, doublyLinkedTarget, "deep.txt", "omega")
	require.NoError(t, os.Symlink(doublyLinkedTarget, filepath.Join(linkedTarget, "deeper-link")))
	require.NoError(t, os.Symlink(linkedTarget, filepath.Join(root, "sub-link")))

	shared := index.NewShared()
	p := pool.New(2, 10, nil)
	ing := &Ingester{Shared: shared, Pool: p}

	require.NoError(t, ing.Build(root))
	p.Finish()

	assert.True(t, shared.ContainsStem("alpha"))
	assert.False(t, shared.ContainsStem("omega"))
}

func TestBuildThreadCountDoesNotChangeResult(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFixture(t, dir, string(rune('a'+i))+".txt", "alpha beta gamma delta")
	}

	emit := func(threads int) string {
		shared := index.NewShared()
		p := pool.New(threads, 100, nil)
		ing := &Ingester{Shared: shared, Pool: p}
		require.NoError(t, ing.Build(dir))
		p.Finish()

		var buf bytes.Buffer
		require.NoError(t, jsonout.WriteIndex(&buf, shared.Snapshot()))
		return buf.String()
	}

	single := emit(1)
	multi := emit(8)
	assert.Equal(t, single, multi)
}
