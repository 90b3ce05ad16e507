package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunScenario1ExactQuery drives the CLI end to end for a single file,
// single exact query, and checks all three JSON outputs byte-for-byte.
func TestRunScenario1ExactQuery(t *testing.T) {
	dir := t.TempDir()
	tinyPath := filepath.Join(dir, "tiny.txt")
	require.NoError(t, os.WriteFile(tinyPath, []byte("hello world hello"), 0o644))

	// The query file lives outside the corpus root, which indexes every .txt file.
	queryPath := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(queryPath, []byte("Hello\n"), 0o644))

	countsPath := filepath.Join(dir, "counts.json")
	indexPath := filepath.Join(dir, "index.json")
	resultsPath := filepath.Join(dir, "results.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-text", dir,
		"-query", queryPath,
		"-counts", countsPath,
		"-index", indexPath,
		"-results", resultsPath,
	}, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Empty(t, stderr.String())

	index, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	expectedIndex := "{\n" +
		"  \"hello\": {\n" +
		fmt.Sprintf("    %q: [\n", tinyPath) +
		"      1,\n" +
		"      3\n" +
		"    ]\n" +
		"  },\n" +
		"  \"world\": {\n" +
		fmt.Sprintf("    %q: [\n", tinyPath) +
		"      2\n" +
		"    ]\n" +
		"  }\n" +
		"}"
	assert.Equal(t, expectedIndex, string(index))

	counts, err := os.ReadFile(countsPath)
	require.NoError(t, err)
	expectedCounts := "{\n" + fmt.Sprintf("  %q: 3\n", tinyPath) + "}"
	assert.Equal(t, expectedCounts, string(counts))

	results, err := os.ReadFile(resultsPath)
	require.NoError(t, err)
	expectedResults := "{\n" +
		"  \"hello\": [\n" +
		"    {\n" +
		"      \"count\": 2,\n" +
		"      \"score\": 0.66666667,\n" +
		fmt.Sprintf("      \"where\": %q\n", tinyPath) +
		"    }\n" +
		"  ]\n" +
		"}"
	assert.Equal(t, expectedResults, string(results))
}

// TestRunScenario2PartialQuery drives the same corpus through -partial so
// a single prefix query line matches both occurrences of the stem "hello".
func TestRunScenario2PartialQuery(t *testing.T) {
	dir := t.TempDir()
	tinyPath := filepath.Join(dir, "tiny.txt")
	require.NoError(t, os.WriteFile(tinyPath, []byte("hello world hello"), 0o644))

	queryPath := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(queryPath, []byte("he\n"), 0o644))

	resultsPath := filepath.Join(dir, "results.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-text", dir,
		"-query", queryPath,
		"-partial",
		"-counts", filepath.Join(dir, "counts.json"),
		"-index", filepath.Join(dir, "index.json"),
		"-results", resultsPath,
	}, &stdout, &stderr)
	require.Equal(t, 0, code)

	results, err := os.ReadFile(resultsPath)
	require.NoError(t, err)
	expectedResults := "{\n" +
		"  \"he\": [\n" +
		"    {\n" +
		"      \"count\": 2,\n" +
		"      \"score\": 0.66666667,\n" +
		fmt.Sprintf("      \"where\": %q\n", tinyPath) +
		"    }\n" +
		"  ]\n" +
		"}"
	assert.Equal(t, expectedResults, string(results))
}

// TestRunScenario4ThreadParity drives a 50-file corpus through the CLI
// twice, at -threads 1 and -threads 8, and checks index.json comes out
// byte-identical either way.
func TestRunScenario4ThreadParity(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("doc%02d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("alpha beta gamma"), 0o644))
	}

	build := func(threads string) string {
		indexPath := filepath.Join(t.TempDir(), "index.json")
		var stdout, stderr bytes.Buffer
		code := run([]string{
			"-text", dir,
			"-threads", threads,
			"-counts", filepath.Join(filepath.Dir(indexPath), "counts.json"),
			"-index", indexPath,
			"-results", filepath.Join(filepath.Dir(indexPath), "results.json"),
		}, &stdout, &stderr)
		require.Equal(t, 0, code)
		out, err := os.ReadFile(indexPath)
		require.NoError(t, err)
		return string(out)
	}

	single := build("1")
	multi := build("8")
	assert.Equal(t, single, multi)
}

// TestRunRejectsInvalidConfig exercises the CLI's own validation path
// (§7: configuration errors are reported, not silently swallowed) via a
// malformed -html seed.
func TestRunRejectsInvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-html", "not-a-url"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "invalid configuration")
}
