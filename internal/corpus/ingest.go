// Package corpus implements the corpus ingester from §4.E: a deterministic
// directory walk that dispatches one worker-pool task per text file, each
// task building a task-local index and merging it once into the shared
// index, executed through the same pool/SharedIndex collaborators the
// web ingester uses.
package corpus

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dchatterjee/lexicon/internal/index"
	"github.com/dchatterjee/lexicon/internal/pool"
	"github.com/dchatterjee/lexicon/internal/text"
	"github.com/google/uuid"
)

// Logger receives one line per failure or warning encountered while
// ingesting — failed files are logged and skipped (§7); the index is left
// in whatever valid state preceded the failure.
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// IsTextFile reports whether name's extension (case-insensitive) is .txt
// or .text, the predicate §4.E dispatches a task for.
func IsTextFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".text"
}

// Ingester walks a corpus root and feeds the shared index through p.
type Ingester struct {
	Shared *index.SharedIndex
	Pool   *pool.Pool
	Logger Logger
}

// Build walks root in deterministic lexicographic order and submits one
// indexing task per text file found, including inside subdirectories.
// Symlinks are followed once: if root itself is a symlink, or the walk
// encounters a symlinked directory entry partway through, its target is
// resolved and descended into, but a symlink found inside that resolved
// target is left alone rather than resolved again — filepath.WalkDir on
// its own does neither (Lstat reports a symlink as non-dir, so it never
// descends past one), so both cases are handled explicitly below. It
// does not wait for submitted tasks to finish — call Pool.Finish (or
// rely on a later Finish elsewhere) once all ingestion and crawling is
// done.
func (ing *Ingester) Build(root string) error {
	resolvedRoot, info, err := resolveSymlink(root)
	if err != nil {
		ing.logf("input path invalid: %s: %v", root, err)
		return nil
	}

	if !info.IsDir() {
		if IsTextFile(resolvedRoot) {
			ing.submit(resolvedRoot)
		}
		return nil
	}

	var files []string
	walkErr := filepath.WalkDir(resolvedRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ing.logf("unable to walk path: %s: %v", path, err)
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			nested, err := filesUnderSymlink(path)
			if err != nil {
				ing.logf("unable to resolve symlinked path: %s: %v", path, err)
				return nil
			}
			files = append(files, nested...)
			return nil
		}
		if d.IsDir() || !IsTextFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		ing.logf("unable to walk corpus root: %s: %v", resolvedRoot, walkErr)
	}

	sort.Strings(files)
	for _, f := range files {
		ing.submit(f)
	}
	return nil
}

// resolveSymlink follows path one level if it is itself a symlink and
// stats whatever it points at; a non-symlink path is stat'd directly.
func resolveSymlink(path string) (string, os.FileInfo, error) {
	lst, err := os.Lstat(path)
	if err != nil {
		return "", nil, err
	}
	if lst.Mode()&fs.ModeSymlink == 0 {
		return path, lst, nil
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", nil, err
	}
	return target, info, nil
}

// filesUnderSymlink resolves the symlink at path one level and returns
// every text file reachable from its target: the target itself if it's
// a text file, or every text file under it if it's a directory. Any
// symlink found while walking that target is skipped rather than
// resolved, so a symlink is only ever followed once.
func filesUnderSymlink(path string) ([]string, error) {
	target, info, err := resolveSymlink(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if IsTextFile(target) {
			return []string{target}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 || !IsTextFile(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	return files, err
}

func (ing *Ingester) submit(path string) {
	taskID := uuid.New()
	ing.Pool.Execute(func() {
		ing.indexFile(taskID, path)
	})
}

func (ing *Ingester) indexFile(taskID uuid.UUID, path string) {
	local := index.New()
	if err := buildLocal(local, path); err != nil {
		ing.logf("[%s] unable to process file: %s: %v", taskID, path, err)
		return
	}
	ing.Shared.Merge(local, ing.Logger)
}

// buildLocal streams path through the text normaliser and accumulates its
// stems into local, in document order, exactly as AddAll expects.
func buildLocal(local *index.Index, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var stems []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		stems = append(stems, text.Parse(scanner.Text())...)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	local.AddAll(stems, path)
	return nil
}

func (ing *Ingester) logf(format string, args ...any) {
	if ing.Logger != nil {
		ing.Logger.Errorf(format, args...)
	}
}
