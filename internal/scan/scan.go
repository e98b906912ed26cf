package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// ErrNotFound reports that the local root does not exist.
var ErrNotFound = errors.New("local path does not exist")

// Task describes one local entry and where it lands on the server.
// Tasks are immutable once created. Directory tasks carry no bytes; they exist
// only so workers can pre-create the matching remote directories.
type Task struct {
	LocalPath  string // Absolute local path
	RemotePath string // Remote path with forward slashes
	IsDir      bool
	Size       int64 // File size in bytes (0 for directories)
}

// Enumerate walks localRoot and returns the transfer tasks for an upload to
// remoteBase. A single-file root yields exactly one task named after the file.
// A directory root yields one task per directory and per regular file, with
// remote paths relative to the root.
//
// Tasks are ordered directory-major: every task sharing a remote parent is
// contiguous, and a directory's own task precedes everything beneath it. This
// lets contiguous shards keep a directory's files on as few workers as
// possible.
//
// Returns ErrNotFound if localRoot does not exist. Any unreadable entry fails
// the whole enumeration; a partial task list is never returned.
func Enumerate(localRoot, remoteBase string) ([]Task, error) {
	info, err := os.Stat(localRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, localRoot)
		}
		return nil, fmt.Errorf("cannot access %s: %w", localRoot, err)
	}

	absRoot, err := filepath.Abs(localRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot get absolute path: %w", err)
	}
	base := normalizeBase(remoteBase)

	if !info.IsDir() {
		return []Task{{
			LocalPath:  absRoot,
			RemotePath: path.Join(base, filepath.Base(absRoot)),
			Size:       info.Size(),
		}}, nil
	}

	var tasks []Task
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", p, err)
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return fmt.Errorf("cannot compute relative path: %w", err)
		}
		if rel == "." {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", rel, err)
		}
		if !d.IsDir() && !fi.Mode().IsRegular() {
			// Sockets, fifos and symlinks have no FTP representation.
			return nil
		}

		size := fi.Size()
		if d.IsDir() {
			size = 0
		}
		tasks = append(tasks, Task{
			LocalPath:  p,
			RemotePath: path.Join(base, filepath.ToSlash(rel)),
			IsDir:      d.IsDir(),
			Size:       size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", localRoot, err)
	}

	sortTasks(tasks)
	return tasks, nil
}

// FileCount returns the number of non-directory tasks.
func FileCount(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.IsDir {
			n++
		}
	}
	return n
}

// TotalBytes sums the sizes of all file tasks.
func TotalBytes(tasks []Task) int64 {
	var total int64
	for _, t := range tasks {
		if !t.IsDir {
			total += t.Size
		}
	}
	return total
}

// groupKey is the remote directory a task belongs to: a directory task groups
// under itself, a file task under its parent.
func groupKey(t Task) string {
	if t.IsDir {
		return t.RemotePath
	}
	return path.Dir(t.RemotePath)
}

func sortTasks(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool {
		gi, gj := groupKey(tasks[i]), groupKey(tasks[j])
		if gi != gj {
			return gi < gj
		}
		// A directory's own task leads its group so workers create the
		// remote directory before uploading into it.
		if tasks[i].IsDir != tasks[j].IsDir {
			return tasks[i].IsDir
		}
		return tasks[i].RemotePath < tasks[j].RemotePath
	})
}

func normalizeBase(base string) string {
	base = path.Clean("/" + filepath.ToSlash(base))
	return base
}
