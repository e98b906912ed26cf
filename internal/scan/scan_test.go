package scan

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, p string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, make([]byte, size), 0644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
}

func TestEnumerate_SingleFile(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "x.txt"), 10)

	tasks, err := Enumerate(filepath.Join(tmp, "x.txt"), "/up")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.RemotePath != "/up/x.txt" {
		t.Errorf("RemotePath = %s, want /up/x.txt", got.RemotePath)
	}
	if got.IsDir {
		t.Error("single file task must not be a directory")
	}
	if got.Size != 10 {
		t.Errorf("Size = %d, want 10", got.Size)
	}
}

func TestEnumerate_DirectoryTree(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), 3)
	writeFile(t, filepath.Join(tmp, "sub", "b.txt"), 5)

	tasks, err := Enumerate(tmp, "/dst")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	var remotes []string
	for _, task := range tasks {
		remotes = append(remotes, task.RemotePath)
	}
	want := []string{"/dst/a.txt", "/dst/sub", "/dst/sub/b.txt"}
	if len(remotes) != len(want) {
		t.Fatalf("remote paths = %v, want %v", remotes, want)
	}
	for i := range want {
		if remotes[i] != want[i] {
			t.Fatalf("remote paths = %v, want %v", remotes, want)
		}
	}
	if !tasks[1].IsDir {
		t.Error("expected /dst/sub to be a directory task")
	}
	if FileCount(tasks) != 2 {
		t.Errorf("FileCount = %d, want 2", FileCount(tasks))
	}
	if TotalBytes(tasks) != 8 {
		t.Errorf("TotalBytes = %d, want 8", TotalBytes(tasks))
	}
}

func TestEnumerate_DirectoryMajorOrdering(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), 1)
	writeFile(t, filepath.Join(tmp, "z.txt"), 1)
	writeFile(t, filepath.Join(tmp, "sub", "b.txt"), 1)
	writeFile(t, filepath.Join(tmp, "sub", "deep", "c.txt"), 1)

	tasks, err := Enumerate(tmp, "/dst")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	// Every task sharing a remote parent directory must be contiguous.
	seen := make(map[string]bool)
	last := ""
	for _, task := range tasks {
		key := task.RemotePath
		if !task.IsDir {
			key = path.Dir(task.RemotePath)
		}
		if key != last {
			if seen[key] {
				t.Fatalf("group %s is not contiguous in %v", key, tasks)
			}
			seen[key] = true
			last = key
		}
	}

	// A directory's task must precede everything beneath it.
	pos := make(map[string]int)
	for i, task := range tasks {
		pos[task.RemotePath] = i
	}
	if pos["/dst/sub"] > pos["/dst/sub/b.txt"] {
		t.Error("directory task /dst/sub must precede /dst/sub/b.txt")
	}
	if pos["/dst/sub/deep"] > pos["/dst/sub/deep/c.txt"] {
		t.Error("directory task /dst/sub/deep must precede /dst/sub/deep/c.txt")
	}
	if pos["/dst/sub"] > pos["/dst/sub/deep"] {
		t.Error("parent directory must precede child directory")
	}
}

func TestEnumerate_EmptyDirectory(t *testing.T) {
	tmp := t.TempDir()

	tasks, err := Enumerate(tmp, "/dst")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %v", tasks)
	}
}

func TestEnumerate_MissingRoot(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "nope"), "/dst")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnumerate_RelativeBaseNormalized(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), 1)

	tasks, err := Enumerate(tmp, "dst/")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if tasks[0].RemotePath != "/dst/a.txt" {
		t.Errorf("RemotePath = %s, want /dst/a.txt", tasks[0].RemotePath)
	}
}
