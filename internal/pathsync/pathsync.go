// Package pathsync keeps a run-wide registry of remote directories known to
// exist, so concurrent workers issue each MKD at most once.
package pathsync

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/DefectingCat/cymo/internal/remote"
)

// Registry is a thread-safe set of remote directories already created.
// The lock guards only the in-memory check-and-mark; the network call runs
// outside it so one slow MKD never blocks unrelated workers.
type Registry struct {
	mu      sync.Mutex
	created map[string]bool
}

// NewRegistry returns a registry that considers the root to exist.
func NewRegistry() *Registry {
	return &Registry{
		created: map[string]bool{"/": true},
	}
}

// MarkCreated records dir and all its ancestors as existing without touching
// the server. Used to seed the remote base path after bootstrap validation.
func (r *Registry) MarkCreated(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := Normalize(dir); ; p = path.Dir(p) {
		r.created[p] = true
		if p == "/" {
			return
		}
	}
}

// Ensure makes dir exist on the server, issuing at most one creation request
// per distinct path across the whole run. The path is marked before the
// network call goes out, which cuts down duplicate in-flight requests from
// workers racing on the same directory; a server-side "already exists" reply
// is success. On any other server error the mark is rolled back and the error
// propagates, so a later task may try again.
//
// The caller must have ensured dir's parent first; see EnsureBranch.
func (r *Registry) Ensure(conn remote.Conn, dir string) error {
	dir = Normalize(dir)
	if dir == "/" {
		return nil
	}

	r.mu.Lock()
	if r.created[dir] {
		r.mu.Unlock()
		return nil
	}
	r.created[dir] = true
	r.mu.Unlock()

	err := conn.MakeDir(dir)
	if err == nil || errors.Is(err, remote.ErrExist) {
		return nil
	}

	r.mu.Lock()
	delete(r.created, dir)
	r.mu.Unlock()
	return fmt.Errorf("ensure remote dir %s: %w", dir, err)
}

// EnsureBranch ensures every directory from base (exclusive) down to dir
// (inclusive), parents first. base itself must already be registered.
func (r *Registry) EnsureBranch(conn remote.Conn, base, dir string) error {
	base = Normalize(base)
	dir = Normalize(dir)
	if dir == base {
		return nil
	}

	var rel string
	switch {
	case base == "/":
		rel = dir
	case strings.HasPrefix(dir, base+"/"):
		rel = dir[len(base):]
	default:
		// dir is not under base; ensure the full chain from the root.
		rel = dir
		base = "/"
	}

	p := base
	for _, part := range strings.Split(strings.Trim(rel, "/"), "/") {
		if part == "" {
			continue
		}
		p = path.Join(p, part)
		if err := r.Ensure(conn, p); err != nil {
			return err
		}
	}
	return nil
}

// Normalize cleans a remote path: forward slashes only, no trailing
// separator, always absolute.
func Normalize(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
}
