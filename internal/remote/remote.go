// Package remote wraps the FTP client library behind a narrow connection
// interface so the upload pipeline can be exercised against an in-memory
// server in tests.
package remote

import (
	"errors"
	"io"
)

// Mode selects the transfer representation for an upload.
type Mode int

const (
	ModeBinary Mode = iota
	ModeText
)

func (m Mode) String() string {
	if m == ModeText {
		return "text"
	}
	return "binary"
}

// ErrExist reports that a directory creation failed because the target
// already exists on the server. Callers treat it as success.
var ErrExist = errors.New("remote directory already exists")

// Conn is one stateful session with the server. A Conn is owned by a single
// worker for its whole lifetime and is not safe for concurrent use.
type Conn interface {
	// Login authenticates the session.
	Login(user, password string) error
	// MakeDir creates a directory. Returns ErrExist when the directory is
	// already present, wrapped errors otherwise.
	MakeDir(dir string) error
	// ChangeDir moves the session to the given directory.
	ChangeDir(dir string) error
	// CurrentDir reports the session's working directory.
	CurrentDir() (string, error)
	// Upload streams r to the remote path in the given mode.
	Upload(path string, r io.Reader, mode Mode) error
	// Quit closes the session.
	Quit() error
}

// DialFunc opens a new session to addr. Injected so tests can substitute an
// in-memory server.
type DialFunc func(addr string) (Conn, error)
