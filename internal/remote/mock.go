package remote

import (
	"fmt"
	"io"
	"path"
	"sync"
)

// MockServer is an in-memory server shared by any number of mock sessions.
// All worker sessions in a test dial the same MockServer, so directory and
// file state race exactly the way a real server's would.
type MockServer struct {
	mu       sync.Mutex
	dirs        map[string]bool
	files       map[string]MockFile
	mkdCalls    map[string]int
	uploadCalls map[string]int
	dials       int

	// Failure injection.
	DialErr        error
	LoginErr       error
	MkdirErr       map[string]error // permanent MakeDir failure per path
	UploadErr      map[string]error // permanent Upload failure per path
	UploadFailures map[string]int   // transient Upload failures per path
}

// MockFile is one stored upload.
type MockFile struct {
	Data []byte
	Mode Mode
}

// NewMockServer returns a server whose root directory exists.
func NewMockServer() *MockServer {
	return &MockServer{
		dirs:           map[string]bool{"/": true},
		files:          make(map[string]MockFile),
		mkdCalls:       make(map[string]int),
		uploadCalls:    make(map[string]int),
		MkdirErr:       make(map[string]error),
		UploadErr:      make(map[string]error),
		UploadFailures: make(map[string]int),
	}
}

// Dial opens a new mock session. Satisfies DialFunc.
func (s *MockServer) Dial(addr string) (Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DialErr != nil {
		return nil, s.DialErr
	}
	s.dials++
	return &mockConn{server: s, cwd: "/"}, nil
}

// AddDir marks a directory (and its ancestors) as pre-existing.
func (s *MockServer) AddDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := path.Clean(dir); ; p = path.Dir(p) {
		s.dirs[p] = true
		if p == "/" || p == "." {
			return
		}
	}
}

// HasDir reports whether a directory exists.
func (s *MockServer) HasDir(dir string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[path.Clean(dir)]
}

// MkdCalls returns how many MKD attempts the server saw for dir.
func (s *MockServer) MkdCalls(dir string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mkdCalls[path.Clean(dir)]
}

// TotalMkdCalls returns how many MKD attempts the server saw in total.
func (s *MockServer) TotalMkdCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.mkdCalls {
		total += n
	}
	return total
}

// Dials returns how many sessions were opened.
func (s *MockServer) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// UploadCalls returns how many STOR attempts the server saw for a path.
func (s *MockServer) UploadCalls(p string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadCalls[path.Clean(p)]
}

// File returns the stored upload for a remote path.
func (s *MockServer) File(p string) (MockFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path.Clean(p)]
	return f, ok
}

type mockConn struct {
	server *MockServer
	cwd    string
	closed bool
}

var _ Conn = (*mockConn)(nil)

func (c *mockConn) Login(user, password string) error {
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	return c.server.LoginErr
}

func (c *mockConn) MakeDir(dir string) error {
	dir = path.Clean(dir)
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	c.server.mkdCalls[dir]++
	if err := c.server.MkdirErr[dir]; err != nil {
		return err
	}
	if c.server.dirs[dir] {
		return ErrExist
	}
	if parent := path.Dir(dir); !c.server.dirs[parent] {
		return fmt.Errorf("mkdir %s: parent does not exist", dir)
	}
	c.server.dirs[dir] = true
	return nil
}

func (c *mockConn) ChangeDir(dir string) error {
	dir = path.Clean(dir)
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	if !c.server.dirs[dir] {
		return fmt.Errorf("cd %s: no such directory", dir)
	}
	c.cwd = dir
	return nil
}

func (c *mockConn) CurrentDir() (string, error) {
	return c.cwd, nil
}

func (c *mockConn) Upload(p string, r io.Reader, mode Mode) error {
	p = path.Clean(p)
	c.server.mu.Lock()
	c.server.uploadCalls[p]++
	if n := c.server.UploadFailures[p]; n > 0 {
		c.server.UploadFailures[p] = n - 1
		c.server.mu.Unlock()
		return fmt.Errorf("store %s: transient failure", p)
	}
	if err := c.server.UploadErr[p]; err != nil {
		c.server.mu.Unlock()
		return err
	}
	if parent := path.Dir(p); !c.server.dirs[parent] {
		c.server.mu.Unlock()
		return fmt.Errorf("store %s: parent does not exist", p)
	}
	c.server.mu.Unlock()

	// Read outside the lock, like a real data connection.
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("store %s: %w", p, err)
	}

	c.server.mu.Lock()
	c.server.files[p] = MockFile{Data: data, Mode: mode}
	c.server.mu.Unlock()
	return nil
}

func (c *mockConn) Quit() error {
	c.closed = true
	return nil
}
