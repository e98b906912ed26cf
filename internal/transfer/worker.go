// Package transfer runs upload workers: each worker owns one server session
// and drains one contiguous shard of tasks, recording a per-file outcome.
package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/DefectingCat/cymo/internal/pathsync"
	"github.com/DefectingCat/cymo/internal/progress"
	"github.com/DefectingCat/cymo/internal/remote"
	"github.com/DefectingCat/cymo/internal/scan"
	"github.com/DefectingCat/cymo/internal/sniff"
)

// Worker uploads one shard over its own session. Workers never talk to each
// other; the shared Registry and Meter are the only cross-worker state.
type Worker struct {
	ID         int
	Shard      []scan.Task
	RemoteBase string
	RetryLimit int

	Addr     string
	Username string
	Password string
	Dial     remote.DialFunc

	Registry *pathsync.Registry
	Meter    *progress.Meter
	Logger   *slog.Logger
}

// Run connects, drains the shard in order and returns one outcome per file
// task. A connect or login failure fails the whole shard but never siblings;
// a single file's failure never aborts the shard.
func (w *Worker) Run() []Outcome {
	conn, err := w.connect()
	if err != nil {
		w.Logger.Error("worker session failed", "worker", w.ID, "err", err)
		return w.failAll(err)
	}
	defer conn.Quit()

	outcomes := make([]Outcome, 0, len(w.Shard))
	for _, task := range w.Shard {
		if task.IsDir {
			// Directory tasks only pre-create remote paths; empty
			// directories would otherwise never appear on the server.
			if err := w.Registry.EnsureBranch(conn, w.RemoteBase, task.RemotePath); err != nil {
				w.Logger.Warn("remote directory failed", "worker", w.ID, "dir", task.RemotePath, "err", err)
			}
			continue
		}
		outcome := w.uploadTask(conn, task)
		if outcome.Succeeded() {
			w.Meter.FileDone(outcome.Bytes)
		} else {
			w.Meter.FileFailed()
			w.Logger.Warn("upload failed", "worker", w.ID, "path", task.RemotePath, "err", outcome.Err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (w *Worker) connect() (remote.Conn, error) {
	conn, err := w.Dial(w.Addr)
	if err != nil {
		return nil, err
	}
	if err := conn.Login(w.Username, w.Password); err != nil {
		conn.Quit()
		return nil, err
	}
	if err := conn.ChangeDir(w.RemoteBase); err != nil {
		conn.Quit()
		return nil, err
	}
	if cwd, err := conn.CurrentDir(); err == nil {
		w.Logger.Info("worker connected", "worker", w.ID, "dir", cwd)
	}
	return conn, nil
}

func (w *Worker) uploadTask(conn remote.Conn, task scan.Task) Outcome {
	start := time.Now()

	parent := path.Dir(task.RemotePath)
	if err := w.Registry.EnsureBranch(conn, w.RemoteBase, parent); err != nil {
		return Outcome{RemotePath: task.RemotePath, Elapsed: time.Since(start), Err: err}
	}

	var bytes int64
	err := Attempt(func() error {
		n, err := w.uploadOnce(conn, task)
		bytes = n
		return err
	}, w.RetryLimit)

	return Outcome{
		RemotePath: task.RemotePath,
		Bytes:      bytes,
		Elapsed:    time.Since(start),
		Err:        err,
	}
}

// uploadOnce performs a single transfer attempt: classify, pick the transfer
// type, stream the bytes.
func (w *Worker) uploadOnce(conn remote.Conn, task scan.Task) (int64, error) {
	f, err := os.Open(task.LocalPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", task.LocalPath, err)
	}
	defer f.Close()

	prefix := make([]byte, sniff.PrefixLen)
	n, err := f.Read(prefix)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("read %s: %w", task.LocalPath, err)
	}
	mode := remote.ModeBinary
	if sniff.Classify(prefix[:n]) == sniff.Text {
		mode = remote.ModeText
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek %s: %w", task.LocalPath, err)
	}

	counter := &countingReader{r: f}
	if err := conn.Upload(task.RemotePath, counter, mode); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

func (w *Worker) failAll(err error) []Outcome {
	outcomes := make([]Outcome, 0, len(w.Shard))
	for _, task := range w.Shard {
		if task.IsDir {
			continue
		}
		w.Meter.FileFailed()
		outcomes = append(outcomes, Outcome{RemotePath: task.RemotePath, Err: err})
	}
	return outcomes
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
