// Package app wires the upload pipeline together: bootstrap session, task
// enumeration, partitioning, worker fan-out and the final report.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/DefectingCat/cymo/internal/config"
	"github.com/DefectingCat/cymo/internal/pathsync"
	"github.com/DefectingCat/cymo/internal/progress"
	"github.com/DefectingCat/cymo/internal/remote"
	"github.com/DefectingCat/cymo/internal/report"
	"github.com/DefectingCat/cymo/internal/scan"
	"github.com/DefectingCat/cymo/internal/transfer"
)

const progressInterval = 500 * time.Millisecond

// Runner coordinates one upload run.
type Runner struct {
	Cfg    config.Config
	Logger *slog.Logger

	// Dial opens server sessions; nil means the real FTP dialer.
	Dial remote.DialFunc
	// ProgressOut receives the live progress line; nil disables it.
	ProgressOut io.Writer
}

// Run validates the setup, uploads everything and returns the final report.
// A non-nil error is a fatal setup failure: nothing was uploaded and there is
// no report to print. Per-file failures land inside the report instead.
func (r *Runner) Run() (report.Report, error) {
	dial := r.Dial
	if dial == nil {
		dial = remote.Dial
	}
	user, pass := credentials(r.Cfg)
	base := pathsync.Normalize(r.Cfg.RemotePath)

	// Fail fast on unreachable server or bad credentials before any
	// enumeration or worker spawn.
	if err := r.bootstrap(dial, user, pass, base); err != nil {
		return report.Report{}, err
	}

	tasks, err := scan.Enumerate(r.Cfg.LocalPath, base)
	if err != nil {
		return report.Report{}, fmt.Errorf("enumerate %s: %w", r.Cfg.LocalPath, err)
	}
	if len(tasks) == 0 {
		r.Logger.Info("nothing to upload", "local", r.Cfg.LocalPath)
		return report.Report{}, nil
	}
	r.warnDuplicates(tasks)

	workers := transfer.WorkerCount(r.Cfg.Threads, len(tasks))
	shards := transfer.Partition(tasks, workers)
	r.Logger.Info("starting upload",
		"files", scan.FileCount(tasks),
		"bytes", scan.TotalBytes(tasks),
		"workers", len(shards),
	)

	registry := pathsync.NewRegistry()
	registry.MarkCreated(base)

	meter := progress.NewMeter()
	meter.Start(scan.TotalBytes(tasks), scan.FileCount(tasks))
	stopProgress := r.startProgress(meter)

	start := time.Now()
	results := make([][]transfer.Outcome, len(shards))
	var wg sync.WaitGroup
	for i, shard := range shards {
		worker := &transfer.Worker{
			ID:         i,
			Shard:      shard,
			RemoteBase: base,
			RetryLimit: r.Cfg.RetryLimit,
			Addr:       r.Cfg.Addr(),
			Username:   user,
			Password:   pass,
			Dial:       dial,
			Registry:   registry,
			Meter:      meter,
			Logger:     r.Logger,
		}
		wg.Add(1)
		go func(i int, w *transfer.Worker) {
			defer wg.Done()
			results[i] = w.Run()
		}(i, worker)
	}
	wg.Wait()
	stopProgress()

	var outcomes []transfer.Outcome
	for _, rs := range results {
		outcomes = append(outcomes, rs...)
	}
	return report.Build(outcomes, time.Since(start)), nil
}

// bootstrap opens one control session to verify reachability and credentials,
// and makes sure the remote base path exists.
func (r *Runner) bootstrap(dial remote.DialFunc, user, pass, base string) error {
	conn, err := dial(r.Cfg.Addr())
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(user, pass); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if err := ensureBasePath(conn, base); err != nil {
		return fmt.Errorf("remote base path %s: %w", base, err)
	}
	if cwd, err := conn.CurrentDir(); err == nil {
		r.Logger.Info("connected", "server", r.Cfg.Addr(), "dir", cwd)
	}
	return nil
}

// ensureBasePath CWDs into base, creating missing components on the way when
// the server does not have it yet.
func ensureBasePath(conn remote.Conn, base string) error {
	if err := conn.ChangeDir(base); err == nil {
		return nil
	}
	p := "/"
	for _, part := range strings.Split(strings.Trim(base, "/"), "/") {
		if part == "" {
			continue
		}
		p = path.Join(p, part)
		if err := conn.MakeDir(p); err != nil && !errors.Is(err, remote.ErrExist) {
			return err
		}
	}
	return conn.ChangeDir(base)
}

// warnDuplicates flags remote paths targeted by more than one task. The
// upload proceeds last-writer-wins.
func (r *Runner) warnDuplicates(tasks []scan.Task) {
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.IsDir {
			continue
		}
		if seen[t.RemotePath] {
			r.Logger.Warn("duplicate remote path, last writer wins", "path", t.RemotePath)
		}
		seen[t.RemotePath] = true
	}
}

func (r *Runner) startProgress(meter *progress.Meter) func() {
	if r.ProgressOut == nil {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				progress.Render(r.ProgressOut, meter.Snapshot())
			case <-done:
				progress.Render(r.ProgressOut, meter.Snapshot())
				fmt.Fprintln(r.ProgressOut)
				return
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func credentials(cfg config.Config) (string, string) {
	if cfg.Anonymous() {
		return "anonymous", "anonymous"
	}
	return cfg.Username, cfg.Password
}
