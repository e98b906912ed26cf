// Package report assembles the final run report from worker outcomes.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/DefectingCat/cymo/internal/transfer"
)

// Report is the aggregate result of one run. Built once after every worker
// has joined; immutable thereafter and the sole basis for the exit code.
type Report struct {
	TotalTasks int
	Succeeded  int
	Failed     []string // remote paths, sorted
	TotalBytes int64
	Elapsed    time.Duration
}

// Build folds the outcome lists of all workers into a report. Deterministic
// for a fixed outcome multiset regardless of worker completion order: failed
// paths are sorted, counts and byte totals are order-free. elapsed is the
// wall-clock span from first worker start to last worker finish.
func Build(outcomes []transfer.Outcome, elapsed time.Duration) Report {
	r := Report{
		TotalTasks: len(outcomes),
		Elapsed:    elapsed,
	}
	for _, o := range outcomes {
		if o.Succeeded() {
			r.Succeeded++
			r.TotalBytes += o.Bytes
		} else {
			r.Failed = append(r.Failed, o.RemotePath)
		}
	}
	sort.Strings(r.Failed)
	return r
}

// SpeedBps is the average transfer speed in bytes per second.
func (r Report) SpeedBps() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.TotalBytes) / secs
}

// Ok reports whether the run counts as successful: no failed tasks, and at
// least one success whenever anything was attempted.
func (r Report) Ok() bool {
	if len(r.Failed) > 0 {
		return false
	}
	if r.TotalTasks > 0 && r.Succeeded == 0 {
		return false
	}
	return true
}

// Render writes the user-facing summary, failed paths listed by name so a
// re-run can target them.
func (r Report) Render(w io.Writer) {
	fmt.Fprintf(w, "Uploaded %d/%d files, %s in %s (%s/s)\n",
		r.Succeeded,
		r.TotalTasks,
		humanize.IBytes(uint64(r.TotalBytes)),
		r.Elapsed.Round(time.Millisecond),
		humanize.IBytes(uint64(r.SpeedBps())),
	)
	if len(r.Failed) == 0 {
		return
	}
	fmt.Fprintf(w, "Failed (%d):\n", len(r.Failed))
	for _, p := range r.Failed {
		fmt.Fprintf(w, "  %s\n", p)
	}
}
