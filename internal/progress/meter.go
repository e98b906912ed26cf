// Package progress tracks run-wide upload progress across worker sessions.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of the run.
type Stats struct {
	BytesDone  int64
	TotalBytes int64
	FilesDone  int
	FilesFail  int
	TotalFiles int
	RateBps    float64
	Percent    float64
	StartedAt  time.Time
}

// Meter aggregates byte and file counts from all workers and keeps a
// smoothed transfer rate. Safe for concurrent use.
type Meter struct {
	mu         sync.Mutex
	totalBytes int64
	totalFiles int
	bytesDone  int64
	filesDone  int
	filesFail  int
	startedAt  time.Time
	lastAt     time.Time
	lastBytes  int64
	rateBps    float64
	alpha      float64
	now        func() time.Time
}

// NewMeter returns a meter with a default smoothing factor.
func NewMeter() *Meter {
	return NewMeterWithNow(time.Now)
}

// NewMeterWithNow returns a meter with a custom time source (for tests).
func NewMeterWithNow(now func() time.Time) *Meter {
	if now == nil {
		now = time.Now
	}
	return &Meter{alpha: 0.2, now: now}
}

// Start initializes the meter with the run's totals.
func (m *Meter) Start(totalBytes int64, totalFiles int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalBytes = totalBytes
	m.totalFiles = totalFiles
	m.bytesDone = 0
	m.filesDone = 0
	m.filesFail = 0
	m.startedAt = m.now()
	m.lastAt = m.startedAt
	m.lastBytes = 0
	m.rateBps = 0
}

// FileDone records one successfully uploaded file and its byte count.
func (m *Meter) FileDone(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesDone++
	if bytes <= 0 {
		return
	}
	now := m.now()
	m.bytesDone += bytes
	deltaBytes := m.bytesDone - m.lastBytes
	deltaTime := now.Sub(m.lastAt).Seconds()
	if deltaTime > 0 {
		inst := float64(deltaBytes) / deltaTime
		if m.rateBps == 0 {
			m.rateBps = inst
		} else {
			m.rateBps = m.alpha*inst + (1-m.alpha)*m.rateBps
		}
		m.lastAt = now
		m.lastBytes = m.bytesDone
	}
}

// FileFailed records one file whose upload gave up.
func (m *Meter) FileFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesFail++
}

// Snapshot returns the current stats.
func (m *Meter) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Stats{
		BytesDone:  m.bytesDone,
		TotalBytes: m.totalBytes,
		FilesDone:  m.filesDone,
		FilesFail:  m.filesFail,
		TotalFiles: m.totalFiles,
		RateBps:    m.rateBps,
		StartedAt:  m.startedAt,
	}
	if m.totalBytes > 0 {
		stats.Percent = float64(m.bytesDone) / float64(m.totalBytes) * 100
	}
	return stats
}

// Render writes a single-line progress update, using carriage return so the
// line overwrites itself on a terminal.
func Render(w io.Writer, s Stats) {
	fmt.Fprintf(w, "\r[%d/%d] %6.2f%% %s / %s  %s/s   ",
		s.FilesDone+s.FilesFail,
		s.TotalFiles,
		s.Percent,
		humanize.IBytes(uint64(s.BytesDone)),
		humanize.IBytes(uint64(s.TotalBytes)),
		humanize.IBytes(uint64(s.RateBps)),
	)
}
