package transfer

import "time"

// Outcome is the per-file result a worker hands to the aggregator.
type Outcome struct {
	RemotePath string
	Bytes      int64
	Elapsed    time.Duration
	Err        error // nil on success; the last attempt's error otherwise
}

// Succeeded reports whether the file made it to the server.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}
