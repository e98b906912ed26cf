package transfer

import (
	"github.com/cenkalti/backoff/v4"
)

// Attempt runs op up to retries+1 times with no delay between attempts; the
// protocol round-trip itself is the only pacing. Returns nil on the first
// success, or the last error once the budget is exhausted.
func Attempt(op func() error, retries int) error {
	if retries < 0 {
		retries = 0
	}
	return backoff.Retry(op, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(retries)))
}
