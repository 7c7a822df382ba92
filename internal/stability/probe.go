// Package stability decides when a file written by an external producer has
// finished arriving.
//
// The probe polls file size and treats two consecutive equal readings as
// "write complete". This is a heuristic, not a guarantee: it only requires the
// producer to eventually stop writing to a path. Probes run to completion even
// during shutdown; the watcher simply dispatches no further events.
package stability

import (
	"os"
	"time"
)

const (
	// DefaultTimeout bounds how long a single probe will wait for quiescence.
	DefaultTimeout = 30 * time.Second
	// DefaultInterval is the pause between size polls.
	DefaultInterval = time.Second
)

// Probe checks whether files have stopped changing size.
type Probe struct {
	Timeout  time.Duration
	Interval time.Duration
}

// New returns a probe with the given timing, falling back to defaults for
// non-positive values.
func New(timeout, interval time.Duration) Probe {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return Probe{Timeout: timeout, Interval: interval}
}

// Wait blocks until the file at path reports the same size on two consecutive
// polls, returning true as soon as that happens. It returns false if the size
// never settles within the probe's timeout.
//
// A path that does not exist yet keeps the previous reading: creation events
// can fire before the producer has materialized the file, and forgetting the
// last size would restart the quiescence check for no reason. A zero-byte file
// is stable once it has been observed twice.
func (p Probe) Wait(path string) bool {
	deadline := time.Now().Add(p.Timeout)
	last := int64(-1)

	for time.Now().Before(deadline) {
		info, err := os.Stat(path)
		if err == nil {
			size := info.Size()
			if size == last {
				return true
			}
			last = size
		}
		time.Sleep(p.Interval)
	}
	return false
}
