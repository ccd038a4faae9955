// Package polling holds the fixed wait between two status checks of a pending job.
package polling

import (
	"sync/atomic"
	"time"
)

const DefaultInterval = 1500 * time.Millisecond

var interval atomic.Int64

func init() {
	interval.Store(int64(DefaultInterval))
}

func Interval() time.Duration {
	return time.Duration(interval.Load())
}

// Override replaces the interval for the whole process and returns a func restoring the previous one.
// It is meant for tests that cannot afford the default wait.
func Override(d time.Duration) (restore func()) {
	previous := interval.Swap(int64(d))
	return func() {
		interval.Store(previous)
	}
}
