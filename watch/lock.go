package watch

import (
	"context"
	"time"
)

// DefaultPollInterval is the sleep between lock probes
const DefaultPollInterval = 10 * time.Millisecond

// LockProbe reports whether path can currently be opened read-write with an exclusive lock
// A missing file counts as locked, an editor replacing the file recreates it shortly
type LockProbe func(path string) bool

// WaitUnlocked polls probe until it succeeds, sleeping interval between attempts
// There is no retry cap, only ctx cancellation aborts the wait
func WaitUnlocked(ctx context.Context, path string, interval time.Duration, probe LockProbe) error {
	if probe == nil {
		probe = ExclusiveProbe
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for attempts := 1; ; attempts++ {
		if probe(path) {
			if attempts > 1 {
				log.Debugf("lock on %s released after %d probes", path, attempts)
			}
			return nil
		}
		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
