// Package display implements the DisplayArbiter interface.
// The single virtual display (Xvfb in the container) is a process-wide
// resource; the arbiter serializes access through a fair FIFO queue and
// reclaims leases whose holders die without releasing.
package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

// flockRetryDelay is the poll interval for the cross-process lock file.
const flockRetryDelay = 100 * time.Millisecond

// Arbiter grants exclusive display leases in strict FIFO order, no priority.
type Arbiter struct {
	mu      sync.Mutex
	busy    bool
	waiters []*waiter

	// maxWait bounds time spent queued for a lease. It never applies to a
	// granted lease: hold duration is the holder's business.
	maxWait time.Duration

	// lockPath, when set, backs each lease with a flock lock file so
	// multiple pipeline processes sharing one display stay exclusive.
	lockPath string
	logger   *logrus.Logger
}

type waiter struct {
	granted chan struct{}
}

// New creates an Arbiter. maxWait bounds lease acquisition (zero waits for
// ctx alone); lockPath may be empty for in-process-only arbitration.
func New(lockPath string, maxWait time.Duration, logger *logrus.Logger) *Arbiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Arbiter{lockPath: lockPath, maxWait: maxWait, logger: logger}
}

// Acquire blocks until the display is free, returning ErrResourceTimeout
// when the wait budget or ctx expires first. ctx is the holder's operation
// context and outlives acquisition: if it ends before Release, the lease is
// reclaimed on the holder's behalf. The acquisition deadline comes from
// maxWait only, so a granted lease stays held for as long as the holder runs.
func (a *Arbiter) Acquire(ctx context.Context) (core.Lease, error) {
	waitCtx := ctx
	if a.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.maxWait)
		defer cancel()
	}

	a.mu.Lock()
	if !a.busy {
		a.busy = true
		a.mu.Unlock()
	} else {
		w := &waiter{granted: make(chan struct{})}
		a.waiters = append(a.waiters, w)
		a.mu.Unlock()

		select {
		case <-w.granted:
			// Ownership was transferred to us; busy stays true.
		case <-waitCtx.Done():
			if a.abandon(w) {
				// The grant raced our cancellation: pass it straight on.
				a.handOff()
			}
			return nil, core.ErrResourceTimeout
		}
	}

	l := &lease{a: a, released: make(chan struct{})}
	if a.lockPath != "" {
		fl := flock.New(a.lockPath)
		locked, err := fl.TryLockContext(waitCtx, flockRetryDelay)
		if err != nil || !locked {
			a.handOff()
			if err != nil {
				return nil, fmt.Errorf("display lock file: %w", err)
			}
			return nil, core.ErrResourceTimeout
		}
		l.fl = fl
	}

	// Reclaim on holder death: if the owning context ends before Release,
	// the lease is released on the holder's behalf instead of deadlocking
	// every queued waiter.
	go func() {
		select {
		case <-ctx.Done():
			a.logger.WithField("component", "display").
				Warn("reclaiming display lease from dead holder")
			l.Release()
		case <-l.released:
		}
	}()

	return l, nil
}

// abandon removes w from the queue. It returns true when w is no longer
// queued because it was already granted.
func (a *Arbiter) abandon(w *waiter) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, queued := range a.waiters {
		if queued == w {
			a.waiters = append(a.waiters[:i], a.waiters[i+1:]...)
			return false
		}
	}
	return true
}

// handOff passes ownership to the oldest waiter, or frees the display.
func (a *Arbiter) handOff() {
	a.mu.Lock()
	if len(a.waiters) > 0 {
		w := a.waiters[0]
		a.waiters = a.waiters[1:]
		a.mu.Unlock()
		close(w.granted)
		return
	}
	a.busy = false
	a.mu.Unlock()
}

// lease implements core.Lease. Release is idempotent.
type lease struct {
	a        *Arbiter
	fl       *flock.Flock
	released chan struct{}
	once     sync.Once
}

func (l *lease) Release() {
	l.once.Do(func() {
		close(l.released)
		if l.fl != nil {
			if err := l.fl.Unlock(); err != nil {
				l.a.logger.WithError(err).Warn("failed to release display lock file")
			}
		}
		l.a.handOff()
	})
}
