// Package runlock prevents overlapping pipeline runs with a file lock.
// The daily scheduler has no idea how long a run takes; the lock is what
// keeps a slow run and the next day's trigger from interleaving.
package runlock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process holds the lock.
var ErrHeld = errors.New("run lock held by another process")

// Lock is a held run lock. Release it when the run finishes.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes a non-blocking lock on path.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("run lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
