// Package runlock serializes runs over one input directory with a file
// lock.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"yammer/internal/services"
)

const lockName = ".yammer.lock"

// Lock guards an input directory for the duration of a run.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the directory lock without blocking. A second concurrent
// run over the same directory fails fast.
func Acquire(inputDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(inputDir, lockName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "acquire run lock",
			fmt.Errorf("another run is already processing %s", inputDir))
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
