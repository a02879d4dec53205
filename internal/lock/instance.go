package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// InstanceFileName is created next to the ledger to keep a second pipeline
// process from writing the same ledger
const InstanceFileName = ".summarai.lock"

// ErrInstanceRunning is returned when another process holds the instance lock
var ErrInstanceRunning = errors.New("lock: another summarai process is using this ledger")

// Instance is a held process-level lock
type Instance struct {
	fl *flock.Flock
}

// AcquireInstance takes a non-blocking exclusive lock on dir/.summarai.lock
func AcquireInstance(dir string) (*Instance, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, InstanceFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return nil, ErrInstanceRunning
	}
	return &Instance{fl: fl}, nil
}

// Path returns the lock file location
func (i *Instance) Path() string {
	return i.fl.Path()
}

// Release unlocks the instance lock
func (i *Instance) Release() error {
	if i == nil || i.fl == nil {
		return nil
	}
	return i.fl.Unlock()
}
