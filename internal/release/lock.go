package release

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// Lock is an exclusive hold on an output root.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes the build lock of root without waiting. A lock held by
// another process returns ErrLocked.
func AcquireLock(root string) (*Lock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output root: %w", err)
	}
	fl := flock.New(Layout{Root: root}.LockPath())
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock. The lock file stays in place.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
