//go:build linux

package release

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// swapCurrent installs next as current. An existing current is exchanged
// with next in one renameat2 call and the old tree, now at next, is removed.
func swapCurrent(next, current string) error {
	if _, err := os.Lstat(current); errors.Is(err, fs.ErrNotExist) {
		return os.Rename(next, current)
	}
	err := unix.Renameat2(unix.AT_FDCWD, next, unix.AT_FDCWD, current, unix.RENAME_EXCHANGE)
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) || errors.Is(err, unix.EOPNOTSUPP) {
		return swapFallback(next, current)
	}
	if err != nil {
		return &os.LinkError{Op: "renameat2", Old: next, New: current, Err: err}
	}
	return os.RemoveAll(next)
}
