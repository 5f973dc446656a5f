//go:build !linux

package release

import (
	"errors"
	"io/fs"
	"os"
)

func swapCurrent(next, current string) error {
	if _, err := os.Lstat(current); errors.Is(err, fs.ErrNotExist) {
		return os.Rename(next, current)
	}
	return swapFallback(next, current)
}
