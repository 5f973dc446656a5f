package main

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"

	"metmaster/internal/build"
	"metmaster/internal/release"
)

var version = "dev"

func main() {
	root := newRootCommand()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps failures to distinct statuses for scripts and schedulers.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, build.ErrMissingInput):
		return 2
	case errors.Is(err, release.ErrLocked):
		return 3
	case errors.Is(err, release.ErrChecksumMismatch):
		return 4
	default:
		return 1
	}
}
