package release

import (
	"errors"
	"fmt"
)

var (
	// ErrLocked means another build holds the output root.
	ErrLocked = errors.New("output root is locked by another build")
	// ErrReleaseExists means a release with the same build id is already published.
	ErrReleaseExists = errors.New("release already exists")
	// ErrNoCurrent means nothing has been published yet.
	ErrNoCurrent = errors.New("no current release")
	// ErrChecksumMismatch means an artifact no longer matches its recorded digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// PublishError reports a failure while sealing or publishing a release.
type PublishError struct {
	Step string
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("publish %s (%s): %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Step, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func publishErr(step, path string, err error) error {
	return &PublishError{Step: step, Path: path, Err: err}
}
