package build

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrMissingInput matches every MissingInputError.
var ErrMissingInput = errors.New("missing input")

// MissingInputError reports an absent source file. It is raised before any
// output is created.
type MissingInputError struct {
	Input string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Input, e.Path)
}

// Is matches ErrMissingInput and fs.ErrNotExist.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput || target == fs.ErrNotExist
}

// Failure is a build aborted after work began. The staging directory has
// been removed and the published state is unchanged.
type Failure struct {
	BuildID string
	Phase   string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("build %s failed during %s: %v", f.BuildID, f.Phase, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
