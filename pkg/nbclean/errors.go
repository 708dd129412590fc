package nbclean

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a document failed in.
type Stage string

const (
	StageLoad  Stage = "load"
	StageCheck Stage = "check"
	StageWrite Stage = "write"
)

// ErrNoValidator indicates Check was requested without a Validator.
var ErrNoValidator = errors.New("check requested without a validator")

// CleanError represents a failure while processing one document.
type CleanError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *CleanError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *CleanError) Unwrap() error {
	return e.Err
}

// NewCleanError creates a new CleanError.
func NewCleanError(path string, stage Stage, err error) *CleanError {
	return &CleanError{
		Path:  path,
		Stage: stage,
		Err:   err,
	}
}
