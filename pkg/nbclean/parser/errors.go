package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVersion indicates a document whose nbformat major version is not 3 or 4.
var ErrUnsupportedVersion = errors.New("unsupported nbformat version")

// FormatError reports a document that is not valid JSON or does not match
// a supported notebook schema.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid notebook: %v", e.Err)
	}
	return fmt.Sprintf("invalid notebook %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
