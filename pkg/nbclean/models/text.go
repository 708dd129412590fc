// Package models defines the in-memory notebook document model.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MultilineString is text that a notebook stores either as a single JSON
// string or as a list of line fragments.
type MultilineString struct {
	// Lines holds the fragments in document order. Joined they form the text.
	Lines []string
	// Split reports whether the document stored a list rather than a string.
	Split bool
}

// NewText returns a MultilineString stored as a single string.
func NewText(s string) MultilineString {
	return MultilineString{Lines: []string{s}}
}

// String returns the joined text.
func (m MultilineString) String() string {
	return strings.Join(m.Lines, "")
}

// MarshalJSON encodes the text in the form it was loaded in.
func (m MultilineString) MarshalJSON() ([]byte, error) {
	if m.Split {
		lines := m.Lines
		if lines == nil {
			lines = []string{}
		}
		return marshalRaw(lines)
	}
	return marshalRaw(m.String())
}

// UnmarshalJSON accepts either a string or a list of strings.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MultilineString{Lines: []string{s}}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*m = MultilineString{Lines: lines, Split: true}
	return nil
}

// marshalRaw encodes v without HTML escaping so markup in cells stays readable.
func marshalRaw(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
