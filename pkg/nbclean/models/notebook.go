package models

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// Notebook represents a whole notebook document.
type Notebook struct {
	// Format is the nbformat major version.
	Format int
	// FormatMinor is the nbformat minor version.
	FormatMinor int
	// Metadata holds the notebook metadata verbatim (nil when absent).
	Metadata map[string]json.RawMessage
	// Worksheets holds the worksheets in document order.
	Worksheets []Worksheet
	// Fields holds every other top-level key verbatim.
	Fields map[string]json.RawMessage
	// Path is the file the notebook was read from. It is never serialized.
	Path string
}

// Name returns the display name of the notebook: metadata.name when set,
// otherwise the file name without its extension.
func (nb *Notebook) Name() string {
	if raw, ok := nb.Metadata["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil && name != "" {
			return name
		}
	}
	if nb.Path == "" {
		return ""
	}
	base := filepath.Base(nb.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CodeCells returns pointers to every code cell in document order.
func (nb *Notebook) CodeCells() []*Cell {
	var cells []*Cell
	for w := range nb.Worksheets {
		ws := &nb.Worksheets[w]
		for c := range ws.Cells {
			if ws.Cells[c].IsCode() {
				cells = append(cells, &ws.Cells[c])
			}
		}
	}
	return cells
}

// Clone returns a deep copy of the notebook.
func (nb *Notebook) Clone() (*Notebook, error) {
	var out Notebook
	if err := deepcopy.Copy(&out, *nb); err != nil {
		return nil, err
	}
	// Presence of the metadata object is part of the document.
	if nb.Metadata != nil && out.Metadata == nil {
		out.Metadata = map[string]json.RawMessage{}
	}
	return &out, nil
}
