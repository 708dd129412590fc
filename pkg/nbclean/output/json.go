// Package output serializes notebooks and validation reports.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/parser"
)

// ToJSON serializes the notebook in its own format version. Keys are
// sorted, nested values are indented by one space and the document ends
// with a newline, matching the canonical notebook writer.
func ToJSON(nb *models.Notebook) ([]byte, error) {
	doc, err := document(nb)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes the notebook to w.
func Write(w io.Writer, nb *models.Notebook) error {
	data, err := ToJSON(nb)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile replaces the file at path with the serialized notebook.
// The document is written to a temporary file in the same directory and
// renamed into place, so the previous file survives a failed write.
func WriteFile(path string, nb *models.Notebook) error {
	data, err := ToJSON(nb)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) (err error) {
	perm := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// document builds the generic JSON tree for nb.
func document(nb *models.Notebook) (map[string]interface{}, error) {
	doc := make(map[string]interface{}, len(nb.Fields)+4)
	for k, v := range nb.Fields {
		doc[k] = v
	}
	doc["nbformat"] = nb.Format
	doc["nbformat_minor"] = nb.FormatMinor
	if nb.Metadata != nil {
		doc["metadata"] = nb.Metadata
	}

	switch nb.Format {
	case 3:
		sheets := make([]map[string]interface{}, 0, len(nb.Worksheets))
		for _, ws := range nb.Worksheets {
			sheet := make(map[string]interface{}, len(ws.Fields)+1)
			for k, v := range ws.Fields {
				sheet[k] = v
			}
			sheet[parser.KeyCells] = cells(ws.Cells, 3)
			sheets = append(sheets, sheet)
		}
		doc[parser.KeyWorksheets] = sheets
	case 4:
		if len(nb.Worksheets) > 1 {
			return nil, fmt.Errorf("nbformat 4 holds a single worksheet, got %d", len(nb.Worksheets))
		}
		var list []models.Cell
		if len(nb.Worksheets) == 1 {
			list = nb.Worksheets[0].Cells
		}
		doc[parser.KeyCells] = cells(list, 4)
	default:
		return nil, fmt.Errorf("%w: %d", parser.ErrUnsupportedVersion, nb.Format)
	}
	return doc, nil
}

func cells(list []models.Cell, format int) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(list))
	for i := range list {
		out = append(out, cell(&list[i], format))
	}
	return out
}

func cell(c *models.Cell, format int) map[string]interface{} {
	m := make(map[string]interface{}, len(c.Fields)+4)
	for k, v := range c.Fields {
		m[k] = v
	}
	m["cell_type"] = c.Type

	if !c.IsCode() {
		if !c.SourceAbsent {
			m["source"] = c.Source
		}
		return m
	}

	outputs := c.Outputs
	if outputs == nil {
		outputs = []models.Output{}
	}
	m["outputs"] = outputs

	if format == 3 {
		m[parser.KeyInputV3] = c.Source
		if c.ExecutionCount != nil {
			m[parser.KeyPromptNumber] = *c.ExecutionCount
		}
		return m
	}
	m["source"] = c.Source
	// nbformat 4 requires the key; null means "not executed".
	m[parser.KeyExecutionCount] = c.ExecutionCount
	return m
}
