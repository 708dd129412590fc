// Package parser reads notebook documents into the in-memory model.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
)

// Top-level keys shared by every supported format version.
const (
	keyFormat      = "nbformat"
	keyFormatMinor = "nbformat_minor"
	keyMetadata    = "metadata"
	keyCellType    = "cell_type"
	keySource      = "source"
	keyOutputs     = "outputs"
)

// ParseFile reads and parses the notebook at path.
// The returned notebook remembers path for naming and writing.
func ParseFile(path string) (*models.Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nb, err := Parse(data)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	nb.Path = path
	return nb, nil
}

// ParseReader reads the whole stream and parses it.
func ParseReader(r io.Reader) (*models.Notebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a notebook document. nbformat 3 and 4 are supported;
// anything else yields a *FormatError.
func Parse(data []byte) (*models.Notebook, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, &FormatError{Err: err}
	}
	if top == nil {
		return nil, &FormatError{Err: errors.New("document is not a JSON object")}
	}

	rawFormat, ok := top[keyFormat]
	if !ok {
		return nil, &FormatError{Err: errors.New("missing nbformat")}
	}
	var format int
	if err := json.Unmarshal(rawFormat, &format); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("nbformat: %w", err)}
	}
	var minor int
	if raw, ok := top[keyFormatMinor]; ok {
		if err := json.Unmarshal(raw, &minor); err != nil {
			return nil, &FormatError{Err: fmt.Errorf("nbformat_minor: %w", err)}
		}
	}
	delete(top, keyFormat)
	delete(top, keyFormatMinor)

	nb := &models.Notebook{
		Format:      format,
		FormatMinor: minor,
	}

	if raw, ok := top[keyMetadata]; ok {
		if err := json.Unmarshal(raw, &nb.Metadata); err != nil || nb.Metadata == nil {
			return nil, &FormatError{Err: errors.New("metadata must be an object")}
		}
		delete(top, keyMetadata)
	}

	var err error
	switch format {
	case 3:
		nb.Worksheets, err = parseV3(top)
	case 4:
		nb.Worksheets, err = parseV4(top)
	default:
		err = fmt.Errorf("%w: %d", ErrUnsupportedVersion, format)
	}
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	if len(top) > 0 {
		nb.Fields = top
	}
	return nb, nil
}

// parseCell decodes a single cell. sourceKey and counterKey name the keys
// that hold a code cell's source and execution counter in this format version.
func parseCell(raw json.RawMessage, sourceKey, counterKey string) (models.Cell, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.Cell{}, errors.New("cell must be an object")
	}

	var cellType string
	rawType, ok := fields[keyCellType]
	if !ok {
		return models.Cell{}, errors.New("cell_type is missing")
	}
	if err := json.Unmarshal(rawType, &cellType); err != nil {
		return models.Cell{}, fmt.Errorf("cell_type: %w", err)
	}
	delete(fields, keyCellType)

	cell := models.Cell{Type: models.CellType(cellType)}
	if !cell.IsCode() {
		sourceKey = keySource
	}
	if rawSource, ok := fields[sourceKey]; ok {
		if err := json.Unmarshal(rawSource, &cell.Source); err != nil {
			return models.Cell{}, fmt.Errorf("%s: %w", sourceKey, err)
		}
		delete(fields, sourceKey)
	} else if !cell.IsCode() {
		cell.SourceAbsent = true
	}

	if cell.IsCode() {
		if rawOutputs, ok := fields[keyOutputs]; ok {
			if err := json.Unmarshal(rawOutputs, &cell.Outputs); err != nil {
				return models.Cell{}, fmt.Errorf("outputs: %w", err)
			}
			delete(fields, keyOutputs)
		}
		if rawCount, ok := fields[counterKey]; ok {
			if err := json.Unmarshal(rawCount, &cell.ExecutionCount); err != nil {
				return models.Cell{}, fmt.Errorf("%s: %w", counterKey, err)
			}
			delete(fields, counterKey)
		}
	}

	if len(fields) > 0 {
		cell.Fields = fields
	}
	return cell, nil
}

// parseCells decodes a JSON array of cells.
func parseCells(raw json.RawMessage, sourceKey, counterKey string) ([]models.Cell, error) {
	var rawCells []json.RawMessage
	if err := json.Unmarshal(raw, &rawCells); err != nil {
		return nil, fmt.Errorf("cells must be a list: %w", err)
	}
	cells := make([]models.Cell, 0, len(rawCells))
	for i, rc := range rawCells {
		cell, err := parseCell(rc, sourceKey, counterKey)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
