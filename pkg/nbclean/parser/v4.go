package parser

import (
	"encoding/json"
	"errors"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
)

// KeyExecutionCount is the nbformat 4 execution counter key.
const KeyExecutionCount = "execution_count"

// parseV4 consumes the cells key of an nbformat 4 document and returns
// them as a single worksheet.
func parseV4(top map[string]json.RawMessage) ([]models.Worksheet, error) {
	raw, ok := top[KeyCells]
	if !ok {
		return nil, errors.New("nbformat 4 document has no cells")
	}
	delete(top, KeyCells)

	cells, err := parseCells(raw, keySource, KeyExecutionCount)
	if err != nil {
		return nil, err
	}
	return []models.Worksheet{{Cells: cells}}, nil
}
