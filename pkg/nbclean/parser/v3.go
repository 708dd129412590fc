package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
)

// nbformat 3 keys.
const (
	KeyWorksheets   = "worksheets"
	KeyCells        = "cells"
	KeyInputV3      = "input"
	KeyPromptNumber = "prompt_number"
)

// parseV3 consumes the worksheets key of an nbformat 3 document.
func parseV3(top map[string]json.RawMessage) ([]models.Worksheet, error) {
	raw, ok := top[KeyWorksheets]
	if !ok {
		return nil, errors.New("nbformat 3 document has no worksheets")
	}
	delete(top, KeyWorksheets)

	var rawSheets []json.RawMessage
	if err := json.Unmarshal(raw, &rawSheets); err != nil {
		return nil, fmt.Errorf("worksheets must be a list: %w", err)
	}

	sheets := make([]models.Worksheet, 0, len(rawSheets))
	for i, rs := range rawSheets {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rs, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("worksheet %d must be an object", i)
		}
		var ws models.Worksheet
		if rawCells, ok := fields[KeyCells]; ok {
			cells, err := parseCells(rawCells, KeyInputV3, KeyPromptNumber)
			if err != nil {
				return nil, fmt.Errorf("worksheet %d: %w", i, err)
			}
			ws.Cells = cells
			delete(fields, KeyCells)
		}
		if len(fields) > 0 {
			ws.Fields = fields
		}
		sheets = append(sheets, ws)
	}
	return sheets, nil
}
