package models

import "encoding/json"

// Worksheet is an ordered sequence of cells.
// nbformat 4 documents are represented as a single worksheet.
type Worksheet struct {
	// Cells holds the cells in document order.
	Cells []Cell
	// Fields holds every other key of the worksheet verbatim.
	Fields map[string]json.RawMessage
}
