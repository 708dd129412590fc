package models

import "encoding/json"

// CellType is the cell_type tag of a cell.
type CellType string

const (
	// CellTypeCode marks a cell holding executable source.
	CellTypeCode CellType = "code"
	// CellTypeMarkdown marks a prose cell.
	CellTypeMarkdown CellType = "markdown"
	// CellTypeRaw marks an unrendered text cell.
	CellTypeRaw CellType = "raw"
	// CellTypeHeading marks a heading cell (nbformat 3 only).
	CellTypeHeading CellType = "heading"
)

// Cell represents one cell of a worksheet.
type Cell struct {
	// Type is the cell type tag.
	Type CellType
	// Source is the cell text. For code cells this is the code to execute.
	Source MultilineString
	// SourceAbsent marks a non-code cell loaded without a source key.
	SourceAbsent bool
	// Outputs holds recorded execution results. Only meaningful for code cells.
	Outputs []Output
	// ExecutionCount is the execution-order counter (nil when absent).
	ExecutionCount *int
	// Fields holds every other key of the cell verbatim.
	Fields map[string]json.RawMessage
}

// IsCode reports whether the cell is a code cell.
func (c *Cell) IsCode() bool {
	return c.Type == CellTypeCode
}
