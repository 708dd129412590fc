package output

import (
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
	"github.com/xuri/excelize/v2"
)

// Report sheet names.
const (
	SummarySheet  = "Summary"
	FailuresSheet = "Failures"
)

// WriteReport saves the validation reports as an xlsx workbook with one
// summary row per notebook and one row per failing cell.
func WriteReport(path string, reports []*validator.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(FailuresSheet); err != nil {
		return err
	}

	summary := [][]interface{}{{"Notebook", "Path", "Cells", "Failures"}}
	failures := [][]interface{}{{"Notebook", "Cell", "Source", "Traceback"}}
	for _, r := range reports {
		summary = append(summary, []interface{}{r.Notebook, r.Path, r.Cells, r.Failed()})
		for _, fail := range r.Failures {
			// Cells are numbered from 1 for readers of the workbook.
			failures = append(failures, []interface{}{r.Notebook, fail.Cell + 1, fail.Source, fail.Trace})
		}
	}

	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}
	if err := writeRows(f, FailuresSheet, failures); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(FailuresSheet, "C", "D", 80); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
