package nbclean

import "github.com/ukaji3/nbclean-go/pkg/nbclean/models"

// StripOutputs removes recorded outputs and execution counters from every
// code cell of every worksheet. Other cells are not touched.
func StripOutputs(nb *models.Notebook) {
	for w := range nb.Worksheets {
		ws := &nb.Worksheets[w]
		for c := range ws.Cells {
			cell := &ws.Cells[c]
			if !cell.IsCode() {
				continue
			}
			cell.Outputs = []models.Output{}
			cell.ExecutionCount = nil
		}
	}
}
