package nbclean

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/parser"
)

func intPtr(i int) *int { return &i }

func rawOutput(raw string) models.Output {
	return models.Output{Raw: json.RawMessage(raw)}
}

// scenarioNotebook has three code cells with outputs ["5"], [] and an
// error trace, plus one markdown cell.
func scenarioNotebook() *models.Notebook {
	return &models.Notebook{
		Format: 3,
		Worksheets: []models.Worksheet{{Cells: []models.Cell{
			{Type: models.CellTypeCode, Source: models.NewText("5"), Outputs: []models.Output{rawOutput(`{"text":"5"}`)}, ExecutionCount: intPtr(1)},
			{Type: models.CellTypeMarkdown, Source: models.NewText("*prose*"), Fields: map[string]json.RawMessage{"metadata": json.RawMessage(`{"a":1}`)}},
			{Type: models.CellTypeCode, Source: models.NewText("x = []"), Outputs: []models.Output{}, ExecutionCount: intPtr(2)},
			{Type: models.CellTypeCode, Source: models.NewText("1/0"), Outputs: []models.Output{rawOutput(`{"traceback":["error-trace"]}`)}, ExecutionCount: intPtr(3)},
		}}},
	}
}

func TestStripOutputsScenario(t *testing.T) {
	nb := scenarioNotebook()
	markdownBefore := nb.Worksheets[0].Cells[1]

	StripOutputs(nb)

	for _, cell := range nb.CodeCells() {
		if len(cell.Outputs) != 0 {
			t.Errorf("Code cell %q still has %d outputs", cell.Source.String(), len(cell.Outputs))
		}
		if cell.ExecutionCount != nil {
			t.Errorf("Code cell %q still has execution count %d", cell.Source.String(), *cell.ExecutionCount)
		}
	}
	if diff := cmp.Diff(markdownBefore, nb.Worksheets[0].Cells[1]); diff != "" {
		t.Errorf("Markdown cell changed (-before +after):\n%s", diff)
	}
}

func TestStripOutputsIsIdempotent(t *testing.T) {
	for _, name := range []string{"v3_dirty.ipynb", "v4_dirty.ipynb"} {
		nb, err := parser.ParseFile("testdata/" + name)
		if err != nil {
			t.Fatalf("ParseFile(%s) failed: %v", name, err)
		}
		StripOutputs(nb)
		once, err := nb.Clone()
		if err != nil {
			t.Fatalf("Clone failed: %v", err)
		}
		StripOutputs(nb)
		if diff := cmp.Diff(once, nb, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s: second strip changed the notebook:\n%s", name, diff)
		}
	}
}

func TestStripOutputsLeavesNonCodeCells(t *testing.T) {
	nb, err := parser.ParseFile("testdata/v3_dirty.ipynb")
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	before, err := nb.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	StripOutputs(nb)

	for w, ws := range nb.Worksheets {
		for c, cell := range ws.Cells {
			if cell.IsCode() {
				continue
			}
			if diff := cmp.Diff(before.Worksheets[w].Cells[c], cell); diff != "" {
				t.Errorf("Non-code cell %d changed:\n%s", c, diff)
			}
		}
	}
}

func TestStripOutputsWorksheetsAndEmpty(t *testing.T) {
	nb := &models.Notebook{Format: 3, Worksheets: []models.Worksheet{
		{},
		{Cells: []models.Cell{{Type: models.CellTypeCode, Outputs: []models.Output{rawOutput(`{}`)}, ExecutionCount: intPtr(9)}}},
	}}
	StripOutputs(nb)
	cell := nb.Worksheets[1].Cells[0]
	if len(cell.Outputs) != 0 || cell.ExecutionCount != nil {
		t.Errorf("Second worksheet was not stripped: %+v", cell)
	}

	StripOutputs(&models.Notebook{})
}
