package validator

import (
	"fmt"
	"io"
)

// Failure records one code cell that raised an error during replay.
type Failure struct {
	// Cell is the zero-based position of the cell among the notebook's code cells.
	Cell int
	// Source is the code that was executed.
	Source string
	// Trace is the error trace reported by the interpreter.
	Trace string
}

// Report summarizes one validation pass over a notebook.
type Report struct {
	// Notebook is the display name of the notebook.
	Notebook string
	// Path is the file the notebook was read from.
	Path string
	// Cells counts the code cells that were executed.
	Cells int
	// Failures lists the cells that raised, in execution order.
	Failures []Failure
}

// Failed returns the number of cells that raised.
func (r *Report) Failed() int {
	return len(r.Failures)
}

// WriteSummary prints the summary block: the notebook name, the number of
// cells run, and the failing cells with their traces when there are any.
func (r *Report) WriteSummary(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("\nran notebook %s\n", r.Notebook)
	ew.printf("    ran %d cells\n", r.Cells)
	if r.Failed() > 0 {
		ew.printf("    %d cells raised exceptions\n", r.Failed())
		for _, f := range r.Failures {
			ew.printf("\nFAILURE:\n%s\n-----\nraised:\n%s\n", f.Source, f.Trace)
		}
	}
	return ew.err
}

// errWriter keeps the first write error so a block of prints can be checked once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
