package nbclean

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukaji3/nbclean-go/pkg/nbclean/models"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/output"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/parser"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
	"go.uber.org/zap"
)

// Result describes what happened to one document.
type Result struct {
	// Path is the document path.
	Path string
	// Original is the document as loaded, outputs included.
	Original *models.Notebook
	// Changed reports whether stripping altered the document.
	Changed bool
	// Report is the validation report (nil unless Check was set).
	Report *validator.Report
}

// CleanFile runs the pipeline on one document: load, optionally replay its
// code cells, strip outputs and write it back. Unchanged documents are not
// rewritten. With DryRun nothing is written.
func CleanFile(ctx context.Context, path string, opts Options) (*Result, error) {
	out := opts.stdout()
	logger := opts.logger().With(zap.String("path", path))
	if !opts.DryRun {
		fmt.Fprintf(out, "Removing outputs for: %s\n", path)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, NewCleanError(path, StageLoad, err)
	}
	nb, err := parser.Parse(original)
	if err != nil {
		var fe *parser.FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, NewCleanError(path, StageLoad, err)
	}
	nb.Path = path

	res := &Result{Path: path, Original: nb}
	if opts.Check {
		if opts.Validator == nil {
			return nil, NewCleanError(path, StageCheck, ErrNoValidator)
		}
		dir, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, NewCleanError(path, StageCheck, err)
		}
		report, err := opts.Validator.Run(ctx, nb, dir)
		res.Report = report
		if err != nil {
			return res, NewCleanError(path, StageCheck, err)
		}
		if err := report.WriteSummary(out); err != nil {
			return res, NewCleanError(path, StageCheck, err)
		}
	}

	stripped, err := nb.Clone()
	if err != nil {
		return res, NewCleanError(path, StageWrite, err)
	}
	StripOutputs(stripped)
	cleaned, err := output.ToJSON(stripped)
	if err != nil {
		return res, NewCleanError(path, StageWrite, err)
	}
	res.Changed = !bytes.Equal(original, cleaned)

	switch {
	case !res.Changed:
		logger.Debug("already clean")
	case opts.DryRun:
		fmt.Fprintf(out, "Would remove outputs for: %s\n", path)
	default:
		if err := output.WriteFile(path, stripped); err != nil {
			return res, NewCleanError(path, StageWrite, err)
		}
		logger.Debug("outputs removed")
	}
	return res, nil
}

// Run expands targets and cleans every document found, one after another.
// Without KeepGoing the first failure stops the run; with it every failure
// is collected and returned joined. Results of all documents processed so
// far are returned in either case.
func Run(ctx context.Context, targets []string, opts Options) ([]*Result, error) {
	paths, err := ExpandTargets(targets, opts.extension())
	if err != nil {
		return nil, err
	}
	logger := opts.logger()
	logger.Debug("expanded targets", zap.Int("documents", len(paths)))

	var results []*Result
	var errs []error
	for _, path := range paths {
		res, err := CleanFile(ctx, path, opts)
		if res != nil {
			results = append(results, res)
		}
		if err == nil {
			continue
		}
		if !opts.KeepGoing {
			return results, err
		}
		logger.Warn("document failed", zap.Error(err))
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}
