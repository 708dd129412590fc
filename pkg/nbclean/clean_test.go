package nbclean

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/parser"
	"github.com/ukaji3/nbclean-go/pkg/nbclean/validator"
)

// scriptedSession fails every submission containing "raise".
type scriptedSession struct {
	last    string
	stopped bool
}

func (s *scriptedSession) Submit(code string) error {
	s.last = code
	return nil
}

func (s *scriptedSession) AwaitReply(ctx context.Context, timeout time.Duration) (*validator.Reply, error) {
	if strings.Contains(s.last, "raise") {
		return &validator.Reply{Status: validator.StatusError, Traceback: []string{"Traceback", "ValueError: boom"}}, nil
	}
	return &validator.Reply{Status: validator.StatusOK}, nil
}

func (s *scriptedSession) Stop() error {
	s.stopped = true
	return nil
}

type scriptedLauncher struct {
	dirs     []string
	sessions []*scriptedSession
	err      error
}

func (l *scriptedLauncher) Start(ctx context.Context, dir string) (validator.Session, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.dirs = append(l.dirs, dir)
	s := &scriptedSession{}
	l.sessions = append(l.sessions, s)
	return s, nil
}

func copyFixture(t *testing.T, dir, fixture, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func fileContent(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCleanFileStripsOutputs(t *testing.T) {
	for _, version := range []string{"v3", "v4"} {
		t.Run(version, func(t *testing.T) {
			path := copyFixture(t, t.TempDir(), version+"_dirty.ipynb", "nb.ipynb")
			var out bytes.Buffer
			opts := DefaultOptions()
			opts.Stdout = &out

			res, err := CleanFile(context.Background(), path, opts)
			require.NoError(t, err)
			assert.True(t, res.Changed)
			assert.Nil(t, res.Report)
			require.NotNil(t, res.Original)
			assert.Len(t, res.Original.CodeCells()[0].Outputs, 1)
			assert.Equal(t, "Removing outputs for: "+path+"\n", out.String())
			assert.Equal(t, fixture(t, version+"_clean.ipynb"), fileContent(t, path))
		})
	}
}

func TestCleanFileAlreadyClean(t *testing.T) {
	path := copyFixture(t, t.TempDir(), "v4_clean.ipynb", "nb.ipynb")
	res, err := CleanFile(context.Background(), path, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, fixture(t, "v4_clean.ipynb"), fileContent(t, path))
}

func TestCleanFileDryRun(t *testing.T) {
	dir := t.TempDir()
	dirty := copyFixture(t, dir, "v3_dirty.ipynb", "dirty.ipynb")
	clean := copyFixture(t, dir, "v3_clean.ipynb", "clean.ipynb")
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.DryRun = true
	opts.Stdout = &out

	_, err := Run(context.Background(), []string{dir}, opts)
	require.NoError(t, err)
	assert.Equal(t, "Would remove outputs for: "+dirty+"\n", out.String())
	assert.Equal(t, fixture(t, "v3_dirty.ipynb"), fileContent(t, dirty))
	assert.Equal(t, fixture(t, "v3_clean.ipynb"), fileContent(t, clean))
}

func TestCleanFileFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(`{"nbformat": 2}`), 0644))

	_, err := CleanFile(context.Background(), path, DefaultOptions())
	var ce *CleanError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageLoad, ce.Stage)
	var fe *parser.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
	assert.ErrorIs(t, err, parser.ErrUnsupportedVersion)
}

func TestCleanFileCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "check.ipynb")
	doc := `{"nbformat": 4, "nbformat_minor": 2, "metadata": {"name": "check"}, "cells": [
		{"cell_type": "code", "source": "a = 1", "outputs": [{"output_type": "stream"}], "execution_count": 1, "metadata": {}},
		{"cell_type": "markdown", "source": "prose", "metadata": {}},
		{"cell_type": "code", "source": "raise ValueError('boom')", "outputs": [], "execution_count": 2, "metadata": {}},
		{"cell_type": "code", "source": "c = 3", "outputs": [], "execution_count": 3, "metadata": {}}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	launcher := &scriptedLauncher{}
	var out bytes.Buffer
	v := validator.New(launcher)
	v.Progress = &out
	opts := Options{Check: true, Validator: v, Stdout: &out}

	res, err := CleanFile(context.Background(), path, opts)
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, 3, res.Report.Cells)
	assert.Equal(t, 1, res.Report.Failed())

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Removing outputs for: "+path+"\n...\n"), text)
	assert.Contains(t, text, "ran notebook check\n")
	assert.Contains(t, text, "ran 3 cells\n")
	assert.Contains(t, text, "1 cells raised exceptions\n")
	assert.Contains(t, text, "raise ValueError('boom')\n-----\nraised:\nTraceback\nValueError: boom\n")

	assert.Equal(t, []string{dir}, launcher.dirs)
	require.Len(t, launcher.sessions, 1)
	assert.True(t, launcher.sessions[0].stopped)

	nb, err := parser.ParseFile(path)
	require.NoError(t, err)
	for _, cell := range nb.CodeCells() {
		assert.Empty(t, cell.Outputs)
		assert.Nil(t, cell.ExecutionCount)
	}
}

func TestCleanFileCheckFailures(t *testing.T) {
	path := copyFixture(t, t.TempDir(), "v4_dirty.ipynb", "nb.ipynb")

	_, err := CleanFile(context.Background(), path, Options{Check: true})
	assert.ErrorIs(t, err, ErrNoValidator)

	launchErr := errors.New("python3 not found")
	opts := Options{Check: true, Validator: validator.New(&scriptedLauncher{err: launchErr})}
	_, err = CleanFile(context.Background(), path, opts)
	var ce *CleanError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, StageCheck, ce.Stage)
	var startup *validator.StartupError
	assert.ErrorAs(t, err, &startup)
	assert.Equal(t, fixture(t, "v4_dirty.ipynb"), fileContent(t, path), "a failed check must not write the document")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "a.ipynb")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	dirty := copyFixture(t, dir, "v4_dirty.ipynb", "b.ipynb")
	readme := copyFixture(t, dir, "readme.txt", "readme.txt")

	results, err := Run(context.Background(), []string{dir}, DefaultOptions())
	var fe *parser.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, results)
	assert.Equal(t, fixture(t, "v4_dirty.ipynb"), fileContent(t, dirty))
	assert.Equal(t, fixture(t, "readme.txt"), fileContent(t, readme))
}

func TestRunKeepGoing(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "a.ipynb")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	dirty := copyFixture(t, dir, "v4_dirty.ipynb", "b.ipynb")
	copyFixture(t, dir, "readme.txt", "readme.txt")

	var out bytes.Buffer
	opts := DefaultOptions()
	opts.KeepGoing = true
	opts.Stdout = &out

	results, err := Run(context.Background(), []string{dir}, opts)
	var ce *CleanError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, bad, ce.Path)
	require.Len(t, results, 1)
	assert.Equal(t, dirty, results[0].Path)
	assert.Equal(t, fixture(t, "v4_clean.ipynb"), fileContent(t, dirty))
	assert.NotContains(t, out.String(), "readme.txt")
}
