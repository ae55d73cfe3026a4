package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/corpagent/internal/docxtest"
	"github.com/dshills/corpagent/internal/review"
)

// --- Pure function tests ---

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		input   string
		want    review.Severity
		wantErr bool
	}{
		{"", "", false},
		{"high", review.SeverityHigh, false},
		{"HIGH", review.SeverityHigh, false},
		{"medium", review.SeverityMedium, false},
		{"critical", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFailOn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		name      string
		counts    review.Counts
		threshold review.Severity
		want      bool
	}{
		{"high with high", review.Counts{High: 1}, review.SeverityHigh, true},
		{"high with medium only", review.Counts{Medium: 2}, review.SeverityHigh, false},
		{"medium with medium", review.Counts{Medium: 1}, review.SeverityMedium, true},
		{"medium with high", review.Counts{High: 1}, review.SeverityMedium, true},
		{"none", review.Counts{}, review.SeverityMedium, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, meetsThreshold(tt.counts, tt.threshold))
		})
	}
}

// --- runReview tests ---

func assertExitCode(t *testing.T, err error, wantCode int) {
	t.Helper()
	if wantCode == 0 {
		require.NoError(t, err)
		return
	}
	require.Error(t, err)
	var ee *exitErr
	require.True(t, errors.As(err, &ee), "expected *exitErr, got %T: %v", err, err)
	assert.Equal(t, wantCode, ee.code, "msg: %s", ee.msg)
}

func newFlags(t *testing.T, outDir string) (*reviewFlags, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return &reviewFlags{
		outDir: outDir,
		format: "json",
		rules:  "adgm",
		stdout: &stdout,
		stderr: &stderr,
		now:    func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}, &stdout, &stderr
}

var clean = []string{"ADGM board resolution", "Signed by: Jane Doe, Date: 2024-01-01"}

func TestRunReviewHappyPath(t *testing.T) {
	dir := t.TempDir()
	in := docxtest.Write(t, dir, "resolution.docx", docxtest.Options{Paragraphs: clean})
	out := filepath.Join(dir, "out")
	f, stdout, stderr := newFlags(t, out)

	assertExitCode(t, runReview(context.Background(), []string{in}, f), 0)

	var combined review.CombinedReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &combined))
	assert.Equal(t, 1, combined.ProcessedCount)
	assert.Contains(t, stderr.String(), "Reviewed file: "+filepath.Join(out, "resolution_reviewed_20240101000000.docx"))

	onDisk, err := os.ReadFile(filepath.Join(out, "combined_report.json"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(stdout.String()), string(onDisk))
}

func TestRunReviewMarkdown(t *testing.T) {
	dir := t.TempDir()
	in := docxtest.Write(t, dir, "resolution.docx", docxtest.Options{Paragraphs: clean})
	f, stdout, _ := newFlags(t, filepath.Join(dir, "out"))
	f.format = "md"

	assertExitCode(t, runReview(context.Background(), []string{in}, f), 0)
	assert.Contains(t, stdout.String(), "# Corporate Agent Review")
	assert.Contains(t, stdout.String(), "No issues found.")
}

func TestRunReviewFailOn(t *testing.T) {
	dir := t.TempDir()
	in := docxtest.Write(t, dir, "memo.docx", docxtest.Options{Paragraphs: []string{"Memorandum", "Dubai Courts"}})
	f, _, _ := newFlags(t, filepath.Join(dir, "out"))
	f.failOn = "high"

	assertExitCode(t, runReview(context.Background(), []string{in}, f), 2)
}

func TestRunReviewMissingFile(t *testing.T) {
	f, _, _ := newFlags(t, filepath.Join(t.TempDir(), "out"))
	assertExitCode(t, runReview(context.Background(), []string{"/nonexistent/input.docx"}, f), 3)
}

func TestRunReviewUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	in := docxtest.Write(t, dir, "resolution.docx", docxtest.Options{Paragraphs: clean})
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	f, _, _ := newFlags(t, filepath.Join(blocker, "out"))

	assertExitCode(t, runReview(context.Background(), []string{in}, f), 4)
}

func TestRunReviewBadFlags(t *testing.T) {
	in := docxtest.Paragraphs(t, clean...)

	f, _, _ := newFlags(t, t.TempDir())
	f.format = "xml"
	assertExitCode(t, runReview(context.Background(), []string{in}, f), 3)

	f, _, _ = newFlags(t, t.TempDir())
	f.failOn = "bogus"
	assertExitCode(t, runReview(context.Background(), []string{in}, f), 3)

	f, _, _ = newFlags(t, t.TempDir())
	f.rules = "nonexistent"
	assertExitCode(t, runReview(context.Background(), []string{in}, f), 3)
}
