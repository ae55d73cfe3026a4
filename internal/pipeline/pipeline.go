// Package pipeline drives the review of a batch of documents: load,
// classify, detect, annotate, save, report. Files are processed one at a
// time in the order given.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/corpagent/internal/annotate"
	"github.com/dshills/corpagent/internal/classify"
	"github.com/dshills/corpagent/internal/detect"
	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/review"
	"github.com/dshills/corpagent/internal/rules"
	"github.com/dshills/corpagent/internal/schema"
)

const (
	// DefaultOutDir is where reviewed files and the combined report go.
	DefaultOutDir = "reviewed_out"
	// CombinedReportName is the batch report file name inside the out dir.
	CombinedReportName = "combined_report.json"

	timestampLayout = "20060102150405"
)

// Config configures a Pipeline.
type Config struct {
	Rules  *rules.Rules
	OutDir string
	// Now stamps output names and comments. Defaults to time.Now.
	Now func() time.Time
}

func (c *Config) defaults() {
	if c.OutDir == "" {
		c.OutDir = DefaultOutDir
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Pipeline reviews documents against one rule set.
type Pipeline struct {
	cfg       Config
	annotator *annotate.Annotator
	process   review.ProcessRule
}

// New creates a Pipeline. cfg.Rules is required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Rules == nil {
		return nil, errors.New("pipeline.New: rules are required")
	}
	cfg.defaults()
	return &Pipeline{
		cfg:       cfg,
		annotator: &annotate.Annotator{Now: cfg.Now},
		process:   review.ProcessRule{Name: cfg.Rules.Process.Name, Marker: cfg.Rules.Process.Marker},
	}, nil
}

// FileResult is the outcome of reviewing one document.
type FileResult struct {
	Report   review.Report
	Outcomes []annotate.Outcome
}

// ProcessFile reviews one document and writes its annotated copy. Errors are
// *docx.LoadError or *docx.SaveError.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", filepath.Base(path)).Logger()

	doc, err := docx.Load(path)
	if err != nil {
		return nil, err
	}
	paras := doc.Paragraphs()
	logger.Debug().Str("hash", doc.Hash).Int("paragraphs", len(paras)).Msg("document loaded")

	joined := classify.JoinText(paras)
	class := classify.ClassifyText(p.cfg.Rules, strings.ToLower(joined))
	logger.Debug().Str("type", class.Type).Str("keyword", class.Keyword).Msg("document classified")

	issues := detect.Detect(p.cfg.Rules, paras, class.Type)
	logger.Debug().Int("issues", len(issues)).Msg("issues detected")

	outcomes := p.annotator.Annotate(logger.WithContext(ctx), doc, issues)

	out, err := p.outputPath(path)
	if err != nil {
		return nil, &docx.SaveError{Path: p.cfg.OutDir, Err: err}
	}
	rep := review.BuildReport(filepath.Base(path), joined, class.Type, issues, out, p.process)
	if errs := schema.ValidateReport(&rep, len(paras)); len(errs) > 0 {
		return nil, fmt.Errorf("pipeline.ProcessFile: invalid report for %s: %w", path, errors.Join(toErrors(errs)...))
	}
	if err := doc.Save(out); err != nil {
		return nil, err
	}
	logger.Info().
		Str("type", rep.DocumentType).
		Str("process", rep.Process).
		Int("issues", len(rep.Issues)).
		Str("reviewed", out).
		Msg("document reviewed")
	return &FileResult{Report: rep, Outcomes: outcomes}, nil
}

// outputPath returns {out}/{base}_reviewed_{timestamp}.docx, adding a numeric
// suffix when a file with that name already exists.
func (p *Pipeline) outputPath(input string) (string, error) {
	if err := os.MkdirAll(p.cfg.OutDir, 0755); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	stem := filepath.Join(p.cfg.OutDir, base+"_reviewed_"+p.cfg.Now().Format(timestampLayout))
	candidate := stem + ".docx"
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", err
		}
		candidate = stem + "_" + strconv.Itoa(n) + ".docx"
	}
}

// Result is the outcome of a batch.
type Result struct {
	Combined review.CombinedReport
	// JSON is the combined report as written to ReportPath.
	JSON       []byte
	ReportPath string
	// FirstReviewed is the reviewed file of the first input, empty for an
	// empty batch.
	FirstReviewed string
	Files         []*FileResult
}

// ProcessBatch reviews paths in order. The first load or save error aborts
// the batch and no combined report is written.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("run", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Int("files", len(paths)).Msg("batch started")

	res := &Result{}
	reports := make([]review.Report, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr, err := p.ProcessFile(ctx, path)
		if err != nil {
			logger.Error().Err(err).Str("file", path).Msg("batch aborted")
			return nil, err
		}
		res.Files = append(res.Files, fr)
		reports = append(reports, fr.Report)
	}

	res.Combined = review.Combine(reports)
	if errs := schema.ValidateCombined(&res.Combined); len(errs) > 0 {
		return nil, fmt.Errorf("pipeline.ProcessBatch: %w", errors.Join(toErrors(errs)...))
	}
	data, err := json.MarshalIndent(res.Combined, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pipeline.ProcessBatch: marshal report: %w", err)
	}
	res.JSON = data
	res.ReportPath = filepath.Join(p.cfg.OutDir, CombinedReportName)
	if err := os.MkdirAll(p.cfg.OutDir, 0755); err != nil {
		return nil, &docx.SaveError{Path: res.ReportPath, Err: err}
	}
	if err := os.WriteFile(res.ReportPath, data, 0644); err != nil {
		return nil, &docx.SaveError{Path: res.ReportPath, Err: err}
	}
	if len(reports) > 0 {
		res.FirstReviewed = reports[0].ReviewedFile
	}

	counts := review.CountAll(&res.Combined)
	logger.Info().
		Int("processed", res.Combined.ProcessedCount).
		Int("high", counts.High).
		Int("medium", counts.Medium).
		Str("report", res.ReportPath).
		Msg("batch finished")
	return res, nil
}

func toErrors(errs []schema.ValidationError) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
