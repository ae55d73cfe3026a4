package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/corpagent/internal/docx"
	"github.com/dshills/corpagent/internal/pipeline"
	"github.com/dshills/corpagent/internal/render"
	"github.com/dshills/corpagent/internal/review"
	"github.com/dshills/corpagent/internal/rules"
)

type reviewFlags struct {
	outDir  string
	format  string
	rules   string
	failOn  string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
}

func newReviewCmd() *cobra.Command {
	f := &reviewFlags{}

	cmd := &cobra.Command{
		Use:   "review <file.docx>...",
		Short: "Review documents and write annotated copies plus a combined report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.stdout = cmd.OutOrStdout()
			f.stderr = cmd.ErrOrStderr()
			return runReview(cmd.Context(), args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.outDir, "out-dir", pipeline.DefaultOutDir, "Directory for reviewed files and combined_report.json")
	flags.StringVar(&f.format, "format", "json", "Output format: json or md")
	flags.StringVar(&f.rules, "rules", rules.Default, "Built-in rule set")
	flags.StringVar(&f.failOn, "fail-on", "", "Exit non-zero if any issue meets this severity: high or medium")
	flags.BoolVar(&f.verbose, "verbose", false, "Print processing steps to stderr")

	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List built-in rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := rules.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func runReview(ctx context.Context, paths []string, f *reviewFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.stdout == nil {
		f.stdout = os.Stdout
	}
	if f.stderr == nil {
		f.stderr = os.Stderr
	}

	level := zerolog.WarnLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: f.stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	if f.format != "json" && f.format != "md" {
		return exitError(3, "unknown format: %s", f.format)
	}
	threshold, err := parseFailOn(f.failOn)
	if err != nil {
		return exitError(3, "%v", err)
	}

	rs, err := rules.LoadBuiltin(f.rules)
	if err != nil {
		return exitError(3, "failed to load rules: %v", err)
	}
	logger.Debug().Str("rules", rs.Name).Int("version", rs.Version).Msg("rules loaded")

	p, err := pipeline.New(pipeline.Config{Rules: rs, OutDir: f.outDir, Now: f.now})
	if err != nil {
		return err
	}

	res, err := p.ProcessBatch(ctx, paths)
	if err != nil {
		var le *docx.LoadError
		var se *docx.SaveError
		switch {
		case errors.As(err, &le):
			return exitError(3, "failed to load document: %v", err)
		case errors.As(err, &se):
			return exitError(4, "failed to save output: %v", err)
		}
		return err
	}

	switch f.format {
	case "json":
		fmt.Fprintln(f.stdout, string(res.JSON))
	case "md":
		fmt.Fprint(f.stdout, render.Markdown(&res.Combined))
	}
	if res.FirstReviewed != "" {
		fmt.Fprintf(f.stderr, "Reviewed file: %s\n", res.FirstReviewed)
	}

	if threshold != "" && meetsThreshold(review.CountAll(&res.Combined), threshold) {
		return exitError(2, "issues at or above %s severity found", strings.ToLower(string(threshold)))
	}
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func parseFailOn(s string) (review.Severity, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "high":
		return review.SeverityHigh, nil
	case "medium":
		return review.SeverityMedium, nil
	}
	return "", fmt.Errorf("unrecognized --fail-on value %q (want high or medium)", s)
}

func meetsThreshold(c review.Counts, threshold review.Severity) bool {
	switch threshold {
	case review.SeverityHigh:
		return c.High > 0
	case review.SeverityMedium:
		return c.Total() > 0
	}
	return false
}
