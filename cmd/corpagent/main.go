package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/corpagent/internal/pipeline"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "corpagent",
		Short: "Flag compliance gaps in ADGM incorporation documents",
		Long: "corpagent reviews .docx incorporation documents against the built-in ADGM rules,\n" +
			"writes a commented copy of each file and a " + pipeline.CombinedReportName + "\n" +
			"into --out-dir (default " + pipeline.DefaultOutDir + ").",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newReviewCmd(), newRulesCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
