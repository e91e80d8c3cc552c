package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hush/internal/manifest"
	"hush/internal/metrics"
	"hush/internal/verify"
)

var errCheckFailed = errors.New("verification failed")

var checkReport string

func init() {
	checkCmd.Flags().StringVar(&checkReport, "report", "", "write a JSON verification report to this file")
}

var checkCmd = &cobra.Command{
	Use:   "check <manifest_path> [<work_dir>]",
	Short: "Verify a manifest against files below work_dir",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir := "."
		if len(args) == 2 {
			workDir = args[1]
		}

		r, err := manifest.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		stats := &metrics.Stats{}
		stats.Start()

		// the manifest is streamed, so the byte total is unknown
		bar := newBar("verifying", -1, stats)
		eng, err := newEngine(func(n int64) {
			stats.AddBytes(n)
			bar.AddBytes(n)
		})
		if err != nil {
			bar.Close()
			return err
		}

		res, err := verify.Verify(cmd.Context(), eng, r, workDir, verify.Options{
			Workers:          cfg.Workers,
			StopOnFirstError: cfg.StopOnFirstError,
			Logger:           log,
		}, stats)
		bar.Close()
		stats.Stop()
		if err != nil {
			return err
		}
		printStats(stats)

		if checkReport != "" {
			rep := verify.Report{Manifest: args[0], WorkDir: workDir, OK: res.OK(), Result: res}
			if err := verify.WriteReport(checkReport, rep); err != nil {
				return err
			}
		}

		printCheckSummary(res)
		if !res.OK() {
			return fmt.Errorf("%w: %d of %d lines", errCheckFailed, res.Errors, res.LinesTotal)
		}
		return nil
	},
}

func printCheckSummary(res *verify.Result) {
	status := color.New(color.FgGreen, color.Bold).Sprint("PASS")
	if !res.OK() {
		status = color.New(color.FgRed, color.Bold).Sprint("FAIL")
	}
	fmt.Fprintf(os.Stderr, "%s  total=%d matches=%d errors=%d\n", status, res.LinesTotal, res.Matches, res.Errors)
	if res.Stopped {
		color.New(color.FgYellow).Fprintln(os.Stderr, "stopped at first error")
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  line %d  %-22s %s\n", f.Line, f.Kind, f.Error)
	}
}
