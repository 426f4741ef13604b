package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wlbind/internal/diag"
	"wlbind/internal/diagfmt"
	"wlbind/internal/driver"
	"wlbind/internal/version"
)

type diagOutput struct {
	format    string
	pathMode  diagfmt.PathMode
	withNotes bool
	color     bool
}

// writeDiagnostics prints the bag of res in the requested format. Timing
// reports are printed separately by writeTimings.
func writeDiagnostics(w io.Writer, res *driver.Result, out diagOutput) error {
	bag := res.Bag
	if out.format != "json" {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Code != diag.ObsTimings })
	}

	switch out.format {
	case "pretty":
		diagfmt.Pretty(w, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     out.color,
			Context:   1,
			PathMode:  out.pathMode,
			ShowNotes: out.withNotes,
			ShowWhere: true,
		})
	case "short":
		if s := diag.FormatShortDiagnostics(bag.Items(), res.FileSet, out.withNotes); s != "" {
			fmt.Fprintln(w, s)
		}
	case "json":
		return diagfmt.JSON(w, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions:  true,
			PathMode:          out.pathMode,
			IncludeNotes:      out.withNotes,
			IncludeCandidates: true,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "wlbind",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown format: %s", out.format)
	}
	return nil
}

// writeTimings prints the timer summary to stderr when --timings is set.
func writeTimings(cmd *cobra.Command, res *driver.Result) {
	if res == nil || res.Timing == nil {
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), res.Timing.String())
	if res.CacheHit {
		fmt.Fprintln(cmd.ErrOrStderr(), "  (compiled IR loaded from cache)")
	}
}

// reportFailure prints the diagnostics of a failed compilation to stderr.
func reportFailure(cmd *cobra.Command, res *driver.Result) error {
	color, err := colorEnabled(cmd, os.Stderr)
	if err != nil {
		return err
	}
	res.Bag.Sort()
	if err := writeDiagnostics(cmd.ErrOrStderr(), res, diagOutput{format: "pretty", color: color}); err != nil {
		return err
	}
	return errDiagnostics
}
