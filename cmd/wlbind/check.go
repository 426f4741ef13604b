package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"wlbind/internal/diag"
	"wlbind/internal/diagfmt"
	"wlbind/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [corpus-dir]",
	Short: "Compile a protocol corpus and report diagnostics",
	Long: `Compile every protocol document of a corpus and print the diagnostics.
Without an argument the corpus comes from the nearest wlbind.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().String("min-severity", "info", "lowest severity shown (info|warning|error)")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	addCorpusFlags(checkCmd)
}

// runCheck compiles the corpus and prints its diagnostics. It fails when
// any error diagnostic (or, with --warnings-as-errors, any warning) was
// reported.
func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get format flag: %w", err))
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get path-mode flag: %w", err))
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return finish(cmd, fmt.Errorf("unknown path mode: %s", pathModeStr))
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get with-notes flag: %w", err))
	}
	minSevStr, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get min-severity flag: %w", err))
	}
	minSev, err := diag.ParseSeverity(minSevStr)
	if err != nil {
		return finish(cmd, err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get warnings-as-errors flag: %w", err))
	}
	if minSev > diag.SevWarning && warningsAsErrors {
		return finish(cmd, fmt.Errorf("min-severity=error hides the warnings that warnings-as-errors checks"))
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get quiet flag: %w", err))
	}
	color, err := colorEnabled(cmd, os.Stdout)
	if err != nil {
		return finish(cmd, err)
	}

	opts, _, err := loadSettings(cmd, args)
	if err != nil {
		return finish(cmd, err)
	}

	res, err := driver.Compile(cmd.Context(), afero.NewOsFs(), opts)
	if err != nil && !errors.Is(err, driver.ErrAborted) {
		return finish(cmd, err)
	}

	// ObsTimings (info) всегда проходит: json его показывает
	res.Bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= minSev || d.Code == diag.ObsTimings })
	res.Bag.Sort()
	if err := writeDiagnostics(cmd.OutOrStdout(), res, diagOutput{
		format:    format,
		pathMode:  pathMode,
		withNotes: withNotes,
		color:     color,
	}); err != nil {
		return finish(cmd, err)
	}
	writeTimings(cmd, res)

	failed := res.Bag.HasErrors() || (warningsAsErrors && res.Bag.HasWarnings())
	if failed {
		return finish(cmd, errDiagnostics)
	}
	if !quiet && format == "pretty" {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d documents\n", len(res.Documents))
	}
	return nil
}
