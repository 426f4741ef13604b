package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"wlbind/internal/driver"
	"wlbind/internal/irfmt"
)

var irCmd = &cobra.Command{
	Use:   "ir [flags] [corpus-dir]",
	Short: "Compile a protocol corpus and dump its IR",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIR,
}

func init() {
	irCmd.Flags().String("format", "", "IR format (json|yaml|msgpack); defaults to [output].format")
	irCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	irCmd.Flags().StringSlice("document", nil, "only dump these document identities")
	addCorpusFlags(irCmd)
}

func runIR(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get format flag: %w", err))
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get output flag: %w", err))
	}
	only, err := cmd.Flags().GetStringSlice("document")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get document flag: %w", err))
	}

	opts, manifest, err := loadSettings(cmd, args)
	if err != nil {
		return finish(cmd, err)
	}
	if formatStr == "" {
		formatStr = manifest.Output.Format
	}
	format, err := irfmt.ParseFormat(formatStr)
	if err != nil {
		return finish(cmd, err)
	}

	res, err := driver.Compile(cmd.Context(), afero.NewOsFs(), opts)
	if errors.Is(err, driver.ErrAborted) {
		return finish(cmd, reportFailure(cmd, res))
	}
	if err != nil {
		return finish(cmd, err)
	}
	writeTimings(cmd, res)

	corpus := irfmt.Convert(irfmt.Input{
		Registry:    res.Registry,
		Documents:   res.Documents,
		Resolutions: res.Resolutions,
		Metas:       res.Metas,
		EmitOrder:   res.EmitOrder,
	})
	if len(only) > 0 {
		if corpus.Documents, err = selectDocuments(corpus.Documents, only); err != nil {
			return finish(cmd, err)
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return finish(cmd, err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "close %s: %v\n", output, closeErr)
			}
		}()
		w = f
	}
	return finish(cmd, irfmt.Write(w, corpus, format))
}

func selectDocuments(docs []irfmt.Document, ids []string) ([]irfmt.Document, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := docs[:0]
	for _, d := range docs {
		if want[d.Path] {
			out = append(out, d)
			delete(want, d.Path)
		}
	}
	if len(want) > 0 {
		missing := slices.Sorted(maps.Keys(want))
		return nil, fmt.Errorf("unknown documents: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
