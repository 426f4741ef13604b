package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"wlbind/internal/driver"
	"wlbind/internal/project"
)

// addCorpusFlags registers the flags shared by every command that compiles
// a corpus. They override the matching wlbind.toml settings.
func addCorpusFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("import-base", "", "import path prefix of generated bindings")
	cmd.Flags().StringSlice("include", nil, "document identity patterns to compile")
	cmd.Flags().String("root-prefix", "", "interface prefix of the root namespace")
	cmd.Flags().String("root-alias", "", "reserved alias of the root namespace")
	cmd.Flags().String("root-protocol", "", "protocol owning the root namespace")
	cmd.Flags().Bool("no-cache", false, "disable the compiled IR disk cache")
	cmd.Flags().String("cache-dir", "", "disk cache directory (default $XDG_CACHE_HOME/wlbind)")
}

// loadSettings merges the nearest manifest with command-line flags. The
// optional argument names the corpus directory and is also where the
// manifest lookup starts.
func loadSettings(cmd *cobra.Command, args []string) (driver.Options, project.Manifest, error) {
	fsys := afero.NewOsFs()
	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}

	manifest, found, err := project.LoadNearestManifest(fsys, startDir)
	if err != nil {
		return driver.Options{}, manifest, err
	}

	opts := driver.Options{
		ImportBase: manifest.Output.ImportBase,
		Include:    manifest.Corpus.Include,
		Jobs:       manifest.Build.Jobs,
	}
	opts.Naming.RootPrefix = manifest.Naming.RootPrefix
	opts.Naming.RootAlias = manifest.Naming.RootAlias
	opts.Naming.RootProtocol = manifest.Naming.RootProtocol

	switch {
	case len(args) > 0:
		opts.Root = filepath.Clean(args[0])
	case found:
		if opts.Root, err = manifest.CorpusRoot(); err != nil {
			return opts, manifest, fmt.Errorf("%s: %w", manifest.Path, err)
		}
	default:
		opts.Root = "."
	}

	flags := cmd.Flags()
	stringFlag := func(name string, dst *string) error {
		if !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*dst = v
		return nil
	}
	for name, dst := range map[string]*string{
		"import-base":   &opts.ImportBase,
		"root-prefix":   &opts.Naming.RootPrefix,
		"root-alias":    &opts.Naming.RootAlias,
		"root-protocol": &opts.Naming.RootProtocol,
	} {
		if err := stringFlag(name, dst); err != nil {
			return opts, manifest, err
		}
	}
	if flags.Changed("include") {
		if opts.Include, err = flags.GetStringSlice("include"); err != nil {
			return opts, manifest, fmt.Errorf("failed to get include flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, manifest, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}

	if opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return opts, manifest, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.EnableTimings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, manifest, fmt.Errorf("failed to get timings flag: %w", err)
	}

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return opts, manifest, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if manifest.Build.Cache && !noCache {
		opts.Cache = openCache(cmd)
	}
	return opts, manifest, nil
}

// openCache opens the disk cache; a cache that cannot be opened only costs
// a warning.
func openCache(cmd *cobra.Command) *driver.DiskCache {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err == nil && dir == "" {
		dir, err = driver.DefaultCacheDir("wlbind")
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		return nil
	}
	cache, err := driver.OpenDiskCache(afero.NewOsFs(), dir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		return nil
	}
	return cache
}
