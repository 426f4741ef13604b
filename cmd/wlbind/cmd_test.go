package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"wlbind/internal/irfmt"
)

func newTestCommand(t *testing.T) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "wlbind"}
	root.PersistentFlags().String("color", "auto", "")
	root.PersistentFlags().Int("max-diagnostics", 100, "")
	root.PersistentFlags().Bool("timings", false, "")
	child := &cobra.Command{Use: "check", RunE: func(*cobra.Command, []string) error { return nil }}
	addCorpusFlags(child)
	root.AddCommand(child)
	return child
}

func TestLoadSettingsManifestAndOverrides(t *testing.T) {
	dir := t.TempDir()
	manifest := `[corpus]
root = "protocols"
[naming]
root_alias = "core"
[output]
import_base = "example.com/gen"
[build]
jobs = 3
cache = false
`
	if err := os.WriteFile(filepath.Join(dir, "wlbind.toml"), []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCommand(t)
	opts, m, err := loadSettings(cmd, []string{dir})
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if m.Path == "" {
		t.Fatalf("manifest not found under %s", dir)
	}
	if opts.Root != filepath.Clean(dir) {
		t.Errorf("Root = %q, want %q", opts.Root, dir)
	}
	if opts.Jobs != 3 || opts.ImportBase != "example.com/gen" || opts.Naming.RootAlias != "core" {
		t.Errorf("manifest values not applied: %+v", opts)
	}
	if opts.Cache != nil {
		t.Errorf("cache opened although [build] cache = false")
	}
	if opts.MaxDiagnostics != 100 {
		t.Errorf("MaxDiagnostics = %d, want 100", opts.MaxDiagnostics)
	}

	for name, value := range map[string]string{"jobs": "5", "root-alias": "base", "include": "stable/*"} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	opts, _, err = loadSettings(cmd, []string{dir})
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if opts.Jobs != 5 || opts.Naming.RootAlias != "base" {
		t.Errorf("flags did not override manifest: %+v", opts)
	}
	if len(opts.Include) != 1 || opts.Include[0] != "stable/*" {
		t.Errorf("Include = %v", opts.Include)
	}
	// не тронутые флаги оставляют значения манифеста
	if opts.ImportBase != "example.com/gen" {
		t.Errorf("ImportBase = %q", opts.ImportBase)
	}
}

func TestColorEnabled(t *testing.T) {
	tests := []struct {
		mode    string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"always", true, false},
		{"off", false, false},
		{"never", false, false},
		// nil file is never a terminal
		{"auto", false, false},
		{"sometimes", false, true},
	}
	for _, tt := range tests {
		cmd := newTestCommand(t)
		if err := cmd.Root().PersistentFlags().Set("color", tt.mode); err != nil {
			t.Fatal(err)
		}
		got, err := colorEnabled(cmd, nil)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.mode, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSelectDocuments(t *testing.T) {
	docs := []irfmt.Document{{Path: "wayland.xml"}, {Path: "stable/viewporter.xml"}, {Path: "staging/tearing.xml"}}
	got, err := selectDocuments(append([]irfmt.Document(nil), docs...), []string{"staging/tearing.xml", "wayland.xml"})
	if err != nil {
		t.Fatalf("selectDocuments: %v", err)
	}
	if len(got) != 2 || got[0].Path != "wayland.xml" || got[1].Path != "staging/tearing.xml" {
		t.Errorf("got %v", got)
	}

	// несколько неизвестных документов перечисляются в одном порядке
	for range 5 {
		_, err = selectDocuments(append([]irfmt.Document(nil), docs...), []string{"z.xml", "missing.xml", "a.xml"})
		if err == nil || err.Error() != "unknown documents: a.xml, missing.xml, z.xml" {
			t.Fatalf("err = %v, want sorted unknown documents", err)
		}
	}
}
