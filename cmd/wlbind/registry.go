package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"wlbind/internal/driver"
	"wlbind/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry [flags] [corpus-dir]",
	Short: "Show interface owners and document aliases of a corpus",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegistry,
}

func init() {
	registryCmd.Flags().Bool("documents", false, "also list documents with their alias and imports")
	registryCmd.Flags().String("interface", "", "only show owners of interfaces with this prefix")
	addCorpusFlags(registryCmd)
}

func runRegistry(cmd *cobra.Command, args []string) error {
	withDocs, err := cmd.Flags().GetBool("documents")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get documents flag: %w", err))
	}
	prefix, err := cmd.Flags().GetString("interface")
	if err != nil {
		return finish(cmd, fmt.Errorf("failed to get interface flag: %w", err))
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
	if res.Registry == nil {
		// валидация остановила пайплайн до реестра
		return finish(cmd, reportFailure(cmd, res))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ownersTable(res.Registry, prefix, color))
	if withDocs {
		fmt.Fprintln(out)
		fmt.Fprintln(out, documentsTable(res.Registry, color))
	}
	writeTimings(cmd, res)
	if res.Bag.HasErrors() {
		return finish(cmd, reportFailure(cmd, res))
	}
	return nil
}

func newTable(color bool, headers ...string) *table.Table {
	cell := lipgloss.NewStyle().Padding(0, 1)
	border := lipgloss.NewStyle()
	if color {
		border = border.Foreground(lipgloss.Color("8"))
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(headers...).
		StyleFunc(func(_, _ int) lipgloss.Style { return cell })
}

// ownersTable lists every interface name with all of its owners; a name with
// more than one owner is where the resolution cascade has to pick.
func ownersTable(reg *registry.Registry, prefix string, color bool) string {
	t := newTable(color, "Interface", "Protocol", "Alias", "Document", "Import path")
	for _, name := range reg.Names() {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		owners := reg.Owners(name)
		for i, o := range owners {
			label := name
			if i > 0 {
				label = "  ·"
			}
			alias := o.Alias
			if root, ok := reg.RootOwner(name); ok && root.Document == o.Document {
				alias += " (root)"
			}
			t.Row(label, o.Protocol, alias, o.Document, o.ImportPath)
		}
	}
	return t.String()
}

func documentsTable(reg *registry.Registry, color bool) string {
	t := newTable(color, "Document", "Protocol", "Module", "Alias", "Imports")
	for _, meta := range reg.Documents() {
		alias := meta.Alias
		if meta.Root {
			alias += " (root)"
		}
		t.Row(meta.Document, meta.Protocol, meta.Module, alias, strings.Join(meta.Imports, ", "))
	}
	return t.String()
}
