package project

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Discover lists the document identities of every *.xml file below root,
// sorted. When include is non-empty, only identities matching one of the
// slash glob patterns are kept.
func Discover(fsys afero.Fs, root string, include []string) ([]string, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	for _, pat := range include {
		if _, err := path.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pat, err)
		}
	}

	var out []string
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".xml") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		id, err := NormalizeDocPath(rel)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if included(id, include) {
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

func included(id string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if ok, _ := path.Match(pat, id); ok {
			return true
		}
		// "stable/*" покрывает и вложенные каталоги
		if dir, ok := strings.CutSuffix(pat, "/*"); ok && strings.HasPrefix(id, dir+"/") {
			return true
		}
	}
	return false
}
