package project

import (
	"errors"
	"path"
	"strings"

	"wlbind/internal/source"
)

// ImportMeta is one resolved dependency of a document.
type ImportMeta struct {
	// Path is the identity of the imported document.
	Path  string
	Alias string
	Span  source.Span
}

// DocumentMeta describes one corpus document for graph building and caching.
type DocumentMeta struct {
	Path        string // идентичность документа: "stable/xdg-shell/xdg-shell.xml"
	ImportPath  string
	Protocol    string
	File        source.FileID
	Span        source.Span  // span элемента <protocol>
	Imports     []ImportMeta // разрешённые зависимости
	ContentHash Digest       // хеш содержимого файла (из FileSet)
	DocHash     Digest       // агрегированный хеш с учётом зависимостей
}

var (
	errEmptyPath    = errors.New("empty document path")
	errEscapingPath = errors.New("document path escapes corpus root")
)

// NormalizeDocPath turns a corpus-relative path into a document identity.
func NormalizeDocPath(rel string) (string, error) {
	p := source.NormalizePath(rel)
	p = strings.TrimPrefix(p, "./")
	switch {
	case p == "" || p == ".":
		return "", errEmptyPath
	case p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/"):
		return "", errEscapingPath
	}
	return p, nil
}

// ImportPathFor is the binding import path of a document identity.
func ImportPathFor(base, docPath string) string {
	rel := strings.TrimSuffix(docPath, path.Ext(docPath))
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return rel
	}
	return base + "/" + rel
}
