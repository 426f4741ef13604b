package diagfmt

import (
	"path"
	"path/filepath"
	"strings"

	"wlbind/internal/source"
)

// autoMaxSegments: длиннее этого абсолютный путь сокращается до basename.
const autoMaxSegments = 4

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "-"
	}
	switch mode {
	case PathModeAbsolute:
		if path.IsAbs(f.Path) {
			return f.Path
		}
		if abs, err := filepath.Abs(filepath.FromSlash(f.Path)); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		return fs.DisplayPath(id)
	case PathModeBasename:
		return path.Base(f.Path)
	default:
		p := fs.DisplayPath(id)
		if path.IsAbs(p) && strings.Count(p, "/") > autoMaxSegments {
			return path.Base(p)
		}
		return p
	}
}
