package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode maps a flag value onto a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color          bool
	Context        int8 // строк контекста вокруг основной строки
	PathMode       PathMode
	Width          uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes      bool
	ShowCandidates bool
	ShowWhere      bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions  bool // добавить line/col
	PathMode          PathMode
	Max               int // обрезка вывода, не Bag
	IncludeNotes      bool
	IncludeCandidates bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
