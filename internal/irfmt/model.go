package irfmt

// SchemaVersion is bumped whenever the shape below changes.
const SchemaVersion = 1

// Corpus is the serialized form of a compiled corpus. Field names are shared
// by every output format.
type Corpus struct {
	Schema    int        `json:"schema" yaml:"schema"`
	EmitOrder []string   `json:"emit_order" yaml:"emit_order"`
	Documents []Document `json:"documents" yaml:"documents"`
}

type Document struct {
	Path       string      `json:"path" yaml:"path"`
	ImportPath string      `json:"import_path" yaml:"import_path"`
	Protocol   string      `json:"protocol" yaml:"protocol"`
	Module     string      `json:"module" yaml:"module"`
	Alias      string      `json:"alias" yaml:"alias"`
	Root       bool        `json:"root,omitempty" yaml:"root,omitempty"`
	Hash       string      `json:"hash,omitempty" yaml:"hash,omitempty"`
	Imports    []Import    `json:"imports,omitempty" yaml:"imports,omitempty"`
	Copyright  string      `json:"copyright,omitempty" yaml:"copyright,omitempty"`
	Summary    string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	NullRun    int         `json:"null_run_length" yaml:"null_run_length"`
	TypeTable  []string    `json:"type_table" yaml:"type_table"`
	Interfaces []Interface `json:"interfaces" yaml:"interfaces"`
}

// Import is one document the bindings of a document must import.
type Import struct {
	Alias      string `json:"alias" yaml:"alias"`
	Document   string `json:"document" yaml:"document"`
	ImportPath string `json:"import_path" yaml:"import_path"`
	RelPath    string `json:"rel_path" yaml:"rel_path"`
}

type Interface struct {
	Name      string    `json:"name" yaml:"name"`
	ShortName string    `json:"short_name" yaml:"short_name"`
	Version   int       `json:"version" yaml:"version"`
	Summary   string    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Enums     []Enum    `json:"enums,omitempty" yaml:"enums,omitempty"`
	Requests  []Message `json:"requests,omitempty" yaml:"requests,omitempty"`
	Events    []Message `json:"events,omitempty" yaml:"events,omitempty"`
}

type Message struct {
	Name            string `json:"name" yaml:"name"`
	Destructor      bool   `json:"destructor,omitempty" yaml:"destructor,omitempty"`
	Since           int    `json:"since,omitempty" yaml:"since,omitempty"`
	DeprecatedSince int    `json:"deprecated_since,omitempty" yaml:"deprecated_since,omitempty"`
	Summary         string `json:"summary,omitempty" yaml:"summary,omitempty"`
	// TypeIndex is meaningful only when AllNull is false.
	TypeIndex int   `json:"type_index" yaml:"type_index"`
	AllNull   bool  `json:"all_null,omitempty" yaml:"all_null,omitempty"`
	Return    *Arg  `json:"return,omitempty" yaml:"return,omitempty"`
	Args      []Arg `json:"args,omitempty" yaml:"args,omitempty"`
}

type Arg struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"`
	Nullable bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Summary  string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Ref      *Ref     `json:"interface,omitempty" yaml:"interface,omitempty"`
	Enum     *EnumRef `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// Ref is a resolved interface reference.
type Ref struct {
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Target    string `json:"target" yaml:"target"`
}

type EnumRef struct {
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Name      string `json:"name" yaml:"name"`
	Bitfield  bool   `json:"bitfield,omitempty" yaml:"bitfield,omitempty"`
	Found     bool   `json:"found" yaml:"found"`
}

type Enum struct {
	Name     string  `json:"name" yaml:"name"`
	Bitfield bool    `json:"bitfield,omitempty" yaml:"bitfield,omitempty"`
	Since    int     `json:"since,omitempty" yaml:"since,omitempty"`
	Entries  []Entry `json:"entries" yaml:"entries"`
}

type Entry struct {
	Name    string `json:"name" yaml:"name"`
	Value   uint32 `json:"value" yaml:"value"`
	Since   int    `json:"since,omitempty" yaml:"since,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}
