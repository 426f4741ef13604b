package source

// FileID indexes a FileSet. IDs follow discovery order, so a corpus loaded
// twice gets the same IDs and cached spans stay valid.
type FileID uint32

// FileFlags records what Load had to normalize.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // из памяти (тесты), не с диска
	FileHadBOM                               // UTF-8 BOM был срезан
	FileNormalizedCRLF                       // \r\n заменены на \n, спаны считаются после замены
)

func (f FileFlags) Has(flag FileFlags) bool { return f&flag != 0 }

// File is one loaded protocol document.
type File struct {
	ID      FileID
	Path    string // slash path as loaded
	Content []byte
	LineIdx []uint32 // byte offset of every '\n'
	Hash    [32]byte // sha256 of Content after normalization
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}
