package source

import (
	"crypto/sha256"
	"fmt"
	"path"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/afero"
)

// FileSet manages the specification documents of one run and resolves byte
// offsets into line/column positions.
type FileSet struct {
	fs      afero.Fs
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates an empty FileSet reading documents from fsys.
// A nil fsys falls back to the host filesystem.
func NewFileSet(fsys afero.Fs) *FileSet {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileSet{
		fs:    fsys,
		files: make([]File, 0, 16),
		index: make(map[string]FileID),
	}
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = NormalizePath(dir)
}

// BaseDir returns the directory relative paths are reported against.
func (fileSet *FileSet) BaseDir() string {
	return fileSet.baseDir
}

// Fs returns the filesystem the set loads from.
func (fileSet *FileSet) Fs() afero.Fs {
	return fileSet.fs
}

// Len returns the number of files in the set.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(p string, content []byte, flags FileFlags) FileID {
	normalized := NormalizePath(p)
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	// всегда указываем на последнюю версию файла
	fileSet.index[normalized] = id
	return id
}

// Load reads a document from the set's filesystem, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(p string) (FileID, error) {
	content, err := afero.ReadFile(fileSet.fs, p)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(p, content, flags), nil
}

// AddVirtual adds an in-memory document with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil when it is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(p string) (FileID, bool) {
	id, ok := fileSet.index[NormalizePath(p)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// DisplayPath returns the file path relative to the base directory when the
// file lives under it.
func (fileSet *FileSet) DisplayPath(id FileID) string {
	f := fileSet.Get(id)
	if f == nil {
		return ""
	}
	if fileSet.baseDir == "" || fileSet.baseDir == "." {
		return f.Path
	}
	prefix := strings.TrimSuffix(fileSet.baseDir, "/") + "/"
	if rel, ok := strings.CutPrefix(f.Path, prefix); ok {
		return rel
	}
	return f.Path
}

// Digest hashes every file's path and content in FileID order.
func (fileSet *FileSet) Digest() [32]byte {
	h := sha256.New()
	for i := range fileSet.files {
		f := &fileSet.files[i]
		_, _ = h.Write([]byte(path.Clean(f.Path)))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(f.Hash[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if f == nil || lineNum == 0 {
		return ""
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	idx := int(lineNum) - 1

	var start uint32
	switch {
	case idx == 0:
		start = 0
	case idx-1 < len(f.LineIdx):
		start = f.LineIdx[idx-1] + 1
	default:
		return ""
	}
	end := lenContent
	if idx < len(f.LineIdx) {
		end = f.LineIdx[idx]
	}
	if start >= lenContent || start > end {
		return ""
	}
	return string(f.Content[start:end])
}
