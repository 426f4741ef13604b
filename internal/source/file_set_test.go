package source

import (
	"testing"

	"github.com/spf13/afero"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet(afero.NewMemMapFs())

	id1 := fs.Add("stable/xdg-shell.xml", []byte("<protocol/>"), 0)
	id2 := fs.Add("stable/xdg-shell.xml", []byte("<protocol name=\"x\"/>"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("stable/./xdg-shell.xml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "<protocol/>" {
		t.Fatalf("old content = %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatalf("expected nil for unknown file id")
	}
}

func TestFileSetLoadNormalizesContent(t *testing.T) {
	mem := afero.NewMemMapFs()
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	if err := afero.WriteFile(mem, "/corpus/wayland.xml", raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet(mem)
	id, err := fs.Load("/corpus/wayland.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if !f.Flags.Has(FileHadBOM) || !f.Flags.Has(FileNormalizedCRLF) {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}

	if _, err := fs.Load("/corpus/missing.xml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet(afero.NewMemMapFs())
	id := fs.AddVirtual("doc.xml", []byte("ab\ncde\n\nf"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{7, LineCol{3, 1}},
		{8, LineCol{4, 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet(nil)
	f := fs.Get(fs.AddVirtual("doc.xml", []byte("first\nsecond\n\nlast")))

	want := map[uint32]string{0: "", 1: "first", 2: "second", 3: "", 4: "last", 5: ""}
	for line, text := range want {
		if got := f.GetLine(line); got != text {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, text)
		}
	}
}

func TestDisplayPathAndDigest(t *testing.T) {
	a := NewFileSet(afero.NewMemMapFs())
	a.SetBaseDir("/corpus/")
	id := a.Add("/corpus/stable/viewporter.xml", []byte("x"), 0)
	outside := a.Add("/other/file.xml", []byte("y"), 0)

	if got := a.DisplayPath(id); got != "stable/viewporter.xml" {
		t.Fatalf("DisplayPath = %q", got)
	}
	if got := a.DisplayPath(outside); got != "/other/file.xml" {
		t.Fatalf("DisplayPath outside base = %q", got)
	}

	b := NewFileSet(afero.NewMemMapFs())
	b.Add("/corpus/stable/viewporter.xml", []byte("x"), 0)
	b.Add("/other/file.xml", []byte("y"), 0)
	if a.Digest() != b.Digest() {
		t.Fatalf("digest differs for identical sets")
	}
	b.Add("/other/file.xml", []byte("z"), 0)
	if a.Digest() == b.Digest() {
		t.Fatalf("digest must change when content changes")
	}
}

func TestSpanCover(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	if got := s.Cover(Span{File: 1, Start: 5, End: 12}); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := s.Cover(Span{File: 2, Start: 0, End: 100}); got != s {
		t.Fatalf("Cover across files must be a no-op, got %v", got)
	}
	if (Span{Start: 7, End: 3}).Len() != 0 {
		t.Fatalf("inverted span must have zero length")
	}
	if !(Span{}).IsZero() || s.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}
