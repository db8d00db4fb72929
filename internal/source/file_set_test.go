package source

import (
	"testing"
)

func TestAddVirtualAssignsSequentialIDs(t *testing.T) {
	fs := NewFileSet()
	a := fs.AddVirtual("a.rv", []byte("let x = 1;"))
	b := fs.AddVirtual("b.rv", []byte("let y = 2;"))
	if a == b {
		t.Fatalf("expected distinct file IDs, got %d and %d", a, b)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", fs.Len())
	}
	if fs.Get(a).Flags&FileVirtual == 0 {
		t.Fatalf("expected virtual flag on %q", fs.Get(a).Path)
	}
}

func TestResolveMultiline(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("m.rv", []byte("let a = 1;\nlet bb = 2;\n"))

	// "bb" начинается на строке 2, колонка 5
	span := Span{File: id, Start: 15, End: 17}
	start, end := fs.Resolve(span)
	if start.Line != 2 || start.Col != 5 {
		t.Fatalf("start = %d:%d, want 2:5", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 7 {
		t.Fatalf("end = %d:%d, want 2:7", end.Line, end.Col)
	}
}

func TestResolveFirstLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("f.rv", []byte("fn main() {}\n"))
	start, _ := fs.Resolve(Span{File: id, Start: 3, End: 7})
	if start.Line != 1 || start.Col != 4 {
		t.Fatalf("start = %d:%d, want 1:4", start.Line, start.Col)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("l.rv", []byte("one\ntwo\nthree"))
	f := fs.Get(id)
	for i, want := range []string{"one", "two", "three"} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Fatalf("line %d = %q, want %q", i+1, got, want)
		}
	}
	if got := f.GetLine(4); got != "" {
		t.Fatalf("line 4 = %q, want empty", got)
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	fs := NewFileSet()
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb")...)
	content, hadBOM := removeBOM(raw)
	if !hadBOM {
		t.Fatal("expected BOM to be stripped")
	}
	content, hadCRLF := normalizeCRLF(content)
	if !hadCRLF {
		t.Fatal("expected CRLF normalization")
	}
	id := fs.Add("c.rv", content, FileHadBOM|FileNormalizedCRLF)
	if got := string(fs.Get(id).Content); got != "a\nb" {
		t.Fatalf("content = %q, want %q", got, "a\nb")
	}
}
