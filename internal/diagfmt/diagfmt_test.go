package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"rivet/internal/diag"
	"rivet/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	content := "let s = \"hi\";\nlet t = s;\nlet u = s;\n"
	fileID := fs.AddVirtual("main.rv", []byte(content))

	bag := diag.NewBag(10)
	// "s" в третьей строке: offset 33..34
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.OwnUseAfterMove,
		Message:  "use of moved value `s`",
		Primary:  source.Span{File: fileID, Start: 33, End: 34},
		Notes: []diag.Note{
			{Span: source.Span{File: fileID, Start: 22, End: 23}, Msg: "value moved here"},
		},
	})
	return bag, fs, fileID
}

func TestPrettyIncludesPositionAndCode(t *testing.T) {
	bag, fs, _ := sampleBag(t)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: true})
	out := sb.String()

	if !strings.Contains(out, "main.rv:3:9:") {
		t.Fatalf("missing position header:\n%s", out)
	}
	if !strings.Contains(out, "[OWN3004]") {
		t.Fatalf("missing code:\n%s", out)
	}
	if !strings.Contains(out, "use of moved value `s`") {
		t.Fatalf("missing message:\n%s", out)
	}
	if !strings.Contains(out, "let u = s;") {
		t.Fatalf("missing source snippet:\n%s", out)
	}
	if !strings.Contains(out, "value moved here") {
		t.Fatalf("missing note:\n%s", out)
	}
}

func TestPrettyCaretUnderSpan(t *testing.T) {
	bag, fs, _ := sampleBag(t)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})
	lines := strings.Split(sb.String(), "\n")

	var snippet, marker string
	for i, line := range lines {
		if strings.Contains(line, "let u = s;") && i+1 < len(lines) {
			snippet = line
			marker = lines[i+1]
		}
	}
	if snippet == "" {
		t.Fatalf("snippet line not found:\n%s", sb.String())
	}
	caretCol := strings.Index(marker, "^")
	wantCol := strings.Index(snippet, "s;")
	if caretCol != wantCol {
		t.Fatalf("caret at %d, want %d:\n%s\n%s", caretCol, wantCol, snippet, marker)
	}
}

func TestPrettyHidesNotesWhenDisabled(t *testing.T) {
	bag, fs, _ := sampleBag(t)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowNotes: false})
	if strings.Contains(sb.String(), "value moved here") {
		t.Fatalf("note should be hidden:\n%s", sb.String())
	}
}

func TestJSONRoundTrips(t *testing.T) {
	bag, fs, _ := sampleBag(t)

	var sb strings.Builder
	err := JSON(&sb, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true})
	if err != nil {
		t.Fatal(err)
	}

	var out DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diags = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "OWN3004" || d.Severity != "ERROR" {
		t.Fatalf("diag = %+v", d)
	}
	if d.Location.StartLine != 3 || d.Location.StartCol != 9 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "value moved here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestJSONRespectsMax(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.rv", []byte("let a = 1;\n"))
	bag := diag.NewBag(10)
	for i := 0; i < 3; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.OwnUseAfterMove,
			Message:  "m",
			Primary:  source.Span{File: fileID, Start: 4, End: 5},
		})
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
}
