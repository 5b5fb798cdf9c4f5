package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"husk/internal/diag"
	"husk/internal/source"
)

func oneDiagnostic(path, content string, start, end uint32, code diag.Code, msg string) (*diag.Bag, *source.FileSet, source.FileID) {
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(code, source.Span{File: id, Start: start, End: end}, msg))
	return bag, fs, id
}

func TestPathModes(t *testing.T) {
	bag, fs, _ := oneDiagnostic("/home/user/project/src/main.hk", "fn g() -> i32 { true }\n", 16, 20, diag.InferTypeMismatch, "expected `i32`, found `bool`")
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/main.hk:1:17"},
		{PathModeRelative, "src/main.hk:1:17"},
		{PathModeBasename, "main.hk:1:17"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode}); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, want := range []string{tt.want, "ERROR", "TY6001", "expected `i32`"} {
				if !strings.Contains(out, want) {
					t.Errorf("output lacks %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestCaretUnderline(t *testing.T) {
	bag, fs, _ := oneDiagnostic("main.hk", "fn g() -> i32 { true }\n", 16, 20, diag.InferTypeMismatch, "mismatch")
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	if lines[1] != "1 | fn g() -> i32 { true }" {
		t.Fatalf("source line = %q", lines[1])
	}
	if want := "  | " + strings.Repeat(" ", 16) + "^~~~"; lines[2] != want {
		t.Fatalf("caret line = %q, want %q", lines[2], want)
	}
}

func TestCaretCountsDisplayCells(t *testing.T) {
	// "世界" takes four cells but six bytes
	src := "let s = \"世界\"; x\n"
	off := uint32(strings.Index(src, "x"))
	lead, marker := underline(src[:len(src)-1], source.LineCol{Line: 1, Col: off + 1}, source.LineCol{Line: 1, Col: off + 2})
	if lead != 16 || marker != "^" {
		t.Fatalf("lead = %d marker = %q", lead, marker)
	}
}

func TestNotesAndMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.hk", []byte("fn f(x: i32) { x = 1; }\n"))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.ContractMutatePureParameter, source.Span{File: id, Start: 15, End: 16}, "cannot mutate `x`")
	bag.Add(d.WithNote(source.Span{File: id, Start: 5, End: 6}, "`x` is a pure parameter"))
	bag.Add(diag.NewError(diag.ContractAssignNotPlace, source.Span{File: id, Start: 15, End: 20}, "second"))

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "note: main.hk:1:6: `x` is a pure parameter") {
		t.Fatalf("note missing:\n%s", out)
	}
	if strings.Contains(out, "second") || !strings.Contains(out, "... and 1 more") {
		t.Fatalf("max not applied:\n%s", out)
	}
}

func TestContextLines(t *testing.T) {
	bag, fs, _ := oneDiagnostic("main.hk", "a\nbb\ncc\ndd\n", 5, 7, diag.SynUnexpectedToken, "bad")
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"2 | bb", "3 | cc", "4 | dd"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "1 | a") {
		t.Errorf("too much context:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	bag, fs, _ := oneDiagnostic("main.hk", "fn g() -> i32 { true }\n", 16, 20, diag.InferTypeMismatch, "mismatch")
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Total != 1 {
		t.Fatalf("count = %d total = %d", out.Count, out.Total)
	}
	d := out.Diagnostics[0]
	if d.Code != "TY6001" || d.Severity != "ERROR" || d.Location.File != "main.hk" || d.Location.StartCol != 17 || d.Location.EndCol != 21 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestParsePathMode(t *testing.T) {
	if m, ok := ParsePathMode("relative"); !ok || m != PathModeRelative {
		t.Fatalf("relative = %v %v", m, ok)
	}
	if _, ok := ParsePathMode("nope"); ok {
		t.Fatalf("accepted an unknown mode")
	}
}
