package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"

	"wlbind/internal/diag"
	"wlbind/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet(afero.NewMemMapFs())
	content := "<protocol name=\"seat\">\n" + argLine + "\n</protocol>\n"
	fileID := fs.AddVirtual("corpus/seat.xml", []byte(content))

	d := diag.NewError(diag.ResAmbiguousInterface, spanOf(t, fileID, content, "wl_seat"), "ambiguous interface reference")
	d.Where = diag.Coords{Protocol: "seat", Interface: "x_seat", Message: "get", Argument: "seat"}
	d.Candidates = []diag.Candidate{{Protocol: "c", Module: "c", ImportPath: "p/c", Source: "c.xml"}}
	bag := diag.NewBag(10)
	bag.Add(d)
	bag.Add(diag.New(diag.SevWarning, diag.ResEnumNotFound, source.Span{File: fileID}, "missing enum"))

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || output.Errors != 1 {
		t.Fatalf("count=%d errors=%d, want 2/1", output.Count, output.Errors)
	}

	got := output.Diagnostics[0]
	if got.Severity != "ERROR" || got.Code != "RES3002" {
		t.Errorf("severity/code = %s/%s", got.Severity, got.Code)
	}
	if got.Location.File != "seat.xml" {
		t.Errorf("file = %q, want seat.xml", got.Location.File)
	}
	if got.Location.StartLine != 2 || got.Location.StartCol != 43 {
		t.Errorf("position = %d:%d, want 2:43", got.Location.StartLine, got.Location.StartCol)
	}
	if got.Where == nil || got.Where.Argument != "seat" {
		t.Errorf("where = %+v", got.Where)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].ImportPath != "p/c" {
		t.Errorf("candidates = %+v", got.Candidates)
	}
	if output.Diagnostics[1].Where != nil {
		t.Errorf("zero coordinates should be omitted")
	}
}

func TestJSONMax(t *testing.T) {
	fs := source.NewFileSet(afero.NewMemMapFs())
	fileID := fs.AddVirtual("a.xml", []byte("<protocol/>"))
	bag := diag.NewBag(10)
	for range 3 {
		bag.Add(diag.NewError(diag.ValEmptyInterfaceSet, source.Span{File: fileID}, "empty"))
	}
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 || out.Errors != 3 {
		t.Errorf("count=%d errors=%d, want 2/3", out.Count, out.Errors)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Errorf("positions must be omitted without IncludePositions")
	}
}

func TestSarif(t *testing.T) {
	fs := source.NewFileSet(afero.NewMemMapFs())
	content := argLine + "\n"
	fileID := fs.AddVirtual("seat.xml", []byte(content))
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.ResUnresolvedInterface, spanOf(t, fileID, content, "wl_seat"), "unresolved").
		WithNote(source.Span{File: fileID}, "declared here"))

	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "wlbind", ToolVersion: "1.0", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log header: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "wlbind" || len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "RES3001" {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Results) != 1 {
		t.Fatalf("results = %d", len(run.Results))
	}
	res := run.Results[0]
	if res.Level != "error" || res.Locations[0].PhysicalLocation.Region.ByteLength != 7 {
		t.Errorf("result = %+v", res)
	}
	if len(res.RelatedLocations) != 1 || res.RelatedLocations[0].Message.Text != "declared here" {
		t.Errorf("related = %+v", res.RelatedLocations)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Error("execution with errors must not be successful")
	}
}
