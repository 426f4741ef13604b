package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelFiltersStream(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	pass := Begin(tr, ScopePass, "resolve", 0)
	doc := Begin(tr, ScopeDocument, "document:a.xml", pass.ID())
	doc.End("")
	pass.WithExtra("documents", "1").End("ok")

	out := buf.String()
	if strings.Contains(out, "document:a.xml") {
		t.Fatalf("document scope leaked at phase level:\n%s", out)
	}
	if strings.Count(out, "resolve") != 2 || !strings.Contains(out, "{documents=1}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRingKeepsEverythingAndWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelError)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopeElement, name, "", 0)
	}
	snap := ring.Snapshot()
	if ring.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ring.Len())
	}
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 || !strings.Contains(buf.String(), `"name":"d"`) {
		t.Fatalf("dump = %s", buf.String())
	}
}

func TestNewAndContext(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off tracer: %v %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDetail, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Ring(tr); !ok {
		t.Fatalf("both mode must expose its ring")
	}
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != tr {
		t.Fatalf("tracer lost in context")
	}
	span := Begin(tr, ScopePass, "load", 0)
	ctx = WithSpan(ctx, span)
	if ParentSpan(ctx) != span.ID() {
		t.Fatalf("parent span lost")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("bad level accepted")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}
