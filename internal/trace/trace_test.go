package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeRegion) {
		t.Fatalf("phase level must stop at passes")
	}
	if !LevelDetail.ShouldEmit(ScopeRegion) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail level must stop at regions")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatalf("off must emit nothing")
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	root := Begin(tr, ScopePass, "infer", 0)
	child := Begin(tr, ScopeRegion, "region:f", root.ID())
	Begin(tr, ScopeNode, "expr", child.ID()).End("") // filtered out
	child.WithExtra("exprs", "3").End("")
	root.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if ev["kind"] != "end" || ev["scope"] != "region" {
		t.Fatalf("unexpected event %v", ev)
	}
	if extra, ok := ev["extra"].(map[string]any); !ok || extra["exprs"] != "3" {
		t.Fatalf("extra missing: %v", ev)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestContextPropagation(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := BeginCtx(ctx, ScopePass, "outer")
	_, inner := BeginCtx(ctx, ScopeRegion, "inner")
	inner.End("")
	outer.End("")

	snap := r.Snapshot()
	if snap[1].ParentID != outer.ID() {
		t.Fatalf("inner span must be parented to outer")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("missing tracer must be Nop")
	}
}

func TestRingOf(t *testing.T) {
	r := NewRingTracer(4, LevelPhase)
	if RingOf(r) != r {
		t.Fatalf("ring tracer is its own ring")
	}
	var buf bytes.Buffer
	m := NewMultiTracer(LevelPhase, NewStreamTracer(&buf, LevelPhase, FormatText), r)
	if RingOf(m) != r {
		t.Fatalf("multi tracer must expose its ring")
	}
	if RingOf(Nop) != nil || RingOf(NewStreamTracer(&buf, LevelPhase, FormatText)) != nil {
		t.Fatalf("tracers without a ring report one")
	}
}
