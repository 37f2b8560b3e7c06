package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "phase", "shader", "debug"} {
		l, err := ParseLevel(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Fatalf("round trip %q gave %q", name, l)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelAllows(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeShader, false},
		{LevelShader, ScopeShader, true},
		{LevelShader, ScopeStatement, false},
		{LevelError, ScopeShader, true},
		{LevelDebug, ScopeStatement, true},
	}
	for _, tt := range tests {
		if got := tt.level.Allows(tt.scope); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestSpansNestThroughContext(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, outer := Begin(ctx, ScopePass, "build")
	inner := func(ctx context.Context) {
		ctx, s := Begin(ctx, ScopeShader, "shader:a.toml")
		Point(ctx, ScopeStatement, "stmt", "mov", Attr{Key: "index", Value: "0"})
		s.Attr("statements", "1").End("ok")
	}
	inner(ctx)
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[1].ParentID != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", events[1].ParentID, outer.ID())
	}
	if events[2].Kind != KindPoint || events[2].ParentID != events[1].SpanID {
		t.Fatalf("point not parented to inner span: %+v", events[2])
	}
	end := events[3]
	if end.Kind != KindSpanEnd || end.Detail != "ok" || end.Attrs[0].Key != "statements" {
		t.Fatalf("unexpected end event: %+v", end)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence numbers not increasing at %d", i)
		}
	}
}

func TestBeginFiltersScope(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	next, s := Begin(ctx, ScopeShader, "filtered")
	if next != ctx || s.ID() != 0 {
		t.Fatalf("filtered span should be inert")
	}
	s.End("")
	if n := len(ring.Snapshot()); n != 0 {
		t.Fatalf("expected no events, got %d", n)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: name})
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "cde" {
		t.Fatalf("ring order = %q, want cde", got)
	}
}

func TestStreamTracerFormats(t *testing.T) {
	var text bytes.Buffer
	st := NewStreamTracer(&text, LevelPhase, FormatText)
	st.Emit(&Event{Kind: KindSpanBegin, Scope: ScopePass, Name: "build", Attrs: []Attr{{"jobs", "4"}}})
	st.Emit(&Event{Kind: KindPoint, Scope: ScopeShader, Name: "dropped"})
	out := text.String()
	if !strings.Contains(out, "> build jobs=4") || strings.Contains(out, "dropped") {
		t.Fatalf("unexpected text output: %q", out)
	}

	var js bytes.Buffer
	NewStreamTracer(&js, LevelDebug, FormatNDJSON).Emit(&Event{Kind: KindPoint, Scope: ScopeStatement, Name: "stmt", Detail: "add"})
	var decoded map[string]any
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid ndjson %q: %v", js.String(), err)
	}
	if decoded["scope"] != "statement" || decoded["detail"] != "add" {
		t.Fatalf("unexpected json: %v", decoded)
	}
}

func TestStreamTracerSilentAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	NewStreamTracer(&buf, LevelError, FormatText).Emit(&Event{Kind: KindPoint, Scope: ScopeDriver, Name: "x"})
	if buf.Len() != 0 {
		t.Fatalf("error level should not stream, got %q", buf.String())
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level should give Nop, got %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	tr.Emit(&Event{Kind: KindPoint, Scope: ScopePass, Name: "p"})
	if RingOf(tr) == nil || len(RingOf(tr).Snapshot()) != 1 || buf.Len() == 0 {
		t.Fatalf("both mode should stream and buffer")
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
