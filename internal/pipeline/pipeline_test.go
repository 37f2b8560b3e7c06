package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"nuanceur/internal/diag"
	"nuanceur/internal/irpack"
	"nuanceur/internal/observ"
	"nuanceur/internal/trace"
)

const copyShader = `
[shader]
name = "copy"

[[input]]
id = "pos"
type = "float4"
semantic = "position"

[[output]]
id = "out"
type = "float4"
semantic = "system_position"

[[statement]]
op = "mov"
dst = "out"
src = ["pos"]
line = 4
`

const brokenShader = `
[[temporary]]
id = "t"
type = "float4"

[[statement]]
op = "mov"
dst = "t"
src = ["nope"]
`

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, text := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return dir, paths
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) statuses(file string, stage Stage) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Status
	for _, e := range s.events {
		if e.File == file && e.Stage == stage {
			out = append(out, e.Status)
		}
	}
	return out
}

func TestRunBuildsAndReportsInInputOrder(t *testing.T) {
	dir, _ := writeFiles(t, map[string]string{"copy.toml": copyShader, "broken.toml": brokenShader})
	files := []string{
		filepath.Join(dir, "copy.toml"),
		filepath.Join(dir, "broken.toml"),
		filepath.Join(dir, "missing.toml"),
	}
	out := filepath.Join(dir, "out")
	sink := &recordingSink{}
	timer := observ.NewTimer()

	results, err := Run(context.Background(), Request{Files: files, Jobs: 2, OutDir: out, Sink: sink, Timer: timer})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Path != files[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Path, files[i])
		}
	}

	ok := results[0]
	if ok.Failed() || ok.Output != filepath.Join(out, "copy.ir") {
		t.Fatalf("copy should succeed: output=%q diags=%v", ok.Output, ok.Bag.Items())
	}
	data, err := os.ReadFile(ok.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "mov out0, in0") || ok.Builder.Source() != string(data) {
		t.Fatalf("unexpected dump:\n%s", data)
	}
	if !ok.Timings.Has(StageEmit) {
		t.Fatalf("emit stage not timed")
	}

	broken := results[1]
	if !broken.Failed() || broken.Builder != nil {
		t.Fatalf("broken manifest should fail without a builder")
	}
	if d := broken.Bag.Items()[0]; d.Code != diag.ManUnknownID {
		t.Fatalf("unexpected diagnostic %v", d)
	}
	if got := sink.statuses(files[1], StageBuild); len(got) != 2 || got[1] != StatusError {
		t.Fatalf("broken build statuses = %v", got)
	}
	if got := sink.statuses(files[1], StageValidate); len(got) != 0 {
		t.Fatalf("stages after a failure should not run: %v", got)
	}

	missing := results[2]
	if !missing.Failed() || missing.Bag.Items()[0].Code != diag.IOLoadFile {
		t.Fatalf("missing file should report IOLoadFile: %v", missing.Bag.Items())
	}
	if got := sink.statuses(files[2], StageLoad); len(got) != 3 || got[0] != StatusQueued || got[2] != StatusError {
		t.Fatalf("missing load statuses = %v", got)
	}

	if len(timer.Report().Phases) == 0 {
		t.Fatalf("timer received no stages")
	}
}

func TestRunFailsWhenErrorsExceedLimit(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"noisy.toml": `
bogus = 1

[[input]]
id = "a"
type = "nope"
semantic = "position"
`})
	sink := &recordingSink{}
	results, err := Run(context.Background(), Request{Files: files, MaxDiagnostics: 1, Sink: sink})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := results[0]
	if r.Bag.Len() != 1 || r.Bag.Dropped() != 1 {
		t.Fatalf("expected one kept and one dropped diagnostic: kept=%v dropped=%d", r.Bag.Items(), r.Bag.Dropped())
	}
	if r.Bag.Items()[0].Severity != diag.SevWarning {
		t.Fatalf("the kept diagnostic should be the unknown-key warning: %v", r.Bag.Items())
	}
	if !r.Failed() || r.Builder != nil {
		t.Fatalf("a shader whose build errors were dropped must still fail")
	}
	got := sink.statuses(files[0], StageBuild)
	if len(got) != 2 || got[1] != StatusError {
		t.Fatalf("build statuses = %v", got)
	}
}

func TestRunReportsRepeatedDiagnosticsOnce(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"twice.toml": `
[[temporary]]
id = "t"
type = "float4"

[[statement]]
op = "add"
dst = "t"
src = ["nope", "nope"]
`})
	results, err := Run(context.Background(), Request{Files: files})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	r := results[0]
	if !r.Failed() || r.Bag.Len() != 1 || r.Bag.Items()[0].Code != diag.ManUnknownID {
		t.Fatalf("expected a single unknown-id error, got %v", r.Bag.Items())
	}
}

func TestRunUsesCache(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"copy.toml": copyShader})
	cache, err := irpack.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	first, err := Run(context.Background(), Request{Files: files, Cache: cache})
	if err != nil || first[0].Failed() || first[0].Cached {
		t.Fatalf("first run: err=%v cached=%v diags=%v", err, first[0].Cached, first[0].Bag.Items())
	}

	sink := &recordingSink{}
	second, err := Run(context.Background(), Request{Files: files, Cache: cache, Sink: sink})
	if err != nil || second[0].Failed() || !second[0].Cached {
		t.Fatalf("second run should hit the cache: err=%v cached=%v", err, second[0].Cached)
	}
	if got := sink.statuses(files[0], StageBuild); got[len(got)-1] != StatusCached {
		t.Fatalf("build statuses = %v", got)
	}
	if first[0].Builder.Source() != second[0].Builder.Source() {
		t.Fatalf("cached build produced a different dump")
	}
}

func TestRunCancelled(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"copy.toml": copyShader})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Request{Files: files}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunTracesShaders(t *testing.T) {
	_, files := writeFiles(t, map[string]string{"copy.toml": copyShader})
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Run(ctx, Request{Files: files}); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanEnd {
			names = append(names, ev.Name+":"+ev.Detail)
		}
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"build:", "shader:copy.toml:", "stmt:line 4", "stmt:mov out0, in0"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("trace lacks %q: %s", want, joined)
		}
	}
}

func TestTimingsSum(t *testing.T) {
	var tm Timings
	tm.Set(StageLoad, 2)
	tm.Set(StageBuild, 3)
	if tm.Sum() != 5 || tm.Sum(StageBuild) != 3 || tm.Has(StageEmit) {
		t.Fatalf("unexpected timings %+v", tm)
	}
}
