// Package pipeline builds many shader manifests concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"nuanceur/internal/diag"
	"nuanceur/internal/irpack"
	"nuanceur/internal/manifest"
	"nuanceur/internal/observ"
	"nuanceur/internal/shader"
	"nuanceur/internal/trace"
)

// Request configures Run.
type Request struct {
	Files          []string
	Jobs           int           // <= 0 means GOMAXPROCS
	OutDir         string        // where <name>.ir dumps go; empty disables writing
	Cache          *irpack.Cache // nil disables the snapshot cache
	MaxDiagnostics int           // per shader; <= 0 means no limit
	Dump           shader.DumpOptions
	Sink           ProgressSink  // optional
	Timer          *observ.Timer // optional; receives per-stage totals
}

// Run builds every file in req.Files. Results come back in input order.
// Shader failures are recorded in each Result's bag and do not stop the
// run; the returned error is non-nil only when ctx is cancelled.
func Run(ctx context.Context, req Request) ([]Result, error) {
	ctx, span := trace.Begin(ctx, trace.ScopePass, "build")
	defer span.End("")

	results := make([]Result, len(req.Files))
	if len(req.Files) == 0 {
		return results, nil
	}
	if req.OutDir != "" {
		if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span.Attr("files", strconv.Itoa(len(req.Files))).Attr("jobs", strconv.Itoa(jobs))

	for _, path := range req.Files {
		emit(req.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = buildOne(gctx, &req, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	span.Attr("failed", strconv.Itoa(failed))
	return results, nil
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

// worker carries the per-shader state through the stages.
type worker struct {
	ctx  context.Context
	req  *Request
	res  *Result
	rep  diag.Reporter
	path string
}

// stage runs fn, reporting progress and timing. fn returns the status to
// report on success (normally StatusDone) and whether to continue.
func (w *worker) stage(s Stage, fn func() (Status, bool)) bool {
	emit(w.req.Sink, Event{File: w.path, Stage: s, Status: StatusWorking})
	start := time.Now()
	status, ok := fn()
	elapsed := time.Since(start)
	w.res.Timings.Set(s, elapsed)
	w.req.Timer.Add(string(s), elapsed)

	evt := Event{File: w.path, Stage: s, Status: status, Elapsed: elapsed}
	if !ok {
		evt.Status = StatusError
		evt.Err = firstError(w.res.Bag)
	}
	emit(w.req.Sink, evt)
	return ok
}

func firstError(bag *diag.Bag) error {
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			return d
		}
	}
	return errors.New("errors dropped by the diagnostic limit")
}

func buildOne(ctx context.Context, req *Request, path string) Result {
	ctx, span := trace.Begin(ctx, trace.ScopeShader, "shader:"+filepath.Base(path))
	res := Result{Path: path, Bag: diag.NewBag(req.MaxDiagnostics)}
	// one reporter per shader; repeats stay out of the diagnostic limit
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	w := &worker{ctx: ctx, req: req, res: &res, rep: rep, path: path}
	defer func() {
		status := "ok"
		if res.Failed() {
			status = "failed"
		}
		if res.Cached {
			span.Attr("cache", "hit")
		}
		span.End(status)
	}()

	var file *manifest.File
	if !w.stage(StageLoad, func() (Status, bool) {
		var ok bool
		file, ok = manifest.Load(path, w.rep)
		return StatusDone, ok
	}) {
		return res
	}
	res.Name = file.Name()
	key := irpack.Key(file.Source)

	if !w.stage(StageBuild, func() (Status, bool) {
		if b, hit := w.lookup(key); hit {
			res.Builder, res.Cached = b, true
			return StatusCached, true
		}
		b, ok := file.Build(w.rep)
		if ok {
			res.Builder = b
		}
		return StatusDone, ok
	}) {
		return res
	}

	if !w.stage(StageValidate, func() (Status, bool) {
		return StatusDone, w.validate(res.Builder)
	}) {
		return res
	}

	w.stage(StageEmit, func() (Status, bool) {
		return StatusDone, w.emitDump(key)
	})
	return res
}

// lookup restores a cached snapshot. Cache failures are warnings.
func (w *worker) lookup(key irpack.Digest) (*shader.Builder, bool) {
	p, hit, err := w.req.Cache.Get(key)
	if err == nil && hit {
		var b *shader.Builder
		if b, err = p.Builder(); err == nil {
			return b, true
		}
	}
	if err != nil {
		diag.ReportWarning(w.rep, diag.IOCache, diag.Pos{Path: w.path}, err.Error())
	}
	return nil, false
}

func (w *worker) validate(b *shader.Builder) bool {
	err := b.Validate()
	if err == nil {
		return true
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		code := diag.IRInvalid
		if shader.IsContractViolation(e) {
			code = diag.IRContract
		}
		diag.ReportError(w.rep, code, diag.Pos{Path: w.path}, e.Error())
	}
	return false
}

// emitDump renders the listing, stores it in the builder's source cache,
// writes it to OutDir and refreshes the snapshot cache.
func (w *worker) emitDump(key irpack.Digest) bool {
	b := w.res.Builder
	if w.traceStatements() {
		for i, st := range b.Statements() {
			trace.Point(w.ctx, trace.ScopeStatement, "stmt", shader.FormatStatement(&st),
				trace.Attr{Key: "index", Value: strconv.Itoa(i)})
		}
	}

	var sb strings.Builder
	if err := shader.Dump(&sb, b, w.req.Dump); err != nil {
		diag.ReportError(w.rep, diag.IOWriteFile, diag.Pos{Path: w.path}, err.Error())
		return false
	}
	b.SetSource(sb.String())

	if w.req.OutDir != "" {
		out := filepath.Join(w.req.OutDir, w.res.Name+".ir")
		if err := os.WriteFile(out, []byte(b.Source()), 0o644); err != nil {
			diag.ReportError(w.rep, diag.IOWriteFile, diag.Pos{Path: out}, err.Error())
			return false
		}
		w.res.Output = out
	}

	if !w.res.Cached && w.req.Cache != nil {
		if err := w.req.Cache.Put(key, irpack.NewPayload(w.res.Name, b)); err != nil {
			diag.ReportWarning(w.rep, diag.IOCache, diag.Pos{Path: w.path}, err.Error())
		}
	}
	return true
}

func (w *worker) traceStatements() bool {
	t := trace.FromContext(w.ctx)
	return t.Enabled() && t.Level().Allows(trace.ScopeStatement)
}
