package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a process-wide monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

func nextSpanID() uint64 { return spanCounter.Add(1) }

// Span tracks one logical operation between Begin and End.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Begin starts a span with the tracer from ctx, parented to the span
// already in ctx. The returned context carries the new span.
// When the scope is filtered out, the span is inert and ctx is returned as is.
func Begin(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().Allows(scope) {
		return ctx, &Span{tracer: Nop, started: time.Now()}
	}
	now := time.Now()
	s := &Span{
		tracer:  t,
		id:      nextSpanID(),
		parent:  CurrentSpanID(ctx),
		scope:   scope,
		name:    name,
		started: now,
	}
	t.Emit(&Event{
		Time:     now,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     name,
	})
	return withSpanID(ctx, s.id), s
}

// End emits the closing event and returns the span duration.
// The duration is measured even for inert spans.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.started)
	if s.tracer == nil || !s.tracer.Enabled() {
		return dur
	}
	attrs := append(s.attrs, Attr{Key: "dur", Value: dur.String()})
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Attrs:    attrs,
	})
	return dur
}

// Attr annotates the end event.
func (s *Span) Attr(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	return s
}

// ID returns the span ID, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under the current span.
func Point(ctx context.Context, scope Scope, name, detail string, attrs ...Attr) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().Allows(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: CurrentSpanID(ctx),
		Name:     name,
		Detail:   detail,
		Attrs:    attrs,
	})
}
