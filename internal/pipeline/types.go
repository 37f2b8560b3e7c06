package pipeline

import (
	"time"

	"nuanceur/internal/diag"
	"nuanceur/internal/shader"
)

// Stage describes one step of building a shader.
type Stage string

const (
	StageLoad     Stage = "load"
	StageBuild    Stage = "build"
	StageValidate Stage = "validate"
	StageEmit     Stage = "emit"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageLoad, StageBuild, StageValidate, StageEmit}

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached" // build skipped, snapshot restored
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch != nil {
		s.Ch <- evt
	}
}

// Timings holds stage durations of one shader.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum totals the given stages, or every stage when none are named.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if len(stages) == 0 {
		stages = Stages
	}
	var total time.Duration
	for _, s := range stages {
		total += t.stages[s]
	}
	return total
}

// Result is the outcome of one manifest.
type Result struct {
	Path    string
	Name    string          // shader name; empty if loading failed
	Builder *shader.Builder // nil if loading or building failed
	Bag     *diag.Bag
	Cached  bool   // restored from the snapshot cache
	Output  string // written dump path, empty when not written
	Timings Timings
}

// Failed reports whether the shader produced any error diagnostic.
func (r *Result) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}
