package ui

import (
	"strings"
	"testing"

	"nuanceur/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	files := []string{"a.toml", "b.toml"}
	m := NewProgressModel("building", files, nil).(*progressModel)

	for _, ev := range []pipeline.Event{
		{File: "a.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking},
		{File: "a.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusDone},
		{File: "a.toml", Stage: pipeline.StageBuild, Status: pipeline.StatusCached},
		{File: "a.toml", Stage: pipeline.StageEmit, Status: pipeline.StatusDone},
		{File: "b.toml", Stage: pipeline.StageBuild, Status: pipeline.StatusError},
		{File: "unknown.toml", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking},
	} {
		m.Update(eventMsg(ev))
	}

	finished, failed, cached := m.counts()
	if finished != 2 || failed != 1 || cached != 1 {
		t.Fatalf("counts = %d finished, %d failed, %d cached", finished, failed, cached)
	}
	if m.percent() != 1 {
		t.Fatalf("percent = %v", m.percent())
	}
	view := m.View()
	for _, want := range []string{"2/2", "1 cached", "1 failed", "a.toml", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}

	_, cmd := m.Update(doneMsg{})
	if cmd == nil || !m.done {
		t.Fatalf("doneMsg should quit")
	}
}

func TestProgressFromStageIsMonotonic(t *testing.T) {
	prev := -1.0
	for _, s := range pipeline.Stages {
		p := progressFromStage(s)
		if p <= prev || p >= 1 {
			t.Fatalf("stage %s progress %v not increasing below 1", s, p)
		}
		prev = p
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("shaders/very/long/name.toml", 12); got != "shaders/v..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 12); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
