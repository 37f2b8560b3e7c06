package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"nuanceur/internal/pipeline"
	"nuanceur/internal/ui"
)

type runOutcome struct {
	results []pipeline.Result
	err     error
}

// runWithUI runs the pipeline in the background and renders its events
// until it finishes. Quitting the view cancels the run.
func runWithUI(ctx context.Context, title string, req pipeline.Request) ([]pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	req.Sink = pipeline.ChannelSink{Ch: events}
	go func() {
		results, err := pipeline.Run(ctx, req)
		outcomeCh <- runOutcome{results: results, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, req.Files, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
