package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"texdiag/internal/runner"
	"texdiag/internal/ui"
)

type runOutcome struct {
	results []runner.Result
	err     error
}

func runWithUI(ctx context.Context, title string, logs []string, opts runner.RunOptions) ([]runner.Result, error) {
	events := make(chan runner.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = runner.ChannelSink{Ch: events}
		res, err := runner.Run(ctx, logs, optsCopy)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, logs, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// после ctrl+c модель больше не читает канал
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
