package cli

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

var errInterrupted = errors.New("interrupted")

// requestDoneMsg carries the outcome of the background request.
type requestDoneMsg struct {
	err error
}

// spinnerModel shows a spinner while one request runs.
type spinnerModel struct {
	spinner  spinner.Model
	label    string
	run      func(context.Context) error
	ctx      context.Context
	cancel   context.CancelFunc
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newSpinnerModel(ctx context.Context, label string, run func(context.Context) error) spinnerModel {
	ctx, cancel := context.WithCancel(ctx)
	return spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		label:   label,
		run:     run,
		ctx:     ctx,
		cancel:  cancel,
		theme:   defaultTheme,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m spinnerModel) start() tea.Cmd {
	return func() tea.Msg {
		return requestDoneMsg{err: m.run(m.ctx)}
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}
	case requestDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() tea.View {
	if m.done || m.quitting {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s\n", m.theme.statusStyle().Render(m.spinner.View()), m.label))
}

// withSpinner runs fn, showing a spinner when stdout is a terminal.
func withSpinner(ctx context.Context, label string, fn func(context.Context) error) error {
	if !interactive() {
		return fn(ctx)
	}

	model := newSpinnerModel(ctx, label, fn)
	defer model.cancel()

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("spinner UI error: %w", err)
	}
	if m, ok := final.(spinnerModel); ok {
		if m.quitting {
			return errInterrupted
		}
		return m.err
	}
	return nil
}
