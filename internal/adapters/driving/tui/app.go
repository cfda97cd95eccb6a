// Package tui renders pipeline progress in the terminal with Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui/styles"
)

// maxBarWidth caps the progress bar on wide terminals.
const maxBarWidth = 60

// App is the progress display model. It implements tea.Model.
type App struct {
	title  string
	cancel context.CancelFunc

	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    progress.Model
	help   help.Model

	step      string
	total     int
	done      int
	detail    string
	completed []string

	cancelled bool
	finished  bool
	err       error
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a progress display. cancel is called when the user presses
// the cancel key; it may be nil.
func NewApp(title string, cancel context.CancelFunc) *App {
	s := styles.DefaultStyles()
	return &App{
		title:  title,
		cancel: cancel,
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		bar: progress.New(
			progress.WithGradient(string(s.Theme().Primary), string(s.Theme().Secondary)),
			progress.WithWidth(maxBarWidth),
		),
		help: help.New(),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("foldrag - " + a.title)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.bar.Width = min(maxBarWidth, max(10, msg.Width-4))
		a.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Cancel) && !a.cancelled {
			a.cancelled = true
			if a.cancel != nil {
				a.cancel()
			}
		}

	case messages.StepStarted:
		a.step = msg.Step
		a.total = msg.Total
		a.done = 0
		a.detail = ""

	case messages.StepAdvanced:
		a.done += msg.N
		if msg.Detail != "" {
			a.detail = msg.Detail
		}

	case messages.StepFinished:
		if a.step != "" {
			a.completed = append(a.completed, fmt.Sprintf("%s (%d/%d)", a.step, a.done, a.total))
		}
		a.step = ""
		a.detail = ""

	case messages.RunFinished:
		a.finished = true
		a.err = msg.Err
		return a, tea.Quit
	}

	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render(a.title))
	b.WriteString("\n\n")

	for _, c := range a.completed {
		b.WriteString(a.styles.Success.Render("✓ " + c))
		b.WriteString("\n")
	}

	if a.step != "" {
		b.WriteString(a.styles.Step.Render(a.step))
		fmt.Fprintf(&b, " %d/%d\n", a.done, a.total)
		b.WriteString(a.bar.ViewAs(a.Percent()))
		b.WriteString("\n")
		if a.detail != "" {
			b.WriteString(a.styles.Detail.Render(a.detail))
			b.WriteString("\n")
		}
	}

	switch {
	case a.err != nil:
		b.WriteString(a.styles.Error.Render("✗ " + a.err.Error()))
		b.WriteString("\n")
	case a.cancelled && !a.finished:
		b.WriteString(a.styles.Detail.Render("cancelling..."))
		b.WriteString("\n")
	case !a.finished:
		b.WriteString("\n")
		b.WriteString(a.help.ShortHelpView(a.keymap.ShortHelp()))
		b.WriteString("\n")
	}

	return b.String()
}

// Percent returns the completed fraction of the current step.
func (a *App) Percent() float64 {
	if a.total <= 0 {
		return 0
	}
	return min(1, float64(a.done)/float64(a.total))
}

// Step returns the active step name, or "" between steps.
func (a *App) Step() string {
	return a.step
}

// Completed returns summaries of finished steps.
func (a *App) Completed() []string {
	return a.completed
}

// Cancelled reports whether the user asked to stop.
func (a *App) Cancelled() bool {
	return a.cancelled
}

// Err returns the error the run finished with.
func (a *App) Err() error {
	return a.err
}
