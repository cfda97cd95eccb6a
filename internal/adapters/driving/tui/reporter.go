package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Reporter forwards progress calls to a running program.
type Reporter struct {
	program *tea.Program
}

// Ensure Reporter implements the interface.
var _ driven.ProgressReporter = (*Reporter)(nil)

// Start implements driven.ProgressReporter.
func (r *Reporter) Start(step string, total int) {
	r.program.Send(messages.StepStarted{Step: step, Total: total})
}

// Advance implements driven.ProgressReporter.
func (r *Reporter) Advance(n int, detail string) {
	r.program.Send(messages.StepAdvanced{N: n, Detail: detail})
}

// Done implements driven.ProgressReporter.
func (r *Reporter) Done() {
	r.program.Send(messages.StepFinished{})
}

// Run shows a progress display titled title while work runs. The context
// passed to work is cancelled when the user presses the cancel key.
// Sends after the program exits are dropped by Bubbletea.
func Run(
	ctx context.Context,
	title string,
	work func(ctx context.Context, progress driven.ProgressReporter) error,
	opts ...tea.ProgramOption,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewApp(title, cancel), opts...)

	workErr := make(chan error, 1)
	go func() {
		err := work(ctx, &Reporter{program: program})
		workErr <- err
		program.Send(messages.RunFinished{Err: err})
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		return errors.Join(<-workErr, fmt.Errorf("progress display: %w", err))
	}
	return <-workErr
}
