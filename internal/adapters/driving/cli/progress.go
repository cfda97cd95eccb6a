package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// withProgress runs work with a live progress display when stdout is a
// terminal and verbose logging is off. Otherwise progress is written as
// plain lines to stderr.
func withProgress(cmd *cobra.Command, title string, work func(context.Context, driven.ProgressReporter) error) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	if isTerminal(out) && !logger.IsVerbose() {
		return tui.Run(ctx, title, work, tea.WithOutput(out))
	}
	return work(ctx, newTextProgress(cmd.ErrOrStderr()))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// textProgress writes one line when a step starts and one when it ends.
type textProgress struct {
	w     io.Writer
	step  string
	total int
	done  int
}

var _ driven.ProgressReporter = (*textProgress)(nil)

func newTextProgress(w io.Writer) *textProgress {
	return &textProgress{w: w}
}

func (p *textProgress) Start(step string, total int) {
	p.step, p.total, p.done = step, total, 0
	fmt.Fprintf(p.w, "%s (%d)...\n", step, total)
}

func (p *textProgress) Advance(n int, _ string) {
	p.done += n
}

func (p *textProgress) Done() {
	if p.step == "" {
		return
	}
	fmt.Fprintf(p.w, "%s: %d/%d done\n", p.step, p.done, p.total)
	p.step = ""
}
