package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler()}
}

func TestRun_ReturnsWorkResult(t *testing.T) {
	ran := false
	err := Run(context.Background(), "Ingest", func(_ context.Context, p driven.ProgressReporter) error {
		p.Start("Extracting files", 2)
		p.Advance(1, "a.txt")
		p.Advance(1, "b.txt")
		p.Done()
		ran = true
		return nil
	}, headless()...)

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRun_PropagatesWorkError(t *testing.T) {
	want := errors.New("embedding failed")

	err := Run(context.Background(), "Ingest", func(context.Context, driven.ProgressReporter) error {
		return want
	}, headless()...)

	assert.ErrorIs(t, err, want)
}

func TestRun_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, "Ingest", func(ctx context.Context, _ driven.ProgressReporter) error {
		return ctx.Err()
	}, headless()...)

	assert.ErrorIs(t, err, context.Canceled)
}
