package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/adapters/driving/tui/messages"
)

func TestApp_TracksSteps(t *testing.T) {
	app := NewApp("Ingest docs", nil)

	app.Update(messages.StepStarted{Step: "Extracting files", Total: 4})
	app.Update(messages.StepAdvanced{N: 1, Detail: "a.pdf"})
	app.Update(messages.StepAdvanced{N: 1, Detail: "b.csv"})

	assert.Equal(t, "Extracting files", app.Step())
	assert.InDelta(t, 0.5, app.Percent(), 1e-9)
	view := app.View()
	assert.Contains(t, view, "Ingest docs")
	assert.Contains(t, view, "Extracting files 2/4")
	assert.Contains(t, view, "b.csv")
	assert.Contains(t, view, "cancel")

	app.Update(messages.StepFinished{})

	assert.Empty(t, app.Step())
	assert.Equal(t, []string{"Extracting files (2/4)"}, app.Completed())
	assert.Contains(t, app.View(), "✓ Extracting files (2/4)")
}

func TestApp_PercentBounds(t *testing.T) {
	app := NewApp("x", nil)
	assert.Zero(t, app.Percent())

	app.Update(messages.StepStarted{Step: "Embedding chunks", Total: 1})
	app.Update(messages.StepAdvanced{N: 3})

	assert.InDelta(t, 1.0, app.Percent(), 1e-9)
}

func TestApp_CancelKey(t *testing.T) {
	calls := 0
	app := NewApp("x", func() { calls++ })

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, app.Cancelled())
	assert.Equal(t, 1, calls)
	assert.Contains(t, app.View(), "cancelling")
}

func TestApp_OtherKeysIgnored(t *testing.T) {
	app := NewApp("x", func() { t.Fatal("cancel should not be called") })

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Nil(t, cmd)
	assert.False(t, app.Cancelled())
}

func TestApp_RunFinishedQuits(t *testing.T) {
	app := NewApp("x", nil)

	_, cmd := app.Update(messages.RunFinished{Err: errors.New("ocr model down")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, app.Err(), "ocr model down")
	assert.Contains(t, app.View(), "✗ ocr model down")
}

func TestApp_WindowSize(t *testing.T) {
	app := NewApp("x", nil)

	app.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Equal(t, 26, app.bar.Width)

	app.Update(tea.WindowSizeMsg{Width: 200, Height: 10})
	assert.Equal(t, maxBarWidth, app.bar.Width)
}
