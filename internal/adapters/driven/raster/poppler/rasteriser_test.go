package poppler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/domain"
)

// mockRunner is a test double for CommandRunner. It writes one PNG per
// entry of widths into the output prefix, mimicking pdftoppm.
type mockRunner struct {
	widths []int
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	if m.err != nil {
		return m.output, m.err
	}
	prefix := args[len(args)-1]
	for i, w := range m.widths {
		path := fmt.Sprintf("%s-%02d.png", prefix, i+1)
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, image.NewGray(image.Rect(0, 0, w, 1))); err != nil {
			return nil, err
		}
		f.Close()
	}
	return nil, nil
}

func TestNew_Defaults(t *testing.T) {
	r := New(0, "")
	assert.Equal(t, 220, r.dpi)
	assert.Equal(t, "pdftoppm", r.tool())
	assert.Equal(t, filepath.Join("/opt/poppler/bin", "pdftoppm"), New(150, "/opt/poppler/bin").tool())
}

func TestCheckAvailable(t *testing.T) {
	r := NewWithRunner(220, "", &mockRunner{})

	r.lookPath = func(string) (string, error) { return "/usr/bin/pdftoppm", nil }
	assert.NoError(t, r.CheckAvailable())

	r.lookPath = func(string) (string, error) { return "", errors.New("executable file not found") }
	err := r.CheckAvailable()
	assert.ErrorIs(t, err, domain.ErrExtractorUnavailable)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), "brew install poppler")
}

func TestRasterise_PageOrder(t *testing.T) {
	// Twelve pages so that lexical and numeric order would differ without padding.
	widths := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	runner := &mockRunner{widths: widths}
	r := NewWithRunner(300, "", runner)

	var pages, seen []int
	err := r.Rasterise(context.Background(), "/docs/a.pdf", func(page int, img image.Image) error {
		pages = append(pages, page)
		seen = append(seen, img.Bounds().Dx())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, pages)
	assert.Equal(t, widths, seen)
	assert.Equal(t, "pdftoppm", runner.name)
	assert.Equal(t, []string{"-r", "300", "-png", "/docs/a.pdf"}, runner.args[:4])
}

func TestRasterise_CommandFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("exit status 1"), output: []byte("Syntax Error: broken xref\n")}
	r := NewWithRunner(220, "", runner)

	err := r.Rasterise(context.Background(), "/x.pdf", func(int, image.Image) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken xref")
}

func TestRasterise_NoPages(t *testing.T) {
	r := NewWithRunner(220, "", &mockRunner{})
	err := r.Rasterise(context.Background(), "/x.pdf", func(int, image.Image) error { return nil })
	assert.Error(t, err)
}

func TestRasterise_CallbackErrorStops(t *testing.T) {
	boom := errors.New("stop")
	r := NewWithRunner(220, "", &mockRunner{widths: []int{1, 2, 3}})

	calls := 0
	err := r.Rasterise(context.Background(), "/x.pdf", func(int, image.Image) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftoppm")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
