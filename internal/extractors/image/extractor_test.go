package image

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/postprocessors/chunker"
)

// mockOCR is a test double for driven.OCRService.
type mockOCR struct {
	text  string
	err   error
	calls int
	seen  image.Rectangle
}

func (m *mockOCR) Recognise(_ context.Context, img image.Image) (string, error) {
	m.calls++
	m.seen = img.Bounds()
	return m.text, m.err
}

func writePNG(t *testing.T, root, name string, w, h int) domain.SourceFile {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	path := filepath.Join(root, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	sf, err := domain.NewSourceFile(root, path, domain.FileTypeImage)
	require.NoError(t, err)
	return sf
}

func TestExtractor_Metadata(t *testing.T) {
	e := New(&mockOCR{}, chunker.New())
	assert.Equal(t, domain.FileTypeImage, e.FileType())
	assert.Contains(t, e.Extensions(), ".webp")
	assert.Contains(t, e.Extensions(), ".tiff")
	assert.NoError(t, e.CheckAvailable())
	assert.ErrorIs(t, New(nil, chunker.New()).CheckAvailable(), domain.ErrConfig)
}

func TestExtract(t *testing.T) {
	ocr := &mockOCR{text: "Invoice 42\n\nTotal due"}
	e := New(ocr, chunker.New())
	sf := writePNG(t, t.TempDir(), "scan.png", 20, 10)

	records, err := e.Extract(context.Background(), sf)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, 20, ocr.seen.Dx())
	assert.Equal(t, "Invoice 42\n\nTotal due", records[0].Text)
	assert.Equal(t, "[file:scan.png c000]", records[0].CitationTag)
	assert.Equal(t, domain.FileTypeImage, records[0].FileType)
}

func TestExtract_OCRFailurePropagates(t *testing.T) {
	boom := errors.New("model down")
	e := New(&mockOCR{err: boom}, chunker.New())
	sf := writePNG(t, t.TempDir(), "scan.png", 4, 4)

	_, err := e.Extract(context.Background(), sf)
	assert.ErrorIs(t, err, boom)
}

func TestExtract_UndecodableImage(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bad.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))
	ocr := &mockOCR{}

	_, err := New(ocr, chunker.New()).Extract(context.Background(), domain.SourceFile{Path: path, RelativePath: "bad.jpg"})

	assert.Error(t, err)
	assert.Equal(t, 0, ocr.calls)
}
