// Package poppler rasterises PDF pages with poppler's pdftoppm tool.
package poppler

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Ensure Rasteriser implements the interface.
var _ driven.PageRasteriser = (*Rasteriser)(nil)

// toolName is the poppler binary used for rendering.
const toolName = "pdftoppm"

// pagePrefix names the files pdftoppm writes into the scratch directory.
const pagePrefix = "page"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Rasteriser renders PDF pages to PNG with pdftoppm and decodes them.
type Rasteriser struct {
	dpi      int
	binDir   string
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a rasteriser. binDir is the poppler bin directory, or empty
// to search PATH.
func New(dpi int, binDir string) *Rasteriser {
	return NewWithRunner(dpi, binDir, execRunner{})
}

// NewWithRunner creates a rasteriser with a custom command runner.
func NewWithRunner(dpi int, binDir string, runner CommandRunner) *Rasteriser {
	if dpi <= 0 {
		dpi = 220
	}
	return &Rasteriser{
		dpi:      dpi,
		binDir:   binDir,
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

// tool returns the pdftoppm path to execute.
func (r *Rasteriser) tool() string {
	if r.binDir == "" {
		return toolName
	}
	return filepath.Join(r.binDir, toolName)
}

// CheckAvailable verifies pdftoppm can be found.
func (r *Rasteriser) CheckAvailable() error {
	if _, err := r.lookPath(r.tool()); err != nil {
		return fmt.Errorf("%w: %s not found (%v)\n%s",
			domain.ErrExtractorUnavailable, r.tool(), err, InstallInstructions())
	}
	return nil
}

// Rasterise renders every page of path and calls fn in page order.
func (r *Rasteriser) Rasterise(ctx context.Context, path string, fn func(page int, img image.Image) error) error {
	scratch, err := os.MkdirTemp("", "foldrag-pdf-*")
	if err != nil {
		return fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	args := []string{"-r", strconv.Itoa(r.dpi), "-png", path, filepath.Join(scratch, pagePrefix)}
	if out, err := r.runner.Run(ctx, r.tool(), args...); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", toolName, err, msg)
		}
		return fmt.Errorf("%s: %w", toolName, err)
	}

	pages, err := listPages(scratch)
	if err != nil {
		return err
	}

	for _, p := range pages {
		img, err := decodePNG(p.path)
		if err != nil {
			return fmt.Errorf("decode page %d: %w", p.number, err)
		}
		if err := fn(p.number, img); err != nil {
			return err
		}
	}
	return nil
}

type renderedPage struct {
	number int
	path   string
}

// listPages finds page-N.png files (N zero-padded to the page count width)
// and orders them by page number.
func listPages(dir string) ([]renderedPage, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pagePrefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}

	pages := make([]renderedPage, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		num, err := strconv.Atoi(strings.TrimPrefix(base, pagePrefix+"-"))
		if err != nil {
			continue
		}
		pages = append(pages, renderedPage{number: num, path: m})
	}
	if len(pages) == 0 {
		return nil, errors.New("pdftoppm produced no pages")
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].number < pages[j].number })
	return pages, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// InstallInstructions returns platform-specific instructions for installing poppler.
func InstallInstructions() string {
	return `PDF support requires pdftoppm (part of poppler).

Install it with:
  macOS:   brew install poppler
  Ubuntu:  apt install poppler-utils
  Fedora:  dnf install poppler-utils
  Windows: download poppler and pass its bin directory with --poppler`
}
