// Package app assembles the pipeline and its adapters from a domain.Config.
package app

import (
	"fmt"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/foldrag/internal/adapters/driven/manifest/jsonfile"
	"github.com/custodia-labs/foldrag/internal/adapters/driven/ocr/vision"
	"github.com/custodia-labs/foldrag/internal/adapters/driven/raster/poppler"
	"github.com/custodia-labs/foldrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/foldrag/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/core/services"
	"github.com/custodia-labs/foldrag/internal/extractors"
	csvextractor "github.com/custodia-labs/foldrag/internal/extractors/csv"
	imageextractor "github.com/custodia-labs/foldrag/internal/extractors/image"
	pdfextractor "github.com/custodia-labs/foldrag/internal/extractors/pdf"
	"github.com/custodia-labs/foldrag/internal/extractors/spreadsheet"
	"github.com/custodia-labs/foldrag/internal/extractors/text"
	"github.com/custodia-labs/foldrag/internal/logger"
	"github.com/custodia-labs/foldrag/internal/postprocessors/chunker"
)

// App is one fully wired pipeline.
type App struct {
	Config   domain.Config
	Pipeline *services.Pipeline
	Registry *extractors.Registry
	Manifest *jsonfile.Store
	AI       *ai.Services
}

// Option configures New.
type Option func(*options)

type options struct {
	progress driven.ProgressReporter
}

// WithProgress sends pipeline progress to r.
func WithProgress(r driven.ProgressReporter) Option {
	return func(o *options) {
		o.progress = r
	}
}

// New validates cfg and builds the model clients, extractors and stores.
func New(cfg domain.Config, opts ...Option) (*App, error) {
	o := options{progress: driven.NopProgress{}}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svcs, err := ai.NewServices(cfg)
	if err != nil {
		return nil, fmt.Errorf("create model clients: %w", err)
	}
	logger.Debug("models: ocr=%s qa=%s embed=%s",
		svcs.OCR.ModelName(), svcs.QA.ModelName(), svcs.Embed.ModelName())

	registry := NewRegistry(cfg, svcs.OCR)
	manifest := jsonfile.NewStore(cfg.ManifestPath())

	pipeline := services.NewPipeline(cfg, services.PipelineDeps{
		Extractors: registry,
		Embedding:  svcs.Embed,
		QA:         svcs.QA,
		Index:      flat.New(),
		Metadata:   sqlite.Open,
		Manifest:   manifest,
	}, services.WithProgress(o.progress))

	return &App{
		Config:   cfg,
		Pipeline: pipeline,
		Registry: registry,
		Manifest: manifest,
		AI:       svcs,
	}, nil
}

// NewRegistry registers every extractor, using ocrModel for images and
// rasterised PDF pages. With a nil ocrModel the PDF and image extractors
// stay registered but report themselves unavailable.
func NewRegistry(cfg domain.Config, ocrModel driven.LLMService) *extractors.Registry {
	c := chunker.New(chunker.WithChunkSize(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap))
	var ocr driven.OCRService
	if ocrModel != nil {
		ocr = vision.New(ocrModel, cfg.MaxOCRImageSide, cfg.Timeouts.OCR)
	}
	raster := poppler.New(cfg.DPI, cfg.PopplerPath)

	return extractors.NewRegistry(
		pdfextractor.New(raster, ocr, c),
		imageextractor.New(ocr, c),
		text.New(c),
		csvextractor.New(),
		spreadsheet.New(),
	)
}

// Close releases the model clients.
func (a *App) Close() error {
	return a.AI.Close()
}

// Extensions lists every file extension NewRegistry registers.
func Extensions(cfg domain.Config) []string {
	return NewRegistry(cfg, nil).Extensions()
}
