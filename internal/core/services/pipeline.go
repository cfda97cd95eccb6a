package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/core/ports/driving"
	"github.com/custodia-labs/foldrag/internal/extractors"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// PipelineDeps are the collaborators a Pipeline drives.
type PipelineDeps struct {
	Extractors *extractors.Registry
	Embedding  driven.EmbeddingService
	QA         driven.LLMService
	Index      driven.VectorIndex
	Metadata   driven.MetadataOpener
	Manifest   driven.ManifestStore
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithProgress reports extraction and embedding progress to r.
func WithProgress(r driven.ProgressReporter) PipelineOption {
	return func(p *Pipeline) {
		p.progress = r
	}
}

// WithRunIDs replaces the run identifier generator.
func WithRunIDs(next func() string) PipelineOption {
	return func(p *Pipeline) {
		p.newRunID = next
	}
}

// WithClock replaces the time source used for manifests and reports.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline ingests a folder into a vector index and answers questions
// against it. The index and records are replaced wholesale on each Ingest.
type Pipeline struct {
	cfg      domain.Config
	deps     PipelineDeps
	embedder *Embedder
	answerer *Answerer
	progress driven.ProgressReporter
	newRunID func() string
	now      func() time.Time

	// mu guards records and the index contents.
	mu      sync.RWMutex
	records []domain.ChunkRecord

	stateMu sync.RWMutex
	state   domain.PipelineState
}

// NewPipeline creates an orchestrator in the uninitialized state.
func NewPipeline(cfg domain.Config, deps PipelineDeps, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		deps:     deps,
		embedder: NewEmbedder(deps.Embedding, cfg.Timeouts.Embed),
		answerer: NewAnswerer(deps.QA, cfg.Timeouts.Answer),
		progress: driven.NopProgress{},
		newRunID: uuid.NewString,
		now:      time.Now,
		state:    domain.StateUninitialized,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current lifecycle state.
func (p *Pipeline) State() domain.PipelineState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s domain.PipelineState) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.state = s
}

// fail records the failed state and passes err through.
func (p *Pipeline) fail(err error) error {
	p.setState(domain.StateFailed)
	return err
}

// Records returns a copy of the current chunk records.
func (p *Pipeline) Records() []domain.ChunkRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]domain.ChunkRecord(nil), p.records...)
}

// Ingest walks folder, extracts and chunks every supported file, embeds the
// chunks and writes the index, metadata and manifest. Artifacts are only
// written once embedding has succeeded.
func (p *Pipeline) Ingest(ctx context.Context, folder string) (*domain.IngestReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	runID := p.newRunID()
	p.setState(domain.StateIngesting)
	logger.Section("Ingest " + folder)

	files, err := p.deps.Extractors.Discover(folder, p.cfg.WorkDir)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(files) == 0 {
		return nil, p.fail(fmt.Errorf("%w in %s (supported: %s)",
			domain.ErrNoSupportedFiles, folder, strings.Join(p.deps.Extractors.Extensions(), " ")))
	}
	logger.Info("found %d supported files", len(files))

	if err := p.deps.Extractors.CheckAvailable(files); err != nil {
		return nil, p.fail(err)
	}

	prev, err := p.deps.Manifest.Load()
	if err != nil {
		return nil, p.fail(fmt.Errorf("load manifest: %w", err))
	}
	next := prev.Clone()
	next.RunID = runID

	report := &domain.IngestReport{
		RunID:        runID,
		Folder:       folder,
		Files:        len(files),
		IndexPath:    p.cfg.IndexPath(),
		MetaPath:     p.cfg.MetaPath(),
		ManifestPath: p.deps.Manifest.Path(),
	}

	records, err := p.extractAll(ctx, files, prev, next, report)
	if err != nil {
		return nil, p.fail(err)
	}
	if len(records) == 0 {
		return nil, p.fail(fmt.Errorf("%w from %d files", domain.ErrNoTextExtracted, len(files)))
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	doneEmbed := logger.Timed("embedding")
	vectors, err := p.embedder.EmbedAll(ctx, texts, p.progress)
	doneEmbed()
	if err != nil {
		return nil, p.fail(err)
	}
	if err := p.deps.Index.Build(vectors); err != nil {
		return nil, p.fail(fmt.Errorf("build index: %w", err))
	}

	next.UpdatedAt = p.now()
	if err := p.persist(ctx, runID, records, next); err != nil {
		return nil, p.fail(err)
	}

	p.records = records
	p.setState(domain.StateReady)

	report.Chunks = len(records)
	report.Dimensions = p.deps.Index.Dimensions()
	report.Duration = p.now().Sub(start)
	logger.Info("indexed %d chunks from %d files in %s", report.Chunks, report.Files, report.Duration)
	return report, nil
}

// extractAll runs the extractor for each file in order. Files that fail to
// parse locally are skipped; external and cancellation errors abort.
func (p *Pipeline) extractAll(
	ctx context.Context,
	files []domain.SourceFile,
	prev, next *domain.Manifest,
	report *domain.IngestReport,
) ([]domain.ChunkRecord, error) {
	p.progress.Start("Extracting files", len(files))
	defer p.progress.Done()

	seen := make(map[string]bool, len(files))
	var records []domain.ChunkRecord
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seen[f.RelativePath] = true

		hash, err := hashFile(f.Path)
		if err != nil {
			logger.Warn("skipping %s: %v", f.RelativePath, err)
			report.Skipped = append(report.Skipped, f.RelativePath)
			p.progress.Advance(1, f.RelativePath)
			continue
		}
		report.Changes.Add(f.RelativePath, prev.Classify(f.RelativePath, hash))
		next.Record(f.RelativePath, hash)

		e, ok := p.deps.Extractors.ForExtension(f.Ext)
		if !ok {
			return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrExtractorUnavailable, f.Ext)
		}

		logger.Debug("extracting %s (%s)", f.RelativePath, f.Type)
		got, err := e.Extract(ctx, f)
		if err != nil {
			if isFatal(err) {
				return nil, fmt.Errorf("extract %s: %w", f.RelativePath, err)
			}
			logger.Warn("skipping %s: %v", f.RelativePath, err)
			report.Skipped = append(report.Skipped, f.RelativePath)
			p.progress.Advance(1, f.RelativePath)
			continue
		}

		for _, r := range got {
			if r.CitationTag == "" {
				r = r.WithTag()
			}
			records = append(records, r)
		}
		logger.Debug("%s: %d chunks", f.RelativePath, len(got))
		p.progress.Advance(1, f.RelativePath)
	}

	for _, rel := range prev.Paths() {
		if !seen[rel] {
			report.Changes.Add(rel, domain.ChangeDeleted)
		}
	}
	return records, nil
}

// isFatal reports errors that end the run instead of skipping a file.
func isFatal(err error) bool {
	return errors.Is(err, domain.ErrExternal) ||
		errors.Is(err, domain.ErrTimeout) ||
		errors.Is(err, domain.ErrConfig) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// persist writes the index, metadata and manifest into the store directory,
// creating it if needed.
func (p *Pipeline) persist(ctx context.Context, runID string, records []domain.ChunkRecord, m *domain.Manifest) error {
	if err := os.MkdirAll(p.cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	if err := p.deps.Index.Save(p.cfg.IndexPath()); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	meta, err := p.deps.Metadata(p.cfg.MetaPath(), true)
	if err != nil {
		return fmt.Errorf("open metadata: %w", err)
	}
	if err := meta.ReplaceAll(ctx, runID, records); err != nil {
		meta.Close()
		return fmt.Errorf("save metadata: %w", err)
	}
	if err := meta.Close(); err != nil {
		return fmt.Errorf("close metadata: %w", err)
	}

	if err := p.deps.Manifest.Save(m); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	logger.Info("saved %s, %s and %s", p.cfg.IndexPath(), p.cfg.MetaPath(), p.deps.Manifest.Path())
	return nil
}

// Load reads the index and metadata saved by a previous Ingest.
func (p *Pipeline) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.setState(domain.StateLoading)

	if _, err := os.Stat(p.cfg.IndexPath()); err != nil {
		return p.fail(fmt.Errorf("%w: build the index first (missing %s)", domain.ErrNotIndexed, p.cfg.IndexPath()))
	}
	meta, err := p.deps.Metadata(p.cfg.MetaPath(), false)
	if err != nil {
		return p.fail(err)
	}
	defer meta.Close()

	if err := p.deps.Index.Load(p.cfg.IndexPath()); err != nil {
		return p.fail(fmt.Errorf("load index: %w", err))
	}
	records, err := meta.LoadAll(ctx)
	if err != nil {
		return p.fail(fmt.Errorf("load metadata: %w", err))
	}
	if len(records) != p.deps.Index.Len() {
		return p.fail(fmt.Errorf("%w: index has %d vectors but metadata has %d records",
			domain.ErrConfig, p.deps.Index.Len(), len(records)))
	}

	p.records = records
	p.setState(domain.StateReady)
	logger.Info("loaded %d records from %s", len(records), p.cfg.WorkDir)
	return nil
}

// Retrieve embeds question and returns up to k matching contexts.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedContext, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.retrieve(ctx, question, k)
}

// retrieve does the work of Retrieve; the caller holds mu.
func (p *Pipeline) retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedContext, error) {
	if p.State() != domain.StateReady {
		return nil, fmt.Errorf("%w: state is %s", domain.ErrNotReady, p.State())
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}

	vec, err := p.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, err
	}
	hits, err := p.deps.Index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	contexts := make([]domain.RetrievedContext, 0, len(hits))
	for _, h := range hits {
		if h.Index < 0 || h.Index >= len(p.records) {
			continue
		}
		contexts = append(contexts, domain.RetrievedContext{Record: p.records[h.Index], Score: h.Score})
	}
	return contexts, nil
}

// Query answers question from the top_k contexts. With no contexts the
// fallback answer is returned without calling the model.
func (p *Pipeline) Query(ctx context.Context, question string) (*domain.Answer, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	contexts, err := p.retrieve(ctx, question, p.cfg.TopK)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Question: question, Contexts: contexts}
	if len(contexts) == 0 {
		answer.Text = domain.FallbackAnswer
		answer.Fallback = true
		return answer, nil
	}

	records := make([]domain.ChunkRecord, len(contexts))
	for i, c := range contexts {
		records[i] = c.Record
	}
	logger.Debug("answering with %d contexts", len(records))

	text, err := p.answerer.Answer(ctx, question, records)
	if err != nil {
		return nil, err
	}
	answer.Text = text
	return answer, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
