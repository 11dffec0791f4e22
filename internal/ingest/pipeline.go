package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/expsdz/petroagent/internal/knowledge"
	"github.com/expsdz/petroagent/internal/log"
)

// DocStore is the storage surface the pipeline needs. knowledge.Store
// satisfies it.
type DocStore interface {
	AddBatch(ctx context.Context, docs []knowledge.Document) error
	Reset(ctx context.Context) error
}

// Result summarizes one ingestion run.
type Result struct {
	Files    int
	Failed   int
	Chunks   int
	Duration time.Duration
}

// Pipeline turns PDF files into embedded knowledge store chunks.
type Pipeline struct {
	store    DocStore
	splitter *Splitter
	loadPDF  func(path string) ([]Page, error)
	logger   log.Logger
}

// NewPipeline creates a Pipeline writing to store.
func NewPipeline(store DocStore, splitter *Splitter, logger log.Logger) *Pipeline {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultOverlap)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		store:    store,
		splitter: splitter,
		loadPDF:  ReadPDF,
		logger:   logger,
	}
}

// IngestDir rebuilds the collection from every *.pdf under dir. The
// collection is reset first so removed source files do not linger. Files
// that fail to parse are counted and skipped; the run only fails when no
// file could be ingested at all or the store itself errors.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (Result, error) {
	start := time.Now()

	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return Result{}, fmt.Errorf("listing PDFs in %q: %w", dir, err)
	}
	if len(paths) == 0 {
		return Result{Duration: time.Since(start)}, fmt.Errorf("no PDF files found in %q", dir)
	}

	if err := p.store.Reset(ctx); err != nil {
		return Result{}, fmt.Errorf("resetting collection: %w", err)
	}

	var res Result
	for _, path := range paths {
		chunks, err := p.ingestFile(ctx, path)
		if err != nil {
			p.logger.Warn("skipping PDF", "path", path, "error", err)
			res.Failed++
			continue
		}
		res.Files++
		res.Chunks += chunks
		p.logger.Info("ingested PDF", "path", path, "chunks", chunks)
	}
	res.Duration = time.Since(start)

	if res.Files == 0 {
		return res, fmt.Errorf("all %d PDF files failed to ingest", res.Failed)
	}
	return res, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) (int, error) {
	pages, err := p.loadPDF(path)
	if err != nil {
		return 0, err
	}

	source := filepath.Base(path)
	var docs []knowledge.Document
	for _, page := range pages {
		for _, chunk := range p.splitter.Split(page.Text) {
			docs = append(docs, knowledge.Document{
				ID:      uuid.NewString(),
				Content: chunk,
				Metadata: map[string]string{
					"source":      source,
					"page":        strconv.Itoa(page.Number),
					"source_type": knowledge.SourceTypePDF,
				},
			})
		}
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no extractable text in %q", path)
	}

	if err := p.store.AddBatch(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
