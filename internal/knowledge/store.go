// Package knowledge manages the petroleum document collection: an embedded
// chromem-go vector database holding chunked PDF and website content with
// cosine-similarity search.
package knowledge

import (
	"context"
	"fmt"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/expsdz/petroagent/internal/log"
)

// DefaultCollection is the name of the petroleum document collection.
const DefaultCollection = "petroleum_docs"

// Store wraps a chromem-go collection with embedding generation handled by
// the configured embedding function.
//
// Add and Search are safe for concurrent use. Reset swaps the underlying
// collection and must not run concurrently with other operations; it is
// only called by the offline ingestion path.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embed      chromem.EmbeddingFunc
	logger     log.Logger
}

// NewStore opens (or creates) a persistent collection under path.
func NewStore(path, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector database at %q: %w", path, err)
	}
	return newStore(db, collection, embed, logger)
}

// NewMemoryStore creates a non-persistent store. Tests use this.
func NewMemoryStore(collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	return newStore(chromem.NewDB(), collection, embed, logger)
}

func newStore(db *chromem.DB, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = log.NewNop()
	}

	c, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}

	return &Store{
		db:         db,
		collection: c,
		name:       collection,
		embed:      embed,
		logger:     logger,
	}, nil
}

// Add embeds and stores a single document.
func (s *Store) Add(ctx context.Context, doc Document) error {
	return s.AddBatch(ctx, []Document{doc})
}

// AddBatch embeds and stores documents, parallelizing embedding across
// CPUs. Documents with an existing ID are overwritten.
func (s *Store) AddBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	converted := make([]chromem.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document with empty ID")
		}
		converted = append(converted, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	if err := s.collection.AddDocuments(ctx, converted, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(docs), err)
	}

	s.logger.Debug("documents added", "count", len(docs), "total", s.collection.Count())
	return nil
}

// Search returns the documents most similar to query, ordered by descending
// similarity. The requested topK is clamped to the collection size; an
// empty collection yields no results and no error.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	n := s.collection.Count()
	if n == 0 {
		return nil, nil
	}
	topK := cfg.topK
	if topK > n {
		topK = n
	}

	hits, err := s.collection.Query(ctx, query, topK, cfg.filter, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", s.name, err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{
			Document: Document{
				ID:       h.ID,
				Content:  h.Content,
				Metadata: h.Metadata,
			},
			Similarity: h.Similarity,
		})
	}
	return results, nil
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops and recreates the collection. Ingestion runs this before a
// full re-index, matching the delete-then-rebuild lifecycle of the
// document pipeline.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection %q: %w", s.name, err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreating collection %q: %w", s.name, err)
	}
	s.collection = c
	s.logger.Debug("collection reset", "name", s.name)
	return nil
}
