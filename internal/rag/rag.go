// Package rag implements the retrieval pipeline: rewrite a question into
// search-friendly technical phrasing, retrieve similar chunks from the
// knowledge store, and generate a grounded answer from the best matches.
package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/expsdz/petroagent/internal/knowledge"
	"github.com/expsdz/petroagent/internal/log"
)

// LLM produces a completion for a prompt. The production implementation
// wraps genkit; tests substitute a canned function.
type LLM func(ctx context.Context, prompt string) (string, error)

// NewGenkitLLM returns an LLM backed by a genkit model. modelName is the
// full genkit model name, e.g. "ollama/qwen3".
func NewGenkitLLM(g *genkit.Genkit, modelName string) LLM {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := genkit.Generate(ctx, g,
			ai.WithPrompt(prompt),
			ai.WithModelName(modelName),
		)
		if err != nil {
			return "", fmt.Errorf("generating: %w", err)
		}
		return resp.Text(), nil
	}
}

// VectorSearcher is the retrieval surface the pipeline needs.
// knowledge.Store satisfies it.
type VectorSearcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// SearchResult is one retrieved chunk with its provenance.
type SearchResult struct {
	Content        string
	Source         string
	Page           int
	RelevanceScore float32
}

// Answer is a generated response with the chunks that grounded it.
type Answer struct {
	Text    string
	Sources []SearchResult
}

const (
	// DefaultTopK is how many chunks one question retrieves.
	DefaultTopK = 5

	// answerContextSize is how many retrieved chunks feed the answer
	// prompt. More than this mostly adds noise for small local models.
	answerContextSize = 3

	// Fallback reply when retrieval finds nothing or generation fails.
	apology = "I apologize, but I could not find relevant information in the petroleum engineering materials to answer your question. Please try rephrasing it or ask about another topic."
)

const enhancePrompt = `You are a petroleum engineering expert. Rewrite the following question as a concise search query using precise technical terminology from petroleum engineering. Return only the rewritten query, nothing else.

Question: %s`

const answerPrompt = `You are a petroleum engineering assistant. Answer the question using only the reference material below. Be precise and technical but clear. If the material does not cover the question, say so briefly.

Reference material:
%s

Question: %s

Answer:`

// Pipeline wires query enhancement, vector search and answer generation.
type Pipeline struct {
	llm    LLM
	store  VectorSearcher
	topK   int
	logger log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTopK sets how many chunks a search retrieves.
func WithTopK(k int) Option {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(llm LLM, store VectorSearcher, logger log.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	p := &Pipeline{
		llm:    llm,
		store:  store,
		topK:   DefaultTopK,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enhance rewrites query into search-friendly technical phrasing. On any
// failure the original query is returned so retrieval still proceeds.
func (p *Pipeline) Enhance(ctx context.Context, query string) string {
	out, err := p.llm(ctx, fmt.Sprintf(enhancePrompt, query))
	if err != nil {
		p.logger.Debug("query enhancement failed", "error", err)
		return query
	}
	enhanced := strings.TrimSpace(out)
	if enhanced == "" {
		return query
	}
	p.logger.Debug("query enhanced", "original", query, "enhanced", enhanced)
	return enhanced
}

// Search enhances query and retrieves the most similar chunks. Retrieval
// failure yields a nil slice, not an error: the caller degrades to the
// apology answer rather than refusing the question.
func (p *Pipeline) Search(ctx context.Context, query string) []SearchResult {
	enhanced := p.Enhance(ctx, query)

	hits, err := p.store.Search(ctx, enhanced, knowledge.WithTopK(p.topK))
	if err != nil {
		p.logger.Warn("vector search failed", "query", enhanced, "error", err)
		return nil
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		page, _ := strconv.Atoi(hit.Document.Metadata["page"])
		results = append(results, SearchResult{
			Content:        hit.Document.Content,
			Source:         hit.Document.Metadata["source"],
			Page:           page,
			RelevanceScore: hit.Similarity,
		})
	}
	return results
}

// Generate produces an answer grounded in results. Empty results or a
// generation failure yield the apology text; the pipeline never errors
// out of answering.
func (p *Pipeline) Generate(ctx context.Context, question string, results []SearchResult) string {
	if len(results) == 0 {
		return apology
	}

	n := len(results)
	if n > answerContextSize {
		n = answerContextSize
	}
	var b strings.Builder
	for i, r := range results[:n] {
		fmt.Fprintf(&b, "[%d] (%s", i+1, r.Source)
		if r.Page > 0 {
			fmt.Fprintf(&b, ", page %d", r.Page)
		}
		fmt.Fprintf(&b, ")\n%s\n\n", r.Content)
	}

	out, err := p.llm(ctx, fmt.Sprintf(answerPrompt, b.String(), question))
	if err != nil {
		p.logger.Warn("answer generation failed", "error", err)
		return apology
	}
	answer := strings.TrimSpace(out)
	if answer == "" {
		return apology
	}
	return answer
}

// Ask runs the full pipeline for one question.
func (p *Pipeline) Ask(ctx context.Context, question string) Answer {
	results := p.Search(ctx, question)
	return Answer{
		Text:    p.Generate(ctx, question, results),
		Sources: results,
	}
}
