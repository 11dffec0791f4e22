// Package scrape crawls petroleum engineering reference sites and feeds
// readable article text into the knowledge store. Crawling is restricted
// to the seed URL's domain and follows only links whose text mentions a
// domain term, so a run stays on topic and bounded.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"github.com/expsdz/petroagent/internal/ingest"
	"github.com/expsdz/petroagent/internal/keyword"
	"github.com/expsdz/petroagent/internal/knowledge"
	"github.com/expsdz/petroagent/internal/log"
)

const (
	// DefaultMaxPages bounds one crawl run.
	DefaultMaxPages = 10

	// DefaultParallelism is the number of in-flight requests per crawl.
	DefaultParallelism = 2

	// DefaultDelay spaces requests to the crawled domain so a run does
	// not hammer the site.
	DefaultDelay = time.Second

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	// minArticleRunes filters out boilerplate pages (cookie walls,
	// redirects) whose extracted text is too short to be useful.
	minArticleRunes = 200
)

// DocAdder is the storage surface the scraper needs. Unlike PDF
// ingestion, scraping appends to the collection without resetting it.
type DocAdder interface {
	AddBatch(ctx context.Context, docs []knowledge.Document) error
}

// Result summarizes one crawl.
type Result struct {
	Pages    int
	Chunks   int
	Skipped  int
	Duration time.Duration
}

// Scraper crawls a site and stores chunked article text.
type Scraper struct {
	store       DocAdder
	splitter    *ingest.Splitter
	maxPages    int
	parallelism int
	delay       time.Duration
	timeout     time.Duration
	relevant    func(text string) bool
	logger      log.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithMaxPages caps the number of pages stored per crawl.
func WithMaxPages(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithParallelism sets the number of concurrent fetches per crawl.
func WithParallelism(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithDelay sets the wait between requests to the crawled domain. Zero
// disables the wait.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRelevanceFunc replaces the link filter. The default follows links
// whose anchor text or URL contains a domain vocabulary term.
func WithRelevanceFunc(fn func(text string) bool) Option {
	return func(s *Scraper) {
		if fn != nil {
			s.relevant = fn
		}
	}
}

// New creates a Scraper writing to store.
func New(store DocAdder, splitter *ingest.Splitter, logger log.Logger, opts ...Option) *Scraper {
	if splitter == nil {
		splitter = ingest.NewSplitter(ingest.DefaultChunkSize, ingest.DefaultOverlap)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Scraper{
		store:       store,
		splitter:    splitter,
		maxPages:    DefaultMaxPages,
		parallelism: DefaultParallelism,
		delay:       DefaultDelay,
		timeout:     DefaultTimeout,
		relevant:    func(text string) bool { return keyword.Count(text) > 0 },
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape crawls seedURL and same-domain pages linked from it, extracts
// readable text and stores it chunked. The seed page is always stored
// when readable; further pages are visited only through relevant links,
// up to the page cap.
func (s *Scraper) Scrape(ctx context.Context, seedURL string) (Result, error) {
	start := time.Now()

	seed, err := url.Parse(seedURL)
	if err != nil || seed.Hostname() == "" {
		return Result{}, fmt.Errorf("invalid seed URL %q", seedURL)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(seed.Hostname()),
		colly.MaxDepth(2),
		colly.Async(true),
	)
	c.SetRequestTimeout(s.timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.parallelism,
		Delay:       s.delay,
	}); err != nil {
		return Result{}, fmt.Errorf("configuring crawl limits: %w", err)
	}

	// Fetches run concurrently up to the parallelism limit, so callbacks
	// share crawl state under a mutex.
	var mu sync.Mutex
	var res Result
	var docs []knowledge.Document
	var crawlErr error

	c.OnRequest(func(r *colly.Request) {
		mu.Lock()
		full := res.Pages >= s.maxPages
		mu.Unlock()
		if ctx.Err() != nil || full {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		mu.Lock()
		defer mu.Unlock()
		if res.Pages >= s.maxPages {
			return
		}
		pageURL := r.Request.URL
		article, err := readability.FromReader(bytes.NewReader(r.Body), pageURL)
		if err != nil || len(strings.TrimSpace(article.TextContent)) < minArticleRunes {
			s.logger.Debug("skipping page", "url", pageURL.String(), "error", err)
			res.Skipped++
			return
		}

		chunks := s.splitter.Split(article.TextContent)
		for _, chunk := range chunks {
			docs = append(docs, knowledge.Document{
				ID:      uuid.NewString(),
				Content: chunk,
				Metadata: map[string]string{
					"source":      pageURL.String(),
					"title":       article.Title,
					"source_type": knowledge.SourceTypeWeb,
				},
			})
		}
		res.Pages++
		res.Chunks += len(chunks)
		s.logger.Info("scraped page", "url", pageURL.String(), "title", article.Title, "chunks", len(chunks))
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		if !s.relevant(e.Text + " " + link) {
			return
		}
		// Visit errors here are routine: off-domain, already seen, or
		// over the depth limit.
		_ = e.Request.Visit(link)
	})

	c.OnError(func(r *colly.Response, err error) {
		s.logger.Warn("request failed", "url", r.Request.URL.String(), "error", err)
		mu.Lock()
		crawlErr = err
		mu.Unlock()
	})

	if err := c.Visit(seed.String()); err != nil {
		return Result{Duration: time.Since(start)}, fmt.Errorf("visiting %q: %w", seed.String(), err)
	}
	c.Wait()

	res.Duration = time.Since(start)
	if res.Pages == 0 {
		if crawlErr != nil {
			return res, fmt.Errorf("crawl of %q stored nothing: %w", seedURL, crawlErr)
		}
		return res, fmt.Errorf("crawl of %q found no readable pages", seedURL)
	}

	if err := s.store.AddBatch(ctx, docs); err != nil {
		return res, fmt.Errorf("storing scraped chunks: %w", err)
	}
	return res, nil
}
