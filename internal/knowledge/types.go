package knowledge

// Source type values stored in document metadata under "source_type".
const (
	// SourceTypePDF marks chunks extracted from PDF documents.
	SourceTypePDF = "pdf"

	// SourceTypeWeb marks chunks scraped from the company website.
	SourceTypeWeb = "web"
)

// Document is a chunk of knowledge to be embedded and stored.
// Metadata must be map[string]string to comply with chromem-go.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Result is a single search hit with its similarity score.
type Result struct {
	Document   Document
	Similarity float32 // Cosine similarity (0-1), higher is more relevant
}

// SearchOption configures a search using the functional options pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK   int
	filter map[string]string
}

// WithTopK sets the maximum number of results. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithFilter restricts results to documents whose metadata matches
// key/value. Multiple filters combine with AND.
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: 5}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
