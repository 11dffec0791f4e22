package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidOllamaHost indicates the Ollama host is not a usable URL.
	ErrInvalidOllamaHost = errors.New("invalid ollama host")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is empty.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidCollection indicates the collection name is empty.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidTopK indicates top_k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidUsersFile indicates the users file path is empty.
	ErrInvalidUsersFile = errors.New("invalid users file path")

	// ErrInvalidWebsiteURL indicates the scrape target URL is unusable.
	ErrInvalidWebsiteURL = errors.New("invalid website URL")

	// ErrInvalidScraper indicates a scraper bound is out of range.
	ErrInvalidScraper = errors.New("invalid scraper configuration")

	// ErrInvalidLanguage indicates an unsupported default language.
	ErrInvalidLanguage = errors.New("invalid default language")
)

var supportedLanguages = map[string]bool{"en": true, "ar": true, "fr": true, "de": true}

// Validate checks configuration values. Returns sentinel errors usable
// with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if _, err := url.ParseRequestURI(c.OllamaHost); err != nil || !strings.HasPrefix(c.OllamaHost, "http") {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidOllamaHost, c.OllamaHost)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	if c.Collection == "" {
		return fmt.Errorf("%w: collection cannot be empty", ErrInvalidCollection)
	}
	if c.TopK < 1 || c.TopK > 20 {
		return fmt.Errorf("%w: must be between 1 and 20, got %d", ErrInvalidTopK, c.TopK)
	}

	if c.UsersFile == "" {
		return fmt.Errorf("%w: users_file cannot be empty", ErrInvalidUsersFile)
	}

	if u, err := url.Parse(c.WebsiteURL); err != nil || u.Hostname() == "" {
		return fmt.Errorf("%w: %q", ErrInvalidWebsiteURL, c.WebsiteURL)
	}

	if c.Scraper.MaxPages < 1 || c.Scraper.MaxPages > 1000 {
		return fmt.Errorf("%w: max_pages must be between 1 and 1000, got %d", ErrInvalidScraper, c.Scraper.MaxPages)
	}
	if c.Scraper.Parallelism < 1 || c.Scraper.Parallelism > 16 {
		return fmt.Errorf("%w: parallelism must be between 1 and 16, got %d", ErrInvalidScraper, c.Scraper.Parallelism)
	}
	if c.Scraper.DelayMS < 0 || c.Scraper.TimeoutMS < 1 {
		return fmt.Errorf("%w: delay_ms must be non-negative and timeout_ms positive", ErrInvalidScraper)
	}

	if c.Translation.DefaultLanguage != "" && !supportedLanguages[c.Translation.DefaultLanguage] {
		return fmt.Errorf("%w: %q is not one of en, ar, fr, de", ErrInvalidLanguage, c.Translation.DefaultLanguage)
	}

	return nil
}
