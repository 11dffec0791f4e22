package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		OllamaHost:    DefaultOllamaHost,
		ModelName:     DefaultModelName,
		EmbedderModel: DefaultEmbedderModel,
		VectorDBPath:  "/tmp/vectordb",
		Collection:    DefaultCollection,
		DocsDir:       "documents",
		TopK:          5,
		UsersFile:     "/tmp/users.json",
		LimitsEnabled: true,
		WebsiteURL:    DefaultWebsiteURL,
		Scraper: ScraperConfig{
			MaxPages:    10,
			Parallelism: 2,
			DelayMS:     1000,
			TimeoutMS:   30000,
		},
		Translation: TranslationConfig{Enabled: true, DefaultLanguage: "en"},
		LogLevel:    "info",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultOllamaHost, cfg.OllamaHost)
	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, DefaultEmbedderModel, cfg.EmbedderModel)
	assert.Equal(t, DefaultCollection, cfg.Collection)
	assert.Equal(t, 5, cfg.TopK)
	assert.True(t, cfg.LimitsEnabled)
	assert.True(t, cfg.Translation.Enabled)
	assert.Equal(t, 10, cfg.Scraper.MaxPages)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
model_name: qwen3
top_k: 3
limits_enabled: false
scraper:
  max_pages: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, "qwen3", cfg.ModelName)
	assert.Equal(t, 3, cfg.TopK)
	assert.False(t, cfg.LimitsEnabled)
	assert.Equal(t, 25, cfg.Scraper.MaxPages)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultOllamaHost, cfg.OllamaHost)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("model_name: from-file\n"), 0o644))
	t.Setenv("PETROAGENT_MODEL_NAME", "from-env")

	cfg, err := load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ModelName)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("top_k: 99\n"), 0o644))

	_, err := load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"nil ollama host", func(c *Config) { c.OllamaHost = "" }, ErrInvalidOllamaHost},
		{"bad ollama host", func(c *Config) { c.OllamaHost = "localhost:11434" }, ErrInvalidOllamaHost},
		{"empty model", func(c *Config) { c.ModelName = "" }, ErrInvalidModelName},
		{"empty embedder", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidEmbedderModel},
		{"empty collection", func(c *Config) { c.Collection = "" }, ErrInvalidCollection},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, ErrInvalidTopK},
		{"huge top_k", func(c *Config) { c.TopK = 50 }, ErrInvalidTopK},
		{"empty users file", func(c *Config) { c.UsersFile = "" }, ErrInvalidUsersFile},
		{"bad website", func(c *Config) { c.WebsiteURL = "::::" }, ErrInvalidWebsiteURL},
		{"zero max pages", func(c *Config) { c.Scraper.MaxPages = 0 }, ErrInvalidScraper},
		{"absurd parallelism", func(c *Config) { c.Scraper.Parallelism = 100 }, ErrInvalidScraper},
		{"unsupported language", func(c *Config) { c.Translation.DefaultLanguage = "ja" }, ErrInvalidLanguage},
		{"empty language allowed", func(c *Config) { c.Translation.DefaultLanguage = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}
