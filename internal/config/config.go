// Package config loads application configuration with multi-source
// priority: environment variables override the config file, which
// overrides built-in defaults. The config file lives in ~/.petroagent/
// or the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the local Ollama setup.
const (
	DefaultOllamaHost    = "http://localhost:11434"
	DefaultModelName     = "llama3.2"
	DefaultEmbedderModel = "nomic-embed-text"
	DefaultCollection    = "petroleum_docs"
	DefaultWebsiteURL    = "https://petrowiki.spe.org"
)

// ScraperConfig bounds website crawling.
type ScraperConfig struct {
	MaxPages    int `mapstructure:"max_pages"`
	Parallelism int `mapstructure:"parallelism"`
	DelayMS     int `mapstructure:"delay_ms"`
	TimeoutMS   int `mapstructure:"timeout_ms"`
}

// TranslationConfig controls multilingual question handling.
type TranslationConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DefaultLanguage string `mapstructure:"default_language"`
}

// Config stores application configuration.
type Config struct {
	// Ollama and model selection
	OllamaHost    string `mapstructure:"ollama_host"`
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Knowledge store
	VectorDBPath string `mapstructure:"vector_db_path"`
	Collection   string `mapstructure:"collection"`
	DocsDir      string `mapstructure:"docs_dir"`
	TopK         int    `mapstructure:"top_k"`

	// Quota accounting
	UsersFile     string `mapstructure:"users_file"`
	LimitsEnabled bool   `mapstructure:"limits_enabled"`
	CurrentUser   string `mapstructure:"current_user"`

	// Scraping
	WebsiteURL string        `mapstructure:"website_url"`
	Scraper    ScraperConfig `mapstructure:"scraper"`

	// Translation
	Translation TranslationConfig `mapstructure:"translation"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load loads configuration from ~/.petroagent/config.yaml, ./config.yaml
// and PETROAGENT_* environment variables, then validates it.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".petroagent")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return load(configDir)
}

func load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)

	v.SetEnvPrefix("PETROAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file just means defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("ollama_host", DefaultOllamaHost)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("vector_db_path", filepath.Join(configDir, "vectordb"))
	v.SetDefault("collection", DefaultCollection)
	v.SetDefault("docs_dir", "documents")
	v.SetDefault("top_k", 5)

	v.SetDefault("users_file", filepath.Join(configDir, "users.json"))
	v.SetDefault("limits_enabled", true)
	v.SetDefault("current_user", "")

	v.SetDefault("website_url", DefaultWebsiteURL)
	v.SetDefault("scraper.max_pages", 10)
	v.SetDefault("scraper.parallelism", 2)
	v.SetDefault("scraper.delay_ms", 1000)
	v.SetDefault("scraper.timeout_ms", 30000)

	v.SetDefault("translation.enabled", true)
	v.SetDefault("translation.default_language", "en")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}
