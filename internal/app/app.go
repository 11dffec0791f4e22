// Package app wires the application together: genkit with the Ollama
// plugin, the vector knowledge store, the quota ledger, the translator
// and the assistant. Commands get a ready App and never construct
// components themselves.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/expsdz/petroagent/internal/chat"
	"github.com/expsdz/petroagent/internal/config"
	"github.com/expsdz/petroagent/internal/ingest"
	"github.com/expsdz/petroagent/internal/knowledge"
	"github.com/expsdz/petroagent/internal/log"
	"github.com/expsdz/petroagent/internal/quota"
	"github.com/expsdz/petroagent/internal/rag"
	"github.com/expsdz/petroagent/internal/scrape"
	"github.com/expsdz/petroagent/internal/translate"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Knowledge *knowledge.Store

	Ledger     *quota.Ledger
	Session    *quota.Session
	Pipeline   *rag.Pipeline
	Translator *translate.Translator
	Assistant  *chat.Assistant
}

// Setup creates and initializes the application.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	g, embedder, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	a.Embedder = embedder

	store, err := knowledge.NewStore(cfg.VectorDBPath, cfg.Collection,
		knowledge.NewEmbeddingFunc(embedder), logger)
	if err != nil {
		return nil, fmt.Errorf("opening knowledge store: %w", err)
	}
	a.Knowledge = store

	usersStore := quota.NewStore(cfg.UsersFile, logger)
	var quotaOpts []quota.Option
	if !cfg.LimitsEnabled {
		quotaOpts = append(quotaOpts, quota.WithLimitsDisabled())
	}
	a.Ledger = quota.NewLedger(usersStore, logger, quotaOpts...)
	a.Session = quota.NewSession(a.Ledger, cfg.CurrentUser)

	llm := rag.NewGenkitLLM(g, "ollama/"+cfg.ModelName)
	a.Pipeline = rag.NewPipeline(llm, store, logger, rag.WithTopK(cfg.TopK))

	trOpts := []translate.Option{
		translate.WithFallbackLanguage(cfg.Translation.DefaultLanguage),
	}
	if !cfg.Translation.Enabled {
		trOpts = append(trOpts, translate.Disabled())
	}
	a.Translator = translate.New(translate.LLM(llm), logger, trOpts...)

	a.Assistant = chat.New(a.Pipeline, a.Ledger, a.Translator, logger)
	return a, nil
}

// Close releases application resources. The knowledge store persists on
// every write and genkit holds no connections, so there is nothing to
// tear down yet; commands still defer Close so cleanup has a home.
func (a *App) Close() error {
	return nil
}

// Ingester returns a PDF ingestion pipeline bound to the knowledge store.
func (a *App) Ingester() *ingest.Pipeline {
	return ingest.NewPipeline(a.Knowledge, nil, a.Logger)
}

// Scraper returns a website scraper bound to the knowledge store,
// tuned from the scraper config section.
func (a *App) Scraper() *scrape.Scraper {
	sc := a.Config.Scraper
	return scrape.New(a.Knowledge, nil, a.Logger,
		scrape.WithMaxPages(sc.MaxPages),
		scrape.WithParallelism(sc.Parallelism),
		scrape.WithDelay(time.Duration(sc.DelayMS)*time.Millisecond),
		scrape.WithTimeout(time.Duration(sc.TimeoutMS)*time.Millisecond))
}

// provideGenkit initializes genkit with the Ollama plugin. Ollama needs
// explicit model registration, there is no auto-discovery.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, ai.Embedder, error) {
	ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
	g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
	if g == nil {
		return nil, nil, fmt.Errorf("initializing genkit with ollama at %q", cfg.OllamaHost)
	}

	ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
		Name: cfg.ModelName,
		Type: "chat",
	}, nil)
	ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)

	embedder := ollama.Embedder(g, cfg.OllamaHost)
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}

	logger.Info("initialized genkit",
		"model", cfg.ModelName, "embedder", cfg.EmbedderModel, "host", cfg.OllamaHost)
	return g, embedder, nil
}
