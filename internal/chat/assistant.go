// Package chat orchestrates one question-and-answer turn: quota check,
// language handling, retrieval, generation and the final debit. The
// Assistant owns no state of its own; session and quota state live in the
// quota package, knowledge in the store.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/expsdz/petroagent/internal/log"
	"github.com/expsdz/petroagent/internal/quota"
	"github.com/expsdz/petroagent/internal/rag"
	"github.com/expsdz/petroagent/internal/translate"
)

// Responder runs the retrieval pipeline. rag.Pipeline satisfies it.
type Responder interface {
	Ask(ctx context.Context, question string) rag.Answer
}

// QuotaLedger is the quota surface the assistant needs.
type QuotaLedger interface {
	CanUse(userID, query string) quota.Decision
	Use(userID, query string) bool
	Stats(userID string) (quota.UsageStats, bool)
}

// LanguageBridge detects and translates. translate.Translator satisfies it.
type LanguageBridge interface {
	Detect(text string) string
	ToPivot(ctx context.Context, text, lang string) translate.Outcome
	FromPivot(ctx context.Context, text, lang string) translate.Outcome
}

// Reply is the result of one chat turn. A quota refusal is a Reply with
// Refused set, not an error: the conversation continues.
type Reply struct {
	Answer   string
	Sources  []rag.SearchResult
	Language string
	Refused  bool
	Quota    quota.UsageStats
}

// Assistant answers petroleum engineering questions.
type Assistant struct {
	pipeline   Responder
	ledger     QuotaLedger
	translator LanguageBridge
	logger     log.Logger
}

// New creates an Assistant.
func New(pipeline Responder, ledger QuotaLedger, translator LanguageBridge, logger log.Logger) *Assistant {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Assistant{
		pipeline:   pipeline,
		ledger:     ledger,
		translator: translator,
		logger:     logger,
	}
}

// Respond handles one user query. The quota is checked before any model
// work and debited exactly once, after the answer is produced; a refused
// query debits nothing. Translation failures degrade to answering in
// English rather than failing the turn.
func (a *Assistant) Respond(ctx context.Context, session *quota.Session, query string) (*Reply, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	userID := session.UserID()

	decision := a.ledger.CanUse(userID, query)
	if !decision.Allowed {
		a.logger.Info("query refused",
			"user", userID,
			"needed", decision.KeywordsNeeded,
			"remaining", decision.KeywordsRemaining)
		return a.refusal(userID, decision), nil
	}

	lang := a.translator.Detect(query)

	pivotQuery := query
	if lang != translate.Pivot {
		out := a.translator.ToPivot(ctx, query, lang)
		pivotQuery = out.Text
		if out.Err != nil {
			a.logger.Warn("question kept in original language", "lang", lang, "error", out.Err)
		}
	}

	answer := a.pipeline.Ask(ctx, pivotQuery)

	text := answer.Text
	if lang != translate.Pivot {
		out := a.translator.FromPivot(ctx, text, lang)
		if out.Translated {
			text = out.Text
		} else if out.Err != nil {
			a.logger.Warn("answer left in English", "lang", lang, "error", out.Err)
		}
	}

	if !a.ledger.Use(userID, query) {
		// The budget moved between check and debit. The answer already
		// exists, so deliver it; the usage record is what we lose.
		a.logger.Warn("quota debit failed after answering", "user", userID)
	}

	stats, _ := a.ledger.Stats(userID)
	return &Reply{
		Answer:   text,
		Sources:  answer.Sources,
		Language: lang,
		Quota:    stats,
	}, nil
}

func (a *Assistant) refusal(userID string, d quota.Decision) *Reply {
	stats, _ := a.ledger.Stats(userID)
	return &Reply{
		Answer: fmt.Sprintf(
			"This question needs %d keyword(s) but you have %d remaining today. Your quota resets at midnight UTC; try a shorter or more general question in the meantime.",
			d.KeywordsNeeded, d.KeywordsRemaining),
		Refused: true,
		Quota:   stats,
	}
}
