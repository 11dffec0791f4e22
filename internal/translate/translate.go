// Package translate detects the language of incoming questions and moves
// text between that language and English, the language the knowledge
// store and the models work in. Translation runs through the chat LLM;
// when it fails the caller gets the untouched text back and a flag saying
// no translation happened, never an unusable error state.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"github.com/expsdz/petroagent/internal/log"
)

// Pivot is the language retrieval and generation operate in.
const Pivot = "en"

// LLM produces a completion for a prompt.
type LLM func(ctx context.Context, prompt string) (string, error)

// Outcome is the result of one translation attempt. Translated reports
// whether Text differs from the input by an actual translation; when it
// is false Text is the original and Err holds the reason, if any.
type Outcome struct {
	Text       string
	Translated bool
	Err        error
}

var languageNames = map[string]string{
	"en": "English",
	"ar": "Arabic",
	"fr": "French",
	"de": "German",
}

var supported = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Arb: "ar",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
}

// Translator detects languages and translates via the LLM.
type Translator struct {
	llm      LLM
	enabled  bool
	fallback string
	logger   log.Logger
	stats    stats
}

// Option configures a Translator.
type Option func(*Translator)

// Disabled turns translation off; every call becomes a no-op outcome.
func Disabled() Option {
	return func(t *Translator) { t.enabled = false }
}

// WithFallbackLanguage sets the code Detect reports when text cannot be
// classified into a supported language. The default is the pivot.
func WithFallbackLanguage(code string) Option {
	return func(t *Translator) {
		if _, ok := languageNames[code]; ok {
			t.fallback = code
		}
	}
}

// New creates a Translator.
func New(llm LLM, logger log.Logger, opts ...Option) *Translator {
	if logger == nil {
		logger = log.NewNop()
	}
	t := &Translator{
		llm:      llm,
		enabled:  true,
		fallback: Pivot,
		logger:   logger,
	}
	t.stats.perLanguage = make(map[string]int)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Detect returns the language code of text, restricted to the supported
// set. Anything else, including text too short to classify, maps to the
// fallback language.
func (t *Translator) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return t.fallback
	}
	info := whatlanggo.Detect(text)
	code, ok := supported[info.Lang]
	if !ok {
		code = t.fallback
	}
	t.noteQuery(code)
	return code
}

// ToPivot translates text from lang into English.
func (t *Translator) ToPivot(ctx context.Context, text, lang string) Outcome {
	return t.translate(ctx, text, lang, Pivot)
}

// FromPivot translates text from English into lang.
func (t *Translator) FromPivot(ctx context.Context, text, lang string) Outcome {
	return t.translate(ctx, text, Pivot, lang)
}

func (t *Translator) translate(ctx context.Context, text, from, to string) Outcome {
	if !t.enabled || from == to || strings.TrimSpace(text) == "" {
		return Outcome{Text: text}
	}
	fromName, okFrom := languageNames[from]
	toName, okTo := languageNames[to]
	if !okFrom || !okTo {
		return Outcome{Text: text, Err: fmt.Errorf("unsupported language pair %s -> %s", from, to)}
	}

	start := time.Now()
	t.stats.attempt()

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Return only the translated text, with no commentary.\n\n%s",
		fromName, toName, text)
	out, err := t.llm(ctx, prompt)
	if err != nil {
		t.stats.fail()
		t.logger.Warn("translation failed", "from", from, "to", to, "error", err)
		return Outcome{Text: text, Err: err}
	}

	translated := stripLabel(strings.TrimSpace(out))
	if translated == "" {
		t.stats.fail()
		return Outcome{Text: text, Err: fmt.Errorf("empty translation from %s to %s", from, to)}
	}

	t.stats.succeed(time.Since(start))
	return Outcome{Text: translated, Translated: true}
}

// stripLabel removes a leading "Translation:" label some models prepend
// despite being told not to.
func stripLabel(s string) string {
	for _, label := range []string{"Translation:", "translation:"} {
		if strings.HasPrefix(s, label) {
			return strings.TrimSpace(s[len(label):])
		}
	}
	return s
}
