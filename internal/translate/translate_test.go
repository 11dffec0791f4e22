package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expsdz/petroagent/internal/log"
)

func cannedLLM(reply string) LLM {
	return func(context.Context, string) (string, error) { return reply, nil }
}

func failingLLM() LLM {
	return func(context.Context, string) (string, error) {
		return "", errors.New("model unavailable")
	}
}

func TestDetect(t *testing.T) {
	tr := New(cannedLLM(""), log.NewNop())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "What is the typical drilling mud density for deep wells?", "en"},
		{"french", "Quelle est la pression de fracturation typique dans les réservoirs profonds?", "fr"},
		{"german", "Wie hoch ist der typische Bohrdruck in tiefen Lagerstätten unter der Erde?", "de"},
		{"arabic", "ما هو الضغط النموذجي لتكسير الصخور في الآبار العميقة؟", "ar"},
		{"empty", "   ", "en"},
		{"unsupported language falls back", "¿Cuál es la presión típica de fracturación en yacimientos profundos?", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Detect(tt.text))
		})
	}
}

func TestDetectFallbackLanguage(t *testing.T) {
	tr := New(cannedLLM(""), log.NewNop(), WithFallbackLanguage("fr"))

	spanish := "¿Cuál es la presión típica de fracturación en yacimientos profundos?"
	assert.Equal(t, "fr", tr.Detect(spanish), "unclassifiable text reports the configured fallback")
	assert.Equal(t, "fr", tr.Detect("   "), "empty text reports the configured fallback")
	assert.Equal(t, "en", tr.Detect("What is the typical drilling mud density for deep wells?"),
		"supported detections are unaffected")

	tr = New(cannedLLM(""), log.NewNop(), WithFallbackLanguage("xx"))
	assert.Equal(t, "en", tr.Detect(spanish), "unknown fallback codes are ignored")
}

func TestToPivotTranslates(t *testing.T) {
	tr := New(cannedLLM("What is drilling pressure?"), log.NewNop())
	out := tr.ToPivot(context.Background(), "Qu'est-ce que la pression de forage?", "fr")

	require.NoError(t, out.Err)
	assert.True(t, out.Translated)
	assert.Equal(t, "What is drilling pressure?", out.Text)
}

func TestToPivotNoOpForEnglish(t *testing.T) {
	tr := New(failingLLM(), log.NewNop())
	out := tr.ToPivot(context.Background(), "already english", "en")

	require.NoError(t, out.Err)
	assert.False(t, out.Translated)
	assert.Equal(t, "already english", out.Text)
}

func TestTranslateFallsBackOnModelError(t *testing.T) {
	tr := New(failingLLM(), log.NewNop())
	out := tr.ToPivot(context.Background(), "texte original", "fr")

	assert.Error(t, out.Err)
	assert.False(t, out.Translated)
	assert.Equal(t, "texte original", out.Text)
}

func TestTranslateFallsBackOnEmptyReply(t *testing.T) {
	tr := New(cannedLLM("  \n"), log.NewNop())
	out := tr.FromPivot(context.Background(), "the answer", "de")

	assert.Error(t, out.Err)
	assert.False(t, out.Translated)
	assert.Equal(t, "the answer", out.Text)
}

func TestTranslateStripsLabel(t *testing.T) {
	tr := New(cannedLLM("Translation: Der Bohrdruck steigt."), log.NewNop())
	out := tr.FromPivot(context.Background(), "Drilling pressure rises.", "de")

	require.NoError(t, out.Err)
	assert.Equal(t, "Der Bohrdruck steigt.", out.Text)
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	tr := New(cannedLLM("x"), log.NewNop())
	out := tr.ToPivot(context.Background(), "text", "ja")

	assert.Error(t, out.Err)
	assert.Equal(t, "text", out.Text)
}

func TestDisabledTranslatorIsNoOp(t *testing.T) {
	tr := New(failingLLM(), log.NewNop(), Disabled())
	out := tr.ToPivot(context.Background(), "texte", "fr")

	require.NoError(t, out.Err)
	assert.False(t, out.Translated)
	assert.Equal(t, "texte", out.Text)
}

func TestStatsAccumulate(t *testing.T) {
	tr := New(cannedLLM("translated"), log.NewNop())

	tr.Detect("What is the typical drilling mud density for deep wells?")
	tr.Detect("Quelle est la pression de fracturation typique dans les réservoirs profonds?")
	tr.ToPivot(context.Background(), "une question", "fr")

	snap := tr.StatsSnapshot()
	assert.Equal(t, 2, snap.Queries)
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, 1, snap.Succeeded)
	assert.Equal(t, 0, snap.Failed)
	assert.Equal(t, 1, snap.PerLanguage["en"])
	assert.Equal(t, 1, snap.PerLanguage["fr"])
	assert.GreaterOrEqual(t, snap.AvgLatency, time.Duration(0))
}

func TestStatsCountFailures(t *testing.T) {
	tr := New(failingLLM(), log.NewNop())
	tr.ToPivot(context.Background(), "une question", "fr")

	snap := tr.StatsSnapshot()
	assert.Equal(t, 1, snap.Attempted)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 0, snap.Succeeded)
}

func TestResetStats(t *testing.T) {
	tr := New(cannedLLM("translated"), log.NewNop())
	tr.Detect("What is drilling?")
	tr.ToPivot(context.Background(), "une question", "fr")

	tr.ResetStats()
	snap := tr.StatsSnapshot()
	assert.Zero(t, snap.Queries)
	assert.Zero(t, snap.Attempted)
	assert.Zero(t, snap.Succeeded)
	assert.Empty(t, snap.PerLanguage)
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := New(cannedLLM("x"), log.NewNop())
	tr.Detect("What is the drilling pressure in deep wells today?")

	snap := tr.StatsSnapshot()
	snap.PerLanguage["en"] = 99

	assert.Equal(t, 1, tr.StatsSnapshot().PerLanguage["en"])
}
