package quota

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expsdz/petroagent/internal/log"
)

// fakeClock is a mutable time source for crossing UTC midnights in tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *fakeClock, *Store) {
	t.Helper()

	clock := &fakeClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	store := NewStore(filepath.Join(t.TempDir(), "users.json"), log.NewNop())
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewLedger(store, log.NewNop(), opts...), clock, store
}

// seedUser installs a user record directly, bypassing persistence.
func seedUser(l *Ledger, id string, u *UserRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dir.Users[id] = u
}

const fourKeywordQuery = "What is hydraulic fracturing and drilling pressure?"

func TestCanUseScenario(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		Name:              "Ahmed",
		UserType:          UserTypeRegistered,
		DailyKeywordLimit: 10,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	d := l.CanUse("ahmed", fourKeywordQuery)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.KeywordsNeeded)
	assert.Equal(t, 10, d.KeywordsRemaining)
}

func TestDebitLaw(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		DailyKeywordLimit: 10,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	require.True(t, l.Use("ahmed", fourKeywordQuery))

	u, ok := l.Get("ahmed")
	require.True(t, ok)
	assert.Equal(t, 4, u.KeywordUsage)
	require.Len(t, u.QueryHistory, 1)
	entry := u.QueryHistory[0]
	assert.Equal(t, fourKeywordQuery, entry.Query)
	assert.Equal(t, 4, entry.KeywordsUsed)
	assert.Equal(t, []string{"hydraulic", "fracturing", "drilling", "pressure"}, entry.KeywordsFound)
}

func TestRefusalLaw(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		DailyKeywordLimit: 10,
		KeywordUsage:      9,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	d := l.CanUse("ahmed", fourKeywordQuery)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4, d.KeywordsNeeded)
	assert.Equal(t, 1, d.KeywordsRemaining)

	assert.False(t, l.Use("ahmed", fourKeywordQuery))

	u, _ := l.Get("ahmed")
	assert.Equal(t, 9, u.KeywordUsage, "refused use must not mutate usage")
	assert.Empty(t, u.QueryHistory, "refused use must not append history")
}

func TestResetLaw(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	yesterday := clock.Now().AddDate(0, 0, -1).Format("2006-01-02")
	seedUser(l, "ahmed", &UserRecord{
		DailyKeywordLimit: 10,
		KeywordUsage:      7,
		Active:            true,
		LastReset:         yesterday,
		QueryHistory:      []QueryEntry{{Query: "old", KeywordsUsed: 7}},
	})

	u, ok := l.Get("ahmed")
	require.True(t, ok)
	assert.Equal(t, 0, u.KeywordUsage)
	assert.Empty(t, u.QueryHistory)
	assert.Equal(t, clock.Now().Format("2006-01-02"), u.LastReset)
}

func TestMidnightRolloverRestoresQuota(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		DailyKeywordLimit: 4,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	require.True(t, l.Use("ahmed", fourKeywordQuery))
	assert.False(t, l.CanUse("ahmed", fourKeywordQuery).Allowed, "budget exhausted")

	clock.Advance(24 * time.Hour)

	d := l.CanUse("ahmed", fourKeywordQuery)
	assert.True(t, d.Allowed, "new UTC day restores the budget")
	assert.Equal(t, 4, d.KeywordsRemaining)
}

func TestUnknownUser(t *testing.T) {
	l, _, _ := newTestLedger(t)

	d := l.CanUse("nobody", fourKeywordQuery)
	assert.Equal(t, Decision{}, d)
	assert.False(t, l.Use("nobody", fourKeywordQuery))

	_, ok := l.Stats("nobody")
	assert.False(t, ok)
}

func TestInactiveUser(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "gone", &UserRecord{
		DailyKeywordLimit: 10,
		Active:            false,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	d := l.CanUse("gone", fourKeywordQuery)
	assert.False(t, d.Allowed)
	assert.Equal(t, 4, d.KeywordsNeeded)
	assert.False(t, l.Use("gone", fourKeywordQuery))
}

func TestLimitsDisabled(t *testing.T) {
	l, _, _ := newTestLedger(t, WithLimitsDisabled())

	d := l.CanUse("nobody", fourKeywordQuery)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.KeywordsNeeded)

	// Use passes and mutates nothing, even for unknown users.
	assert.True(t, l.Use("nobody", fourKeywordQuery))
}

func TestNoKeywordsQueryIsFree(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		DailyKeywordLimit: 1,
		KeywordUsage:      1,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	d := l.CanUse("ahmed", "hello, how are you?")
	assert.True(t, d.Allowed, "zero keywords needed fits zero remaining")
	assert.Equal(t, 0, d.KeywordsNeeded)
	assert.Equal(t, 0, d.KeywordsRemaining)
}

func TestStatsIdempotent(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "ahmed", &UserRecord{
		Name:              "Ahmed",
		DailyKeywordLimit: 10,
		KeywordUsage:      3,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
		QueryHistory:      []QueryEntry{{Query: "q", KeywordsUsed: 3}},
	})

	for i := 0; i < 3; i++ {
		st, ok := l.Stats("ahmed")
		require.True(t, ok)
		assert.Equal(t, 3, st.KeywordUsage)
		assert.Equal(t, 7, st.KeywordsRemaining)
		assert.Equal(t, 1, st.QueriesToday)
	}
	u, _ := l.Get("ahmed")
	assert.Equal(t, 3, u.KeywordUsage, "stats must not mutate usage")
}

func TestListAllSorted(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	today := clock.Now().Format("2006-01-02")
	seedUser(l, "zara", &UserRecord{Name: "Zara", Active: true, LastReset: today})
	seedUser(l, "badr", &UserRecord{Name: "Badr", Active: true, LastReset: today})

	all := l.ListAll()
	require.Len(t, all, 3) // anonymous + two seeded
	assert.Equal(t, "anonymous", all[0].UserID)
	assert.Equal(t, "badr", all[1].UserID)
	assert.Equal(t, "zara", all[2].UserID)
}

func TestUsePersistsAcrossReload(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	store := NewStore(filepath.Join(t.TempDir(), "users.json"), log.NewNop())

	l := NewLedger(store, log.NewNop(), WithClock(clock.Now))
	require.NoError(t, l.Register("rana", "Rana", UserTypeRegistered, 10))
	require.True(t, l.Use("rana", fourKeywordQuery))

	reloaded := NewLedger(store, log.NewNop(), WithClock(clock.Now))
	u, ok := reloaded.Get("rana")
	require.True(t, ok)
	assert.Equal(t, 4, u.KeywordUsage)
	require.Len(t, u.QueryHistory, 1)
}

func TestAnonymousDefaultBudgetIsOneKeyword(t *testing.T) {
	l, _, _ := newTestLedger(t)

	d := l.CanUse(AnonymousUserID, "What is drilling?")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.KeywordsRemaining)

	d = l.CanUse(AnonymousUserID, fourKeywordQuery)
	assert.False(t, d.Allowed, "four keywords exceed the default budget")
	assert.Equal(t, 4, d.KeywordsNeeded)
}

func TestRegister(t *testing.T) {
	l, _, store := newTestLedger(t)

	require.NoError(t, l.Register("karim", "Karim", UserTypeRegistered, 25))

	d := l.CanUse("karim", fourKeywordQuery)
	assert.True(t, d.Allowed)
	assert.Equal(t, 25, d.KeywordsRemaining)

	// Registration survives a reload.
	reloaded := NewLedger(store, log.NewNop())
	u, ok := reloaded.Get("karim")
	require.True(t, ok)
	assert.Equal(t, "Karim", u.Name)
	assert.Equal(t, 25, u.DailyKeywordLimit)
	assert.True(t, u.Active)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	l, _, _ := newTestLedger(t)

	require.NoError(t, l.Register("karim", "Karim", UserTypeRegistered, 25))
	assert.Error(t, l.Register("karim", "Other", UserTypeRegistered, 5))
	assert.Error(t, l.Register("", "Nameless", UserTypeRegistered, 5))
	assert.Error(t, l.Register("zero", "Zero", UserTypeRegistered, 0))
}

func TestSetActive(t *testing.T) {
	l, _, _ := newTestLedger(t)
	require.NoError(t, l.Register("karim", "Karim", UserTypeRegistered, 25))

	require.NoError(t, l.SetActive("karim", false))
	d := l.CanUse("karim", fourKeywordQuery)
	assert.False(t, d.Allowed)

	require.NoError(t, l.SetActive("karim", true))
	assert.True(t, l.CanUse("karim", fourKeywordQuery).Allowed)

	assert.Error(t, l.SetActive("ghost", false))
}
