package quota

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/expsdz/petroagent/internal/keyword"
	"github.com/expsdz/petroagent/internal/log"
)

// Persister abstracts directory persistence. Defined here, by the consumer;
// *Store satisfies it.
type Persister interface {
	Load(now time.Time) *Directory
	Save(dir *Directory) error
}

// ExtractFunc computes the domain keywords a query would consume.
type ExtractFunc func(query string) []string

// Ledger tracks per-user daily keyword consumption against the Directory
// and enforces limits. It is a two-state machine per user, Normal
// (usage < limit) and Exhausted (usage >= limit), with the transition back
// to Normal happening lazily at UTC date rollover: every accessor compares
// the stored reset date with today before reading or writing usage.
//
// The directory is loaded once at construction, mutated in place, and
// written back synchronously after every mutation. A failed write is logged
// and swallowed; the in-memory state remains the source of truth.
//
// Ledger is safe for concurrent use within one process. The CanUse/Use pair
// is intentionally not atomic across processes (see Store).
type Ledger struct {
	mu            sync.Mutex
	dir           *Directory
	store         Persister
	extract       ExtractFunc
	limitsEnabled bool
	now           func() time.Time
	logger        log.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLimitsDisabled turns off all quota enforcement: every check passes
// and nothing is ever debited.
func WithLimitsDisabled() Option {
	return func(l *Ledger) { l.limitsEnabled = false }
}

// WithClock overrides the time source. Tests use this to cross a UTC
// midnight without waiting for one.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithExtractor overrides the keyword extractor.
func WithExtractor(fn ExtractFunc) Option {
	return func(l *Ledger) { l.extract = fn }
}

// NewLedger loads the directory from store and returns a ready Ledger.
func NewLedger(store Persister, logger log.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = log.NewNop()
	}
	l := &Ledger{
		store:         store,
		extract:       keyword.Extract,
		limitsEnabled: true,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.dir = store.Load(l.now())
	return l
}

// CanUse reports whether userID may run query right now. The refusal is a
// value: unknown users get (false, 0, 0), exhausted users get their actual
// shortfall. With limits disabled every query is allowed and remaining is
// effectively infinite.
func (l *Ledger) CanUse(userID, query string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decide(userID, query)
}

// Use re-evaluates the decision and, if allowed, debits the keywords,
// appends a history entry, and persists the directory. It returns false,
// mutating nothing, when the query is not allowed or the user is
// unknown.
func (l *Ledger) Use(userID, query string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.limitsEnabled {
		return true
	}

	d := l.decide(userID, query)
	if !d.Allowed {
		return false
	}

	u := l.dir.Users[userID]
	found := l.extract(query)
	u.KeywordUsage += len(found)
	u.QueryHistory = append(u.QueryHistory, QueryEntry{
		Timestamp:     l.now().UTC(),
		Query:         query,
		KeywordsUsed:  len(found),
		KeywordsFound: found,
	})
	l.persist()

	l.logger.Debug("keywords debited",
		"user", userID,
		"used", len(found),
		"total", u.KeywordUsage,
		"limit", u.DailyKeywordLimit)
	return true
}

// Stats returns a usage snapshot for userID, applying the lazy reset first.
// The second return is false for unknown users.
func (l *Ledger) Stats(userID string) (UsageStats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.dir.Users[userID]
	if !ok {
		return UsageStats{}, false
	}
	l.resetIfStale(userID, u)

	return UsageStats{
		UserID:            userID,
		Name:              u.Name,
		UserType:          u.UserType,
		DailyKeywordLimit: u.DailyKeywordLimit,
		KeywordUsage:      u.KeywordUsage,
		KeywordsRemaining: remaining(u),
		LastReset:         u.LastReset,
		QueriesToday:      len(u.QueryHistory),
	}, true
}

// Get returns a copy of the record for userID after the lazy reset.
func (l *Ledger) Get(userID string) (UserRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.dir.Users[userID]
	if !ok {
		return UserRecord{}, false
	}
	l.resetIfStale(userID, u)

	cp := *u
	cp.QueryHistory = append([]QueryEntry(nil), u.QueryHistory...)
	return cp, true
}

// Exists reports whether userID is present in the directory.
func (l *Ledger) Exists(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.dir.Users[userID]
	return ok
}

// ListAll returns summaries for every user, sorted by id so the listing is
// stable across runs.
func (l *Ledger) ListAll() []Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.dir.Users))
	for id := range l.dir.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		u := l.dir.Users[id]
		out = append(out, Summary{
			UserID:            id,
			Name:              u.Name,
			UserType:          u.UserType,
			DailyKeywordLimit: u.DailyKeywordLimit,
			Active:            u.Active,
		})
	}
	return out
}

// Register adds a new user record and persists the directory. It fails
// when the id is empty or already taken.
func (l *Ledger) Register(userID, name, userType string, dailyLimit int) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if dailyLimit < 1 {
		return fmt.Errorf("daily keyword limit must be positive, got %d", dailyLimit)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.dir.Users[userID]; ok {
		return fmt.Errorf("user %q already exists", userID)
	}
	l.dir.Users[userID] = &UserRecord{
		Name:              name,
		UserType:          userType,
		DailyKeywordLimit: dailyLimit,
		LastReset:         l.now().UTC().Format(dateLayout),
		Active:            true,
	}
	l.persist()

	l.logger.Info("user registered", "user", userID, "limit", dailyLimit)
	return nil
}

// SetActive enables or disables a user without deleting its history.
func (l *Ledger) SetActive(userID string, active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.dir.Users[userID]
	if !ok {
		return fmt.Errorf("unknown user %q", userID)
	}
	u.Active = active
	l.persist()
	return nil
}

// DefaultUserID returns the configured default user, falling back to the
// anonymous record.
func (l *Ledger) DefaultUserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id := l.dir.Settings.DefaultUser; id != "" {
		if _, ok := l.dir.Users[id]; ok {
			return id
		}
	}
	return AnonymousUserID
}

// decide computes the quota decision. Caller holds mu.
func (l *Ledger) decide(userID, query string) Decision {
	if !l.limitsEnabled {
		return Decision{Allowed: true, KeywordsNeeded: 0, KeywordsRemaining: math.MaxInt}
	}

	u, ok := l.dir.Users[userID]
	if !ok {
		return Decision{}
	}
	l.resetIfStale(userID, u)

	needed := len(l.extract(query))
	rem := remaining(u)
	if !u.Active {
		return Decision{Allowed: false, KeywordsNeeded: needed, KeywordsRemaining: rem}
	}
	return Decision{
		Allowed:           needed <= rem,
		KeywordsNeeded:    needed,
		KeywordsRemaining: rem,
	}
}

// resetIfStale applies the lazy UTC-midnight reset: when the stored reset
// date is not today, usage drops to zero, history is cleared, and the new
// date is persisted. Caller holds mu.
func (l *Ledger) resetIfStale(userID string, u *UserRecord) {
	today := l.now().UTC().Format(dateLayout)
	if u.LastReset == today {
		return
	}
	u.KeywordUsage = 0
	u.QueryHistory = nil
	u.LastReset = today
	l.persist()

	l.logger.Debug("daily quota reset", "user", userID, "date", today)
}

// persist writes the directory back. Failure is logged and swallowed: the
// in-memory directory keeps serving until a later write succeeds.
func (l *Ledger) persist() {
	if err := l.store.Save(l.dir); err != nil {
		l.logger.Warn("saving users file failed, continuing in memory", "error", err)
	}
}

func remaining(u *UserRecord) int {
	r := u.DailyKeywordLimit - u.KeywordUsage
	if r < 0 {
		return 0
	}
	return r
}
