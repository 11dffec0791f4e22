// Package quota implements per-user daily keyword budgets. A Directory of
// user records is persisted as a single JSON document; every query debits
// the keywords it contains from the user's budget, which resets lazily at
// UTC midnight.
package quota

import "time"

// User type identifiers stored in UserRecord.UserType.
const (
	UserTypeRegistered = "registered"
	UserTypeAnonymous  = "anonymous"
)

// AnonymousUserID is the built-in fallback user. It always exists: the
// default directory contains it and session selection falls back to it when
// the configured user is missing.
const AnonymousUserID = "anonymous"

// dateLayout is the storage format for reset dates (UTC calendar days).
const dateLayout = "2006-01-02"

// UserRecord is a single user's quota state.
type UserRecord struct {
	Name              string       `json:"name"`
	UserType          string       `json:"user_type"`
	DailyKeywordLimit int          `json:"daily_keyword_limit"`
	KeywordUsage      int          `json:"current_keyword_usage"`
	LastReset         string       `json:"last_reset"` // YYYY-MM-DD, UTC
	Active            bool         `json:"active"`
	QueryHistory      []QueryEntry `json:"query_history"`
}

// QueryEntry records one debited query.
type QueryEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Query         string    `json:"query"`
	KeywordsUsed  int       `json:"keywords_used"`
	KeywordsFound []string  `json:"keywords_found"`
}

// Settings carries informational directory-level configuration. Reset logic
// is hardcoded to UTC midnight regardless of ResetTime/Timezone; the fields
// are preserved for the file format.
type Settings struct {
	DefaultUser string `json:"default_user"`
	ResetTime   string `json:"reset_time"`
	Timezone    string `json:"timezone"`
}

// Directory is the root persisted object: all user records plus settings.
type Directory struct {
	Users    map[string]*UserRecord `json:"users"`
	Settings Settings               `json:"settings"`
}

// DefaultDirectory returns the built-in directory used when no users file
// exists or the stored one cannot be read: a single anonymous user with a
// one-keyword daily budget, matching the fallback the migration applies to
// records that never stored a limit.
func DefaultDirectory(now time.Time) *Directory {
	return &Directory{
		Users: map[string]*UserRecord{
			AnonymousUserID: {
				Name:              "Anonymous User",
				UserType:          UserTypeAnonymous,
				DailyKeywordLimit: 1,
				KeywordUsage:      0,
				LastReset:         now.UTC().Format(dateLayout),
				Active:            true,
			},
		},
		Settings: Settings{
			DefaultUser: AnonymousUserID,
			ResetTime:   "00:00",
			Timezone:    "UTC",
		},
	}
}

// Summary is a compact user listing entry.
type Summary struct {
	UserID            string
	Name              string
	UserType          string
	DailyKeywordLimit int
	Active            bool
}

// UsageStats is a point-in-time usage snapshot for one user.
type UsageStats struct {
	UserID            string
	Name              string
	UserType          string
	DailyKeywordLimit int
	KeywordUsage      int
	KeywordsRemaining int
	LastReset         string
	QueriesToday      int
}

// Decision is the structured result of a quota check. A refusal is a value,
// not an error: the caller decides the user-facing message.
type Decision struct {
	Allowed           bool
	KeywordsNeeded    int
	KeywordsRemaining int
}
