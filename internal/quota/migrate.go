package quota

import (
	"encoding/json"
	"fmt"
)

// The users file has seen one schema revision: early files stored
// "daily_search_limit"/"current_usage" and had no query history. Loading
// goes through a raw form and a pure migration step so the accessors only
// ever see the current schema.

type rawUser struct {
	Name     string `json:"name"`
	UserType string `json:"user_type"`

	DailyKeywordLimit *int `json:"daily_keyword_limit"`
	KeywordUsage      *int `json:"current_keyword_usage"`

	// Legacy field pair, upgraded transparently on load.
	DailySearchLimit *int `json:"daily_search_limit"`
	CurrentUsage     *int `json:"current_usage"`

	LastReset    string       `json:"last_reset"`
	Active       *bool        `json:"active"`
	QueryHistory []QueryEntry `json:"query_history"`
}

type rawDirectory struct {
	Users    map[string]rawUser `json:"users"`
	Settings Settings           `json:"settings"`
}

// decodeDirectory parses data and upgrades legacy records to the current
// schema. The migration is pure: it runs exactly once per load and the
// result never carries legacy fields.
func decodeDirectory(data []byte) (*Directory, error) {
	var raw rawDirectory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing users file: %w", err)
	}

	dir := &Directory{
		Users:    make(map[string]*UserRecord, len(raw.Users)),
		Settings: raw.Settings,
	}
	for id, ru := range raw.Users {
		dir.Users[id] = migrateUser(ru)
	}
	return dir, nil
}

// migrateUser converts one raw record to the current schema. Current-schema
// fields win when both generations are present.
func migrateUser(ru rawUser) *UserRecord {
	u := &UserRecord{
		Name:         ru.Name,
		UserType:     ru.UserType,
		LastReset:    ru.LastReset,
		Active:       true,
		QueryHistory: ru.QueryHistory,
	}

	switch {
	case ru.DailyKeywordLimit != nil:
		u.DailyKeywordLimit = *ru.DailyKeywordLimit
	case ru.DailySearchLimit != nil:
		u.DailyKeywordLimit = *ru.DailySearchLimit
	default:
		u.DailyKeywordLimit = 1
	}

	switch {
	case ru.KeywordUsage != nil:
		u.KeywordUsage = *ru.KeywordUsage
	case ru.CurrentUsage != nil:
		u.KeywordUsage = *ru.CurrentUsage
	}

	if ru.Active != nil {
		u.Active = *ru.Active
	}
	return u
}
