package quota

// Session holds the active user selection for one process session. It is an
// explicit object owned by the caller, with no package-level current user,
// and it is not persisted: the initial selection comes from configuration
// and lives only as long as the process.
//
// Session is not safe for concurrent use; the tool runs one interactive
// session at a time.
type Session struct {
	ledger  *Ledger
	current string
}

// NewSession creates a session bound to ledger with userID selected.
// An unknown userID falls back to the default user.
func NewSession(ledger *Ledger, userID string) *Session {
	s := &Session{ledger: ledger}
	if !s.Switch(userID) {
		s.current = ledger.DefaultUserID()
	}
	return s
}

// UserID returns the currently selected user id.
func (s *Session) UserID() string {
	return s.current
}

// Current returns the record for the selected user, applying the lazy reset
// first. If the selection no longer resolves the anonymous record is
// returned instead.
func (s *Session) Current() UserRecord {
	if u, ok := s.ledger.Get(s.current); ok {
		return u
	}
	u, _ := s.ledger.Get(AnonymousUserID)
	return u
}

// Switch changes the selected user. It succeeds only when userID exists in
// the directory; on failure the selection is unchanged.
func (s *Session) Switch(userID string) bool {
	if userID == "" || !s.ledger.Exists(userID) {
		return false
	}
	s.current = userID
	return true
}
