package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionSelection(t *testing.T) {
	l, clock, _ := newTestLedger(t)
	seedUser(l, "sara", &UserRecord{
		Name:              "Sara",
		UserType:          UserTypeRegistered,
		DailyKeywordLimit: 50,
		Active:            true,
		LastReset:         clock.Now().Format("2006-01-02"),
	})

	s := NewSession(l, "sara")
	assert.Equal(t, "sara", s.UserID())
	assert.Equal(t, "Sara", s.Current().Name)

	assert.False(t, s.Switch("nobody"), "switch to unknown user must fail")
	assert.Equal(t, "sara", s.UserID(), "failed switch keeps selection")

	assert.True(t, s.Switch(AnonymousUserID))
	assert.Equal(t, AnonymousUserID, s.UserID())
}

func TestSessionFallsBackToDefaultUser(t *testing.T) {
	l, _, _ := newTestLedger(t)

	s := NewSession(l, "missing-user")
	assert.Equal(t, AnonymousUserID, s.UserID())
	assert.Equal(t, UserTypeAnonymous, s.Current().UserType)
}
