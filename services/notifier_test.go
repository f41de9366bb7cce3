package services

import (
	"context"
	"testing"

	"safehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyGuardiansIndependentOutcomes(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	gA := seedGuardian(t, db, user.ID, "Alpha", "alpha@example.edu", "")
	gB := seedGuardian(t, db, user.ID, "Beta", "", "+2348000000002")

	timers := NewTimerService(db, nil)
	timer, err := timers.StartTimer(user.ID, 900, "Library", []uint{gA.ID, gB.ID})
	require.NoError(t, err)

	disp := &fakeDispatcher{failFor: map[string]bool{"Alpha": true}}
	notifier := NewGuardianNotifier(db, disp)

	outcome := notifier.NotifyGuardians(context.Background(), timer)
	require.Len(t, outcome.Outcomes, 2)
	assert.Equal(t, 2, disp.attemptCount(), "exactly one attempt per guardian")

	byName := map[string]GuardianOutcome{}
	for _, o := range outcome.Outcomes {
		byName[o.Name] = o
	}
	assert.False(t, byName["Alpha"].Notified)
	assert.NotEmpty(t, byName["Alpha"].Reason)
	assert.True(t, byName["Beta"].Notified)
	assert.Empty(t, byName["Beta"].Reason)
	assert.Equal(t, 1, outcome.Notified())

	// the notified flag is persisted per snapshot
	var snaps []models.TimerGuardian
	require.NoError(t, db.Where("timer_id = ?", timer.ID).Order("id").Find(&snaps).Error)
	require.Len(t, snaps, 2)
	assert.False(t, snaps[0].Notified) // Alpha
	assert.True(t, snaps[1].Notified)  // Beta
}

func TestNotifyGuardiansPartialContact(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	emailOnly := seedGuardian(t, db, user.ID, "EmailOnly", "only@example.edu", "")
	phoneOnly := seedGuardian(t, db, user.ID, "PhoneOnly", "", "+2348000000009")

	timers := NewTimerService(db, nil)
	timer, err := timers.StartTimer(user.ID, 600, "Hostel", []uint{emailOnly.ID, phoneOnly.ID})
	require.NoError(t, err)

	disp := &fakeDispatcher{}
	notifier := NewGuardianNotifier(db, disp)

	outcome := notifier.NotifyGuardians(context.Background(), timer)
	require.Len(t, outcome.Outcomes, 2)
	assert.Equal(t, 2, outcome.Notified())

	// the snapshot's contact info travels with the notification
	for _, n := range disp.attempts {
		assert.True(t, (n.Email != "") != (n.Phone != ""), "each guardian had exactly one channel")
	}
}

func TestNotifyGuardiansNoGuardians(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")

	timers := NewTimerService(db, nil)
	timer, err := timers.StartTimer(user.ID, 600, "Library", nil)
	require.NoError(t, err)

	disp := &fakeDispatcher{}
	notifier := NewGuardianNotifier(db, disp)

	outcome := notifier.NotifyGuardians(context.Background(), timer)
	assert.Empty(t, outcome.Outcomes)
	assert.Zero(t, disp.attemptCount())
}
