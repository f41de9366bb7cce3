package services

import (
	"context"
	"testing"

	"safehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerOnlineDispatchesToGuardians(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	seedGuardian(t, db, user.ID, "Mum", "mum@example.edu", "")
	seedGuardian(t, db, user.ID, "Dad", "", "+2348000000002")

	disp := &fakeDispatcher{}
	q := newTestQueue(t)
	conn := NewConnectivity(true)
	svc := NewEmergencyService(db, NewGuardianService(db), disp, q, conn)

	queued, err := svc.Trigger(context.Background(), user.ID, models.EventSOS, "I need help", &models.Point{Lng: 7.9, Lat: 5.0})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, 2, disp.attemptCount())

	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestTriggerOfflineQueuesInsteadOfDispatching(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	seedGuardian(t, db, user.ID, "Mum", "mum@example.edu", "")

	disp := &fakeDispatcher{}
	q := newTestQueue(t)
	conn := NewConnectivity(false)
	svc := NewEmergencyService(db, NewGuardianService(db), disp, q, conn)

	queued, err := svc.Trigger(context.Background(), user.ID, models.EventSOS, "help", nil)
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Zero(t, disp.attemptCount(), "offline trigger must not touch the dispatcher")

	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestReconnectDrainsThroughDispatchPath(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	seedGuardian(t, db, user.ID, "Mum", "mum@example.edu", "")

	disp := &fakeDispatcher{}
	q := newTestQueue(t)
	conn := NewConnectivity(false)
	svc := NewEmergencyService(db, NewGuardianService(db), disp, q, conn)

	_, err := svc.Trigger(context.Background(), user.ID, models.EventSOS, "help", nil)
	require.NoError(t, err)

	drained := make(chan struct{})
	conn.OnReconnect(func() {
		q.Drain(context.Background())
		close(drained)
	})

	conn.Set(true)
	<-drained

	assert.Equal(t, 1, disp.attemptCount(), "queued event replays through the normal dispatch path")
	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending, "pending count returns to zero once dispatch succeeds")
}

func TestTriggerOnlineDispatchFailureFallsBackToQueue(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")
	seedGuardian(t, db, user.ID, "Mum", "mum@example.edu", "")

	disp := &fakeDispatcher{failAll: true}
	q := newTestQueue(t)
	conn := NewConnectivity(true)
	svc := NewEmergencyService(db, NewGuardianService(db), disp, q, conn)

	queued, err := svc.Trigger(context.Background(), user.ID, models.EventSOS, "help", nil)
	require.NoError(t, err)
	assert.True(t, queued, "a failed online dispatch is captured, not dropped")

	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestTriggerRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "ada")

	svc := NewEmergencyService(db, NewGuardianService(db), &fakeDispatcher{}, newTestQueue(t), NewConnectivity(true))

	_, err := svc.Trigger(context.Background(), user.ID, "party", "help", nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestConnectivityTransitions(t *testing.T) {
	conn := NewConnectivity(true)

	fired := make(chan struct{}, 4)
	conn.OnReconnect(func() { fired <- struct{}{} })

	// online→online: no hook
	conn.Set(true)
	select {
	case <-fired:
		t.Fatal("hook fired without a transition")
	default:
	}

	conn.Set(false)
	assert.False(t, conn.Online())

	conn.Set(true)
	<-fired
	assert.True(t, conn.Online())
}
