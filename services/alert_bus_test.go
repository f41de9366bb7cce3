package services

import (
	"testing"

	"safehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertBusDeliversInOrder(t *testing.T) {
	bus := NewAlertBus()

	var seen []string
	bus.Subscribe(
		func(a models.SafetyAlert) { seen = append(seen, "insert:"+a.Title) },
		func(a models.SafetyAlert) { seen = append(seen, "update:"+a.Title) },
		func(a models.SafetyAlert) { seen = append(seen, "delete:"+a.Title) },
	)

	bus.PublishInsert(models.SafetyAlert{Title: "a"})
	bus.PublishUpdate(models.SafetyAlert{Title: "a"})
	bus.PublishInsert(models.SafetyAlert{Title: "b"})
	bus.PublishDelete(models.SafetyAlert{Title: "a"})

	assert.Equal(t, []string{"insert:a", "update:a", "insert:b", "delete:a"}, seen)
}

func TestAlertBusNoHistoryReplay(t *testing.T) {
	bus := NewAlertBus()
	bus.PublishInsert(models.SafetyAlert{Title: "before"})

	var seen []string
	bus.Subscribe(func(a models.SafetyAlert) { seen = append(seen, a.Title) }, nil, nil)

	bus.PublishInsert(models.SafetyAlert{Title: "after"})
	assert.Equal(t, []string{"after"}, seen, "subscribers only see events emitted after subscription")
}

func TestAlertBusUnsubscribe(t *testing.T) {
	bus := NewAlertBus()

	count := 0
	h := bus.Subscribe(func(models.SafetyAlert) { count++ }, nil, nil)

	bus.PublishInsert(models.SafetyAlert{Title: "x"})
	bus.Unsubscribe(h)
	bus.PublishInsert(models.SafetyAlert{Title: "y"})

	assert.Equal(t, 1, count)
}

func TestAlertServicePublishesChanges(t *testing.T) {
	db := newTestDB(t)
	bus := NewAlertBus()
	svc := NewAlertService(db, bus)
	user := seedUser(t, db, "admin")

	var inserts, updates, deletes int
	bus.Subscribe(
		func(models.SafetyAlert) { inserts++ },
		func(models.SafetyAlert) { updates++ },
		func(models.SafetyAlert) { deletes++ },
	)

	alert, err := svc.CreateAlert(user.ID, "security", "Avoid North Gate", "Reported disturbance", nil)
	require.NoError(t, err)
	assert.True(t, alert.Active)

	_, err = svc.UpdateAlert(alert.ID, "", "Situation contained")
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateAlert(alert.ID))

	active, err := svc.ListActiveAlerts()
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.DeleteAlert(alert.ID))

	assert.Equal(t, 1, inserts)
	assert.Equal(t, 2, updates, "deactivation publishes as an update")
	assert.Equal(t, 1, deletes)

	_, err = svc.CreateAlert(user.ID, "security", "  ", "", nil)
	require.ErrorIs(t, err, ErrValidation)
}
