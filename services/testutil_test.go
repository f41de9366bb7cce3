package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"safehub/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "safehub_test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Guardian{},
		&models.SafetyTimer{},
		&models.TimerGuardian{},
		&models.SafetyAlert{},
		&models.UserDevice{},
	))
	return db
}

func newTestQueue(t *testing.T) *OfflineQueue {
	t.Helper()

	bdb, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	q, err := NewOfflineQueue(bdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

// fakeDispatcher records every attempt and fails for contacts listed in
// failFor.
type fakeDispatcher struct {
	mu       sync.Mutex
	attempts []Notification
	failFor  map[string]bool // keyed by guardian name
	failAll  bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.mu.Lock()
	d.attempts = append(d.attempts, n)
	d.mu.Unlock()
	if d.failAll || d.failFor[n.Name] {
		return &DispatchError{Channel: "sms", Err: context.DeadlineExceeded}
	}
	return nil
}

func (d *fakeDispatcher) attemptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.attempts)
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.edu", Password: "x", FullName: name}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedGuardian(t *testing.T, db *gorm.DB, userID uint, name, email, phone string) *models.Guardian {
	t.Helper()
	g := &models.Guardian{
		UserID: userID,
		Name:   name,
		Email:  email,
		Phone:  phone,
		Status: models.GuardianAccepted,
	}
	require.NoError(t, db.Create(g).Error)
	return g
}
