package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"safehub/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueAndListPending(t *testing.T) {
	q := newTestQueue(t)

	id, err := q.Enqueue(1, models.EventSOS, json.RawMessage(`{"message":"help"}`), &models.Point{Lng: 7.92, Lat: 5.03})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pending, err := q.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, models.EventSOS, pending[0].Type)
	assert.False(t, pending[0].Synced)
	require.NotNil(t, pending[0].Location)
	assert.InDelta(t, 5.03, pending[0].Location.Lat, 1e-9)
}

func TestDrainFailureKeepsRecords(t *testing.T) {
	q := newTestQueue(t)
	q.SetDeliver(func(ctx context.Context, rec models.OfflineEmergencyRecord) error {
		return &DispatchError{Err: context.DeadlineExceeded}
	})

	_, err := q.Enqueue(1, models.EventSOS, nil, nil)
	require.NoError(t, err)

	q.Drain(context.Background())

	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1, "failed dispatch must leave the record unsynced")
}

func TestDrainSuccessMarksSynced(t *testing.T) {
	q := newTestQueue(t)
	var delivered []string
	q.SetDeliver(func(ctx context.Context, rec models.OfflineEmergencyRecord) error {
		delivered = append(delivered, rec.ID)
		return nil
	})

	id1, err := q.Enqueue(1, models.EventSOS, nil, nil)
	require.NoError(t, err)
	id2, err := q.Enqueue(1, models.EventSafetyTimer, nil, nil)
	require.NoError(t, err)
	id3, err := q.Enqueue(2, models.EventIncident, nil, nil)
	require.NoError(t, err)

	q.Drain(context.Background())

	// FIFO replay
	assert.Equal(t, []string{id1, id2, id3}, delivered)

	pending, err := q.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDrainRetriesOnlyUnsynced(t *testing.T) {
	q := newTestQueue(t)

	calls := 0
	q.SetDeliver(func(ctx context.Context, rec models.OfflineEmergencyRecord) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("network down")
		}
		return nil
	})

	_, err := q.Enqueue(1, models.EventSOS, nil, nil)
	require.NoError(t, err)

	q.Drain(context.Background()) // fails, record stays
	q.Drain(context.Background()) // succeeds
	q.Drain(context.Background()) // nothing left to deliver

	assert.Equal(t, 2, calls, "synced records are never re-dispatched")
}

func TestPruneRemovesOldSyncedOnly(t *testing.T) {
	q := newTestQueue(t)
	q.SetDeliver(func(ctx context.Context, rec models.OfflineEmergencyRecord) error { return nil })

	// an old record that was synced long ago, written directly so its
	// timestamp predates the retention window
	old := models.OfflineEmergencyRecord{
		ID:        "old-synced",
		UserID:    1,
		CreatedAt: time.Now().Add(-25 * time.Hour),
		Type:      models.EventSOS,
		Synced:    true,
	}
	oldUnsynced := models.OfflineEmergencyRecord{
		ID:        "old-unsynced",
		UserID:    1,
		CreatedAt: time.Now().Add(-48 * time.Hour),
		Type:      models.EventSOS,
	}
	for i, rec := range []models.OfflineEmergencyRecord{old, oldUnsynced} {
		raw, err := json.Marshal(rec)
		require.NoError(t, err)
		require.NoError(t, q.db.Update(func(txn *badger.Txn) error {
			return txn.Set(queueKey(uint64(i)), raw)
		}))
	}

	q.Prune()

	// the stale synced record is gone; the unsynced one survives any age
	pending, err := q.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "old-unsynced", pending[0].ID)
}

func TestDrainIsNotReentrant(t *testing.T) {
	q := newTestQueue(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	concurrent, maxConcurrent := 0, 0

	q.SetDeliver(func(ctx context.Context, rec models.OfflineEmergencyRecord) error {
		mu.Lock()
		concurrent++
		if concurrent > maxConcurrent {
			maxConcurrent = concurrent
		}
		mu.Unlock()

		select {
		case entered <- struct{}{}:
		default:
		}
		<-release

		mu.Lock()
		concurrent--
		mu.Unlock()
		return nil
	})

	_, err := q.Enqueue(1, models.EventSOS, nil, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		q.Drain(context.Background())
		close(done)
	}()

	<-entered
	// a second drain while one is in flight must return immediately
	q.Drain(context.Background())
	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxConcurrent, "overlapping drains would double-dispatch")
}
