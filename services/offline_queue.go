package services

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync/atomic"
	"time"

	"safehub/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	queuePrefix    = "emq:"
	queueRetention = 24 * time.Hour
)

// DeliverFunc pushes one queued record through the normal emergency dispatch
// path. Returning an error leaves the record unsynced for the next drain.
type DeliverFunc func(ctx context.Context, rec models.OfflineEmergencyRecord) error

// OfflineQueue buffers emergency events while disconnected. Records are
// keyed by a monotonic sequence so iteration replays them in insertion
// order, and the backing badger store survives process restarts.
type OfflineQueue struct {
	db       *badger.DB
	seq      *badger.Sequence
	deliver  DeliverFunc
	draining atomic.Bool
}

func NewOfflineQueue(db *badger.DB) (*OfflineQueue, error) {
	seq, err := db.GetSequence([]byte("emq-seq"), 64)
	if err != nil {
		return nil, err
	}
	return &OfflineQueue{db: db, seq: seq}, nil
}

// SetDeliver installs the dispatch path used by Drain. Must be called before
// the first drain.
func (q *OfflineQueue) SetDeliver(fn DeliverFunc) {
	q.deliver = fn
}

func (q *OfflineQueue) Close() error {
	if q.seq != nil {
		if err := q.seq.Release(); err != nil {
			return err
		}
	}
	return nil
}

// Enqueue stores the event locally and returns its id. No network delivery
// is attempted here; that is Drain's job.
func (q *OfflineQueue) Enqueue(userID uint, typ models.EmergencyEventType, payload json.RawMessage, loc *models.Point) (string, error) {
	rec := models.OfflineEmergencyRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
		Type:      typ,
		Location:  loc,
		Data:      payload,
	}

	n, err := q.seq.Next()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	err = q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(queueKey(n), raw)
	})
	if err != nil {
		return "", err
	}

	zap.L().Info("emergency event queued offline",
		zap.String("recordID", rec.ID),
		zap.String("type", string(typ)),
		zap.Uint("userID", userID),
	)
	return rec.ID, nil
}

// Drain replays unsynced records in FIFO order through the dispatch path.
// Only one drain runs at a time; a re-entrant call returns immediately.
// Records that fail stay unsynced so the next drain retries them, then a
// prune pass collects old synced records.
func (q *OfflineQueue) Drain(ctx context.Context) {
	if !q.draining.CompareAndSwap(false, true) {
		return
	}
	defer q.draining.Store(false)

	if q.deliver == nil {
		zap.L().Warn("offline queue drain skipped: no dispatch path bound")
		return
	}

	type pending struct {
		key []byte
		rec models.OfflineEmergencyRecord
	}
	var todo []pending

	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(queuePrefix)); it.ValidForPrefix([]byte(queuePrefix)); it.Next() {
			item := it.Item()
			var rec models.OfflineEmergencyRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				zap.L().Error("skipping corrupt queue record", zap.Error(err))
				continue
			}
			if rec.Synced {
				continue
			}
			todo = append(todo, pending{key: item.KeyCopy(nil), rec: rec})
		}
		return nil
	})
	if err != nil {
		zap.L().Error("offline queue scan failed", zap.Error(err))
		return
	}

	delivered := 0
	for _, p := range todo {
		if ctx.Err() != nil {
			break
		}
		if err := q.deliver(ctx, p.rec); err != nil {
			zap.L().Warn("queued emergency dispatch failed, keeping record",
				zap.String("recordID", p.rec.ID),
				zap.Error(err),
			)
			continue
		}
		p.rec.Synced = true
		raw, _ := json.Marshal(p.rec)
		if err := q.db.Update(func(txn *badger.Txn) error {
			return txn.Set(p.key, raw)
		}); err != nil {
			zap.L().Error("marking record synced failed", zap.String("recordID", p.rec.ID), zap.Error(err))
			continue
		}
		delivered++
	}

	if delivered > 0 {
		zap.L().Info("offline queue drained", zap.Int("delivered", delivered), zap.Int("pendingBefore", len(todo)))
	}

	q.Prune()
}

// Prune deletes synced records older than the retention window. Unsynced
// records are never touched regardless of age.
func (q *OfflineQueue) Prune() {
	cutoff := time.Now().Add(-queueRetention)

	var stale [][]byte
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(queuePrefix)); it.ValidForPrefix([]byte(queuePrefix)); it.Next() {
			item := it.Item()
			var rec models.OfflineEmergencyRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			if rec.Synced && rec.CreatedAt.Before(cutoff) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("offline queue prune scan failed", zap.Error(err))
		return
	}

	for _, key := range stale {
		if err := q.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		}); err != nil {
			zap.L().Error("offline queue prune delete failed", zap.Error(err))
		}
	}
}

// ListPending returns unsynced records in insertion order, the backing data
// for the pending-count indicator.
func (q *OfflineQueue) ListPending() ([]models.OfflineEmergencyRecord, error) {
	var out []models.OfflineEmergencyRecord
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(queuePrefix)); it.ValidForPrefix([]byte(queuePrefix)); it.Next() {
			var rec models.OfflineEmergencyRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			if !rec.Synced {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

func queueKey(n uint64) []byte {
	key := make([]byte, len(queuePrefix)+8)
	copy(key, queuePrefix)
	binary.BigEndian.PutUint64(key[len(queuePrefix):], n)
	return key
}
