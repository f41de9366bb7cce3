package services

import (
	"sync"

	"safehub/models"
)

// SubscriptionHandle identifies one alert-bus subscription.
type SubscriptionHandle uint64

// AlertBus fans out campus-wide SafetyAlert changes to live observers.
// Events are delivered in publish order with no replay: a new subscriber
// sees only what happens after it subscribed, so callers wanting the current
// snapshot fetch it first and then subscribe.
//
// Callbacks run synchronously on the publisher's goroutine and must be
// quick; the websocket bridge just hands the payload to the hub.
type AlertBus struct {
	mu   sync.RWMutex
	subs map[SubscriptionHandle]alertSubscriber
	next SubscriptionHandle
}

type alertSubscriber struct {
	onInsert func(models.SafetyAlert)
	onUpdate func(models.SafetyAlert)
	onDelete func(models.SafetyAlert)
}

func NewAlertBus() *AlertBus {
	return &AlertBus{subs: make(map[SubscriptionHandle]alertSubscriber)}
}

// Subscribe registers change callbacks; any of them may be nil.
func (b *AlertBus) Subscribe(onInsert, onUpdate, onDelete func(models.SafetyAlert)) SubscriptionHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := b.next
	b.subs[h] = alertSubscriber{onInsert: onInsert, onUpdate: onUpdate, onDelete: onDelete}
	return h
}

func (b *AlertBus) Unsubscribe(h SubscriptionHandle) {
	b.mu.Lock()
	delete(b.subs, h)
	b.mu.Unlock()
}

func (b *AlertBus) PublishInsert(alert models.SafetyAlert) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.onInsert != nil {
			s.onInsert(alert)
		}
	}
}

func (b *AlertBus) PublishUpdate(alert models.SafetyAlert) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.onUpdate != nil {
			s.onUpdate(alert)
		}
	}
}

func (b *AlertBus) PublishDelete(alert models.SafetyAlert) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.onDelete != nil {
			s.onDelete(alert)
		}
	}
}
