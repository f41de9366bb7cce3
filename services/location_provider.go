package services

import (
	"sync"
	"time"

	"safehub/models"
)

// LocationSample is one position fix for one user.
type LocationSample struct {
	UserID uint
	Point  models.Point
	At     time.Time
}

// LocationProvider supplies position samples. Last is a best-effort read of
// the most recent fix; Samples streams fixes as they arrive. Providers may be
// unavailable, and callers must treat that as degraded rather than fatal.
type LocationProvider interface {
	Last(userID uint) (*models.Point, error)
	Samples() <-chan LocationSample
}

// ChannelLocationProvider is a LocationProvider fed by hand, used in tests
// and as the sink for position reports arriving over HTTP.
type ChannelLocationProvider struct {
	mu   sync.RWMutex
	last map[uint]models.Point
	ch   chan LocationSample
}

func NewChannelLocationProvider(buffer int) *ChannelLocationProvider {
	return &ChannelLocationProvider{
		last: make(map[uint]models.Point),
		ch:   make(chan LocationSample, buffer),
	}
}

// Offer records a sample and forwards it to the stream. Drops the sample if
// the stream buffer is full so a stalled consumer never blocks the producer.
func (p *ChannelLocationProvider) Offer(s LocationSample) {
	p.mu.Lock()
	p.last[s.UserID] = s.Point
	p.mu.Unlock()

	select {
	case p.ch <- s:
	default:
	}
}

func (p *ChannelLocationProvider) Last(userID uint) (*models.Point, error) {
	p.mu.RLock()
	pt, ok := p.last[userID]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrLocationUnavailable
	}
	return &pt, nil
}

func (p *ChannelLocationProvider) Samples() <-chan LocationSample {
	return p.ch
}
