package services

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Connectivity tracks whether the dispatch path is reachable. Emergency
// triggers consult it to decide between direct dispatch and the offline
// queue, and the offline-to-online transition fires the reconnect hooks
// (which drain the queue).
type Connectivity struct {
	mu          sync.Mutex
	online      bool
	onReconnect []func()
}

func NewConnectivity(initial bool) *Connectivity {
	return &Connectivity{online: initial}
}

func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// OnReconnect registers a hook invoked on every offline→online transition.
func (c *Connectivity) OnReconnect(fn func()) {
	c.mu.Lock()
	c.onReconnect = append(c.onReconnect, fn)
	c.mu.Unlock()
}

// Set records the current state. Hooks run on their own goroutine so a long
// drain never blocks whoever reported the transition.
func (c *Connectivity) Set(online bool) {
	c.mu.Lock()
	wasOnline := c.online
	c.online = online
	hooks := c.onReconnect
	c.mu.Unlock()

	if online && !wasOnline {
		zap.L().Info("connectivity restored")
		for _, fn := range hooks {
			go fn()
		}
	} else if !online && wasOnline {
		zap.L().Warn("connectivity lost")
	}
}

// StartProbe polls the probe until the context ends, feeding results into
// Set. A failed iteration just waits for the next tick.
func (c *Connectivity) StartProbe(ctx context.Context, interval time.Duration, probe func() bool) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Set(probe())
			}
		}
	}()
}

// DialProbe reports whether addr accepts a TCP connection within timeout.
func DialProbe(addr string, timeout time.Duration) func() bool {
	return func() bool {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}
