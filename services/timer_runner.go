package services

import (
	"context"
	"time"

	"safehub/models"

	"go.uber.org/zap"
)

// TimerRunner owns the two background loops of the engine: the tick loop
// that expires overdue timers, and the location watch that folds incoming
// position samples into the owner's active timer. Each loop runs on its own
// goroutine and a failed iteration is logged, never fatal.
type TimerRunner struct {
	timers   *TimerService
	notifier *GuardianNotifier
	location LocationProvider // nil disables the watch loop
	interval time.Duration
}

func NewTimerRunner(timers *TimerService, notifier *GuardianNotifier, location LocationProvider) *TimerRunner {
	return &TimerRunner{
		timers:   timers,
		notifier: notifier,
		location: location,
		interval: time.Second,
	}
}

// Start launches both loops. They stop when ctx is cancelled.
func (r *TimerRunner) Start(ctx context.Context) {
	go r.tickLoop(ctx)
	if r.location != nil {
		go r.watchLoop(ctx)
	}
}

func (r *TimerRunner) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick expires every overdue active timer. The expiry is a conditional
// update, so if a manual stop lands the same instant only one terminal
// status survives, and only the winning expiry fires the notifier. The
// notification runs on its own goroutine; the tick loop never awaits a send.
func (r *TimerRunner) tick(ctx context.Context) {
	timers, err := r.timers.ActiveTimers()
	if err != nil {
		zap.L().Error("tick: listing active timers failed", zap.Error(err))
		return
	}

	now := time.Now()
	for i := range timers {
		t := timers[i]
		if !t.ShouldExpire(now) {
			continue
		}
		applied, err := r.timers.Expire(t.ID)
		if err != nil {
			zap.L().Error("tick: expiring timer failed", zap.Uint("timerID", t.ID), zap.Error(err))
			continue
		}
		if !applied {
			// lost the race to a manual stop or cancel; drop our effect
			continue
		}

		zap.L().Info("safety timer expired", zap.Uint("timerID", t.ID), zap.Uint("userID", t.UserID))
		expired := t
		expired.Status = models.TimerExpired
		go r.notifier.NotifyGuardians(ctx, &expired)
	}
}

// watchLoop persists each incoming sample onto the owner's active timer,
// fire-and-forget: a failed write never stops later samples.
func (r *TimerRunner) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-r.location.Samples():
			if !ok {
				return
			}
			timer, err := r.timers.ActiveTimer(sample.UserID)
			if err != nil {
				continue // no active journey for this user
			}
			if err := r.timers.UpdateLocation(timer.ID, sample.Point.Lat, sample.Point.Lng); err != nil {
				zap.L().Warn("location update failed",
					zap.Uint("timerID", timer.ID),
					zap.Error(err),
				)
			}
		}
	}
}
