package models

import (
	"time"

	"gorm.io/gorm"
)

type TimerStatus string

const (
	TimerActive    TimerStatus = "active"
	TimerCompleted TimerStatus = "completed"
	TimerExpired   TimerStatus = "expired"
	TimerCancelled TimerStatus = "cancelled"
)

// SafetyTimer is one journey-tracking session. At most one timer per user may
// be active; completed/expired/cancelled are terminal and a new journey gets a
// new row.
type SafetyTimer struct {
	gorm.Model
	UserID            uint      `gorm:"index;not null"`
	StartTime         time.Time `gorm:"not null"`
	DurationSeconds   int       `gorm:"not null"`
	Destination       string    `gorm:"type:text;not null"`
	DestinationCoords *Point
	LastKnownLocation *Point
	Status            TimerStatus     `gorm:"size:16;index;default:'active'"`
	Guardians         []TimerGuardian `gorm:"foreignKey:TimerID"`
}

// SecondsRemaining returns the countdown left at now, never negative.
func (t *SafetyTimer) SecondsRemaining(now time.Time) int {
	remaining := t.DurationSeconds - int(now.Sub(t.StartTime).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ShouldExpire reports whether the planned duration has elapsed while the
// timer is still active.
func (t *SafetyTimer) ShouldExpire(now time.Time) bool {
	if t.Status != TimerActive {
		return false
	}
	return now.Sub(t.StartTime) >= time.Duration(t.DurationSeconds)*time.Second
}

// TimerGuardian snapshots one guardian onto one timer at start time. Name and
// contact are copied, not joined, so later guardian edits never rewrite
// history; rows are kept forever as the notification audit trail.
type TimerGuardian struct {
	gorm.Model
	TimerID        uint `gorm:"index;not null"`
	GuardianUserID *uint
	GuardianName   string
	ContactEmail   string
	ContactPhone   string
	Notified       bool `gorm:"default:false"`
}
