package services

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the engine. Controllers map these onto HTTP
// statuses; background loops log and carry on.
var (
	// ErrValidation rejects bad input before any write happens.
	ErrValidation = errors.New("invalid input")

	// ErrConflict means the user already has an active safety timer.
	ErrConflict = errors.New("an active safety timer already exists")

	// ErrInvalidState means the timer is already terminal.
	ErrInvalidState = errors.New("timer is no longer active")

	// ErrLocationUnavailable means no position could be captured. Timer
	// operations degrade gracefully rather than failing on it.
	ErrLocationUnavailable = errors.New("location unavailable")
)

// DispatchError is a transient notification failure. It is recorded
// per-guardian or left in the offline queue for a later retry, never turned
// into a user-visible failure.
type DispatchError struct {
	Channel string // "sms" | "email" | "push"
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("dispatch via %s failed: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
