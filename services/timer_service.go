package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"safehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TimerService owns the safety-timer lifecycle: start, stop, cancel, location
// updates and the expiry test-and-set the tick loop drives.
type TimerService struct {
	db       *gorm.DB
	location LocationProvider // nil when no provider is configured
}

func NewTimerService(db *gorm.DB, location LocationProvider) *TimerService {
	return &TimerService{db: db, location: location}
}

// StartTimer creates one active timer for the user and snapshots the chosen
// guardians onto it in the same transaction. Position capture is best-effort;
// a missing fix never blocks the start. Zero guardians is legal.
func (s *TimerService) StartTimer(userID uint, durationSeconds int, destination string, guardianIDs []uint) (*models.SafetyTimer, error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	if strings.TrimSpace(destination) == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrValidation)
	}

	var count int64
	if err := s.db.Model(&models.SafetyTimer{}).
		Where("user_id = ? AND status = ?", userID, models.TimerActive).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrConflict
	}

	timer := &models.SafetyTimer{
		UserID:          userID,
		StartTime:       time.Now(),
		DurationSeconds: durationSeconds,
		Destination:     destination,
		Status:          models.TimerActive,
	}

	if s.location != nil {
		if pt, err := s.location.Last(userID); err == nil {
			timer.LastKnownLocation = pt
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(timer).Error; err != nil {
			return err
		}
		if len(guardianIDs) == 0 {
			return nil
		}

		var guardians []models.Guardian
		if err := tx.
			Where("user_id = ? AND id IN ? AND status = ?", userID, guardianIDs, models.GuardianAccepted).
			Find(&guardians).Error; err != nil {
			return err
		}

		// copy name/contact now; later guardian edits must not rewrite history
		for _, g := range guardians {
			snap := models.TimerGuardian{
				TimerID:        timer.ID,
				GuardianUserID: g.GuardianUserID,
				GuardianName:   g.Name,
				ContactEmail:   g.Email,
				ContactPhone:   g.Phone,
			}
			if err := tx.Create(&snap).Error; err != nil {
				return err
			}
			timer.Guardians = append(timer.Guardians, snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("safety timer started",
		zap.Uint("timerID", timer.ID),
		zap.Uint("userID", userID),
		zap.Int("durationSeconds", durationSeconds),
		zap.Int("guardians", len(timer.Guardians)),
	)
	return timer, nil
}

// StopTimer marks an active timer completed. The update is conditional on
// status so a racing expiry check cannot be overwritten; whichever write
// lands first wins and the loser gets ErrInvalidState.
func (s *TimerService) StopTimer(timerID uint) error {
	return s.transition(timerID, models.TimerCompleted)
}

// CancelTimer marks an active timer cancelled.
func (s *TimerService) CancelTimer(timerID uint) error {
	return s.transition(timerID, models.TimerCancelled)
}

func (s *TimerService) transition(timerID uint, to models.TimerStatus) error {
	res := s.db.Model(&models.SafetyTimer{}).
		Where("id = ? AND status = ?", timerID, models.TimerActive).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existing models.SafetyTimer
		if err := s.db.First(&existing, timerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: timer %d not found", ErrValidation, timerID)
			}
			return err
		}
		return ErrInvalidState
	}
	return nil
}

// Expire applies the active→expired transition as a test-and-set. Returns
// true only for the write that actually landed, so notification fires exactly
// once per expiration even when a manual stop races the same instant.
func (s *TimerService) Expire(timerID uint) (bool, error) {
	res := s.db.Model(&models.SafetyTimer{}).
		Where("id = ? AND status = ?", timerID, models.TimerActive).
		Update("status", models.TimerExpired)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateLocation overwrites the last-known position of an active timer.
// No-op when the timer is terminal; never affects expiration accounting.
func (s *TimerService) UpdateLocation(timerID uint, lat, lng float64) error {
	return s.db.Model(&models.SafetyTimer{}).
		Where("id = ? AND status = ?", timerID, models.TimerActive).
		Update("last_known_location", models.Point{Lng: lng, Lat: lat}).Error
}

// ActiveTimer returns the user's active timer with its guardian snapshots,
// or gorm.ErrRecordNotFound.
func (s *TimerService) ActiveTimer(userID uint) (*models.SafetyTimer, error) {
	var timer models.SafetyTimer
	err := s.db.Preload("Guardians").
		Where("user_id = ? AND status = ?", userID, models.TimerActive).
		First(&timer).Error
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

// ActiveTimers returns every active timer. The tick loop evaluates these once
// per second.
func (s *TimerService) ActiveTimers() ([]models.SafetyTimer, error) {
	var timers []models.SafetyTimer
	err := s.db.Where("status = ?", models.TimerActive).Find(&timers).Error
	return timers, err
}

// ListTimers returns the user's timer history, newest first.
func (s *TimerService) ListTimers(userID uint) ([]models.SafetyTimer, error) {
	var timers []models.SafetyTimer
	err := s.db.Preload("Guardians").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&timers).Error
	return timers, err
}

// GetTimer returns one timer with snapshots.
func (s *TimerService) GetTimer(timerID uint) (*models.SafetyTimer, error) {
	var timer models.SafetyTimer
	if err := s.db.Preload("Guardians").First(&timer, timerID).Error; err != nil {
		return nil, err
	}
	return &timer, nil
}
