package services

import (
	"context"
	"fmt"

	"safehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GuardianOutcome is the delivery result for one TimerGuardian snapshot.
type GuardianOutcome struct {
	TimerGuardianID uint   `json:"timer_guardian_id"`
	Name            string `json:"name"`
	Notified        bool   `json:"notified"`
	Reason          string `json:"reason,omitempty"` // failure reason, empty on success
}

// NotificationOutcome lists per-guardian results of one notification pass.
type NotificationOutcome struct {
	TimerID  uint              `json:"timer_id"`
	Outcomes []GuardianOutcome `json:"outcomes"`
}

// Notified reports how many guardians were reached.
func (o NotificationOutcome) Notified() int {
	n := 0
	for _, g := range o.Outcomes {
		if g.Notified {
			n++
		}
	}
	return n
}

// GuardianNotifier drives best-effort delivery to a triggered timer's
// guardian snapshots. Outcomes are independent: one guardian failing never
// fails the batch, and nothing here retries; retries belong to the caller
// or the offline queue.
type GuardianNotifier struct {
	db         *gorm.DB
	dispatcher Dispatcher
}

func NewGuardianNotifier(db *gorm.DB, dispatcher Dispatcher) *GuardianNotifier {
	return &GuardianNotifier{db: db, dispatcher: dispatcher}
}

// NotifyGuardians runs one delivery attempt per snapshot and flips notified
// on the rows that were reached. Called exactly once per expiration event.
func (n *GuardianNotifier) NotifyGuardians(ctx context.Context, timer *models.SafetyTimer) NotificationOutcome {
	outcome := NotificationOutcome{TimerID: timer.ID}

	var snapshots []models.TimerGuardian
	if err := n.db.Where("timer_id = ?", timer.ID).Order("id").Find(&snapshots).Error; err != nil {
		zap.L().Error("loading guardian snapshots failed", zap.Uint("timerID", timer.ID), zap.Error(err))
		return outcome
	}

	message := fmt.Sprintf(
		"%s's safety timer expired without a check-in. Planned destination: %s.",
		timerOwnerName(n.db, timer.UserID), timer.Destination,
	)
	if timer.LastKnownLocation != nil {
		message += fmt.Sprintf(" Last known location: %s.", timer.LastKnownLocation)
	}

	for _, snap := range snapshots {
		res := GuardianOutcome{TimerGuardianID: snap.ID, Name: snap.GuardianName}

		err := n.dispatcher.Dispatch(ctx, Notification{
			UserID:       timer.UserID,
			LinkedUserID: snap.GuardianUserID,
			Name:         snap.GuardianName,
			Email:        snap.ContactEmail,
			Phone:        snap.ContactPhone,
			Alert: AlertData{
				Type:     string(models.EventSafetyTimer),
				Message:  message,
				Location: timer.LastKnownLocation,
				Urgency:  "high",
			},
		})
		if err != nil {
			res.Reason = err.Error()
			zap.L().Warn("guardian dispatch failed",
				zap.Uint("timerID", timer.ID),
				zap.String("guardian", snap.GuardianName),
				zap.Error(err),
			)
		} else {
			res.Notified = true
			if dbErr := n.db.Model(&models.TimerGuardian{}).
				Where("id = ?", snap.ID).
				Update("notified", true).Error; dbErr != nil {
				zap.L().Error("marking guardian notified failed", zap.Uint("snapshotID", snap.ID), zap.Error(dbErr))
			}
		}
		outcome.Outcomes = append(outcome.Outcomes, res)
	}

	zap.L().Info("guardian notification pass finished",
		zap.Uint("timerID", timer.ID),
		zap.Int("reached", outcome.Notified()),
		zap.Int("total", len(outcome.Outcomes)),
	)
	return outcome
}

func timerOwnerName(db *gorm.DB, userID uint) string {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil || user.FullName == "" {
		return "A SafeHub user"
	}
	return user.FullName
}
