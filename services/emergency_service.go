package services

import (
	"context"
	"encoding/json"
	"fmt"

	"safehub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmergencyService is the single entry point for emergency-triggering
// actions. Online, events go straight to the guardians; offline, they land
// in the queue, and the queue's drain replays them through the same deliver
// path, so no emergency is ever silently dropped.
type EmergencyService struct {
	db         *gorm.DB
	guardians  *GuardianService
	dispatcher Dispatcher
	queue      *OfflineQueue
	conn       *Connectivity
}

func NewEmergencyService(db *gorm.DB, guardians *GuardianService, dispatcher Dispatcher, queue *OfflineQueue, conn *Connectivity) *EmergencyService {
	s := &EmergencyService{
		db:         db,
		guardians:  guardians,
		dispatcher: dispatcher,
		queue:      queue,
		conn:       conn,
	}
	if queue != nil {
		queue.SetDeliver(s.deliver)
	}
	return s
}

type emergencyPayload struct {
	Message string `json:"message"`
}

// Trigger fires an emergency for the user. Returns queued=true when the
// event was captured offline instead of dispatched.
func (s *EmergencyService) Trigger(ctx context.Context, userID uint, typ models.EmergencyEventType, message string, loc *models.Point) (queued bool, err error) {
	switch typ {
	case models.EventSOS, models.EventSafetyTimer, models.EventIncident:
	default:
		return false, fmt.Errorf("%w: unknown emergency type %q", ErrValidation, typ)
	}

	payload, _ := json.Marshal(emergencyPayload{Message: message})
	rec := models.OfflineEmergencyRecord{
		UserID:   userID,
		Type:     typ,
		Location: loc,
		Data:     payload,
	}

	if s.conn != nil && !s.conn.Online() {
		_, err := s.queue.Enqueue(userID, typ, payload, loc)
		return true, err
	}

	if err := s.deliver(ctx, rec); err != nil {
		// delivery failed while nominally online: capture it anyway
		zap.L().Warn("direct emergency dispatch failed, queueing", zap.Uint("userID", userID), zap.Error(err))
		if s.queue != nil {
			if _, qerr := s.queue.Enqueue(userID, typ, payload, loc); qerr == nil {
				return true, nil
			}
		}
		return false, err
	}
	return false, nil
}

// deliver fans one emergency event out to the user's accepted guardians.
// This is also the drain path for queued records.
func (s *EmergencyService) deliver(ctx context.Context, rec models.OfflineEmergencyRecord) error {
	guardians, err := s.guardians.AcceptedGuardians(rec.UserID)
	if err != nil {
		return err
	}
	if len(guardians) == 0 {
		// nothing to notify; the event is still considered handled
		zap.L().Info("emergency with no accepted guardians", zap.Uint("userID", rec.UserID))
		return nil
	}

	var msg emergencyPayload
	_ = json.Unmarshal(rec.Data, &msg)
	text := msg.Message
	if text == "" {
		text = fmt.Sprintf("%s needs help (%s alert).", timerOwnerName(s.db, rec.UserID), rec.Type)
	}
	if rec.Location != nil {
		text += fmt.Sprintf(" Last known location: %s.", rec.Location)
	}

	delivered := 0
	var lastErr error
	for _, g := range guardians {
		err := s.dispatcher.Dispatch(ctx, Notification{
			UserID:       rec.UserID,
			LinkedUserID: g.GuardianUserID,
			Name:         g.Name,
			Email:        g.Email,
			Phone:        g.Phone,
			Alert: AlertData{
				Type:     string(rec.Type),
				Message:  text,
				Location: rec.Location,
				Urgency:  "high",
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		delivered++
	}

	// the event counts as delivered once any guardian was reached
	if delivered == 0 && lastErr != nil {
		return lastErr
	}
	return nil
}
