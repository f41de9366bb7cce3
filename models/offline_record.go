package models

import (
	"encoding/json"
	"time"
)

type EmergencyEventType string

const (
	EventSOS         EmergencyEventType = "sos"
	EventSafetyTimer EmergencyEventType = "safety_timer"
	EventIncident    EmergencyEventType = "incident"
)

// OfflineEmergencyRecord is an emergency event captured while disconnected,
// held in the local queue until a drain delivers it. Records stay queued
// until synced, and synced records are only garbage-collected after the
// retention window.
type OfflineEmergencyRecord struct {
	ID        string             `json:"id"`
	UserID    uint               `json:"user_id"`
	CreatedAt time.Time          `json:"created_at"`
	Type      EmergencyEventType `json:"type"`
	Location  *Point             `json:"location,omitempty"`
	Data      json.RawMessage    `json:"data,omitempty"`
	Synced    bool               `json:"synced"`
}
