package models

import "time"

// SafetyAlert is a campus-wide broadcast record. The engine does not own
// these rows; it relays changes to them over the alert bus.
type SafetyAlert struct {
	ID          uint   `gorm:"primaryKey"`
	Category    string `gorm:"size:32"` // "security" | "weather" | "infrastructure" | ...
	Title       string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"default:true;index"`
	Location    *Point
	CreatedBy   uint `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
