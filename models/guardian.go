package models

import (
	"gorm.io/gorm"
)

type GuardianStatus string

const (
	GuardianPending  GuardianStatus = "pending"
	GuardianAccepted GuardianStatus = "accepted"
	GuardianDeclined GuardianStatus = "declined"
)

// Guardian is a trusted contact belonging to a user. Only accepted guardians
// are eligible for selection when a safety timer is started.
type Guardian struct {
	gorm.Model
	UserID         uint  `gorm:"index;not null"`
	GuardianUserID *uint `gorm:"index"` // set when the contact is also a registered user
	Name           string `gorm:"not null"`
	Email          string
	Phone          string
	Status         GuardianStatus `gorm:"size:16;default:'pending'"`
}
