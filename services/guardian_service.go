package services

import (
	"fmt"
	"strings"

	"safehub/models"

	"gorm.io/gorm"
)

// GuardianService manages a user's trusted contacts.
type GuardianService struct {
	db *gorm.DB
}

func NewGuardianService(db *gorm.DB) *GuardianService {
	return &GuardianService{db: db}
}

// AddGuardian creates a contact in accepted status. An invitation flow would
// start guardians out pending instead; none exists yet, so new contacts are
// immediately eligible.
func (s *GuardianService) AddGuardian(userID uint, name, email, phone string, linkedUserID *uint) (*models.Guardian, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: guardian name is required", ErrValidation)
	}
	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("%w: guardian needs an email or a phone number", ErrValidation)
	}

	g := &models.Guardian{
		UserID:         userID,
		GuardianUserID: linkedUserID,
		Name:           name,
		Email:          strings.TrimSpace(email),
		Phone:          strings.TrimSpace(phone),
		Status:         models.GuardianAccepted,
	}
	if err := s.db.Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GuardianService) ListGuardians(userID uint) ([]models.Guardian, error) {
	var guardians []models.Guardian
	err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&guardians).Error
	return guardians, err
}

// AcceptedGuardians returns the user's guardians eligible for notification.
func (s *GuardianService) AcceptedGuardians(userID uint) ([]models.Guardian, error) {
	var guardians []models.Guardian
	err := s.db.
		Where("user_id = ? AND status = ?", userID, models.GuardianAccepted).
		Find(&guardians).Error
	return guardians, err
}

// DeleteGuardian removes a contact owned by the user. Historical
// TimerGuardian snapshots are left untouched.
func (s *GuardianService) DeleteGuardian(userID, guardianID uint) error {
	res := s.db.Where("user_id = ?", userID).Delete(&models.Guardian{}, guardianID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: guardian %d not found", ErrValidation, guardianID)
	}
	return nil
}
