package services

import (
	"fmt"
	"strings"

	"safehub/models"

	"gorm.io/gorm"
)

// AlertService persists campus-wide safety alerts and relays every change
// onto the alert bus.
type AlertService struct {
	db  *gorm.DB
	bus *AlertBus
}

func NewAlertService(db *gorm.DB, bus *AlertBus) *AlertService {
	return &AlertService{db: db, bus: bus}
}

func (s *AlertService) CreateAlert(createdBy uint, category, title, description string, loc *models.Point) (*models.SafetyAlert, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: alert title is required", ErrValidation)
	}

	alert := &models.SafetyAlert{
		Category:    category,
		Title:       title,
		Description: description,
		Active:      true,
		Location:    loc,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, err
	}
	s.bus.PublishInsert(*alert)
	return alert, nil
}

func (s *AlertService) UpdateAlert(alertID uint, title, description string) (*models.SafetyAlert, error) {
	var alert models.SafetyAlert
	if err := s.db.First(&alert, alertID).Error; err != nil {
		return nil, err
	}
	if title != "" {
		alert.Title = title
	}
	if description != "" {
		alert.Description = description
	}
	if err := s.db.Save(&alert).Error; err != nil {
		return nil, err
	}
	s.bus.PublishUpdate(alert)
	return &alert, nil
}

// DeactivateAlert keeps the row but drops it from the active feed.
func (s *AlertService) DeactivateAlert(alertID uint) error {
	var alert models.SafetyAlert
	if err := s.db.First(&alert, alertID).Error; err != nil {
		return err
	}
	alert.Active = false
	if err := s.db.Save(&alert).Error; err != nil {
		return err
	}
	s.bus.PublishUpdate(alert)
	return nil
}

func (s *AlertService) DeleteAlert(alertID uint) error {
	var alert models.SafetyAlert
	if err := s.db.First(&alert, alertID).Error; err != nil {
		return err
	}
	if err := s.db.Delete(&alert).Error; err != nil {
		return err
	}
	s.bus.PublishDelete(alert)
	return nil
}

func (s *AlertService) ListActiveAlerts() ([]models.SafetyAlert, error) {
	var alerts []models.SafetyAlert
	err := s.db.Where("active = ?", true).Order("created_at desc").Find(&alerts).Error
	return alerts, err
}
