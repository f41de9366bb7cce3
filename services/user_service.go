package services

import (
	"errors"

	"safehub/config"
	"safehub/models"
)

type ProfileInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	MatricNo string `json:"matric_no"`
}

func GetUserProfile(userID uint) (map[string]interface{}, error) {
	var user models.User
	result := config.DB.Where("id = ? AND disabled = ?", userID, false).First(&user)
	if result.Error != nil {
		return nil, errors.New("user not found or disabled")
	}

	return map[string]interface{}{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"phone":     user.Phone,
		"matric_no": user.MatricNo,
	}, nil
}

func UpdateUserProfile(userID uint, input ProfileInput) error {
	var user models.User
	result := config.DB.Where("id = ? AND disabled = ?", userID, false).First(&user)
	if result.Error != nil {
		return errors.New("user not found or disabled")
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.MatricNo != "" {
		user.MatricNo = input.MatricNo
	}

	return config.DB.Save(&user).Error
}
