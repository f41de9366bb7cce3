package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"safehub/models"
	"safehub/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AlertController struct {
	Alerts *services.AlertService
}

func NewAlertController(as *services.AlertService) *AlertController {
	return &AlertController{Alerts: as}
}

type createAlertReq struct {
	Category    string   `json:"category"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// POST /alerts
func (ac *AlertController) Create(c *gin.Context) {
	uid := c.GetUint("userID")

	var req createAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var loc *models.Point
	if req.Lat != nil && req.Lng != nil {
		loc = &models.Point{Lng: *req.Lng, Lat: *req.Lat}
	}

	alert, err := ac.Alerts.CreateAlert(uid, req.Category, req.Title, req.Description, loc)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, alert)
}

type updateAlertReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PUT /alerts/:id
func (ac *AlertController) Update(c *gin.Context) {
	id, err := alertID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var req updateAlertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := ac.Alerts.UpdateAlert(id, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// POST /alerts/:id/deactivate
func (ac *AlertController) Deactivate(c *gin.Context) {
	id, err := alertID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := ac.Alerts.DeactivateAlert(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /alerts
func (ac *AlertController) List(c *gin.Context) {
	alerts, err := ac.Alerts.ListActiveAlerts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func alertID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
