package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"safehub/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TimerController struct {
	Timers *services.TimerService
}

func NewTimerController(ts *services.TimerService) *TimerController {
	return &TimerController{Timers: ts}
}

type startTimerReq struct {
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
	Destination     string `json:"destination" binding:"required"`
	GuardianIDs     []uint `json:"guardian_ids"`
}

// POST /safety/timer
func (tc *TimerController) Start(c *gin.Context) {
	uid := c.GetUint("userID")

	var req startTimerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// minutes at the API boundary, seconds everywhere else
	timer, err := tc.Timers.StartTimer(uid, req.DurationMinutes*60, req.Destination, req.GuardianIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"timer":             timer,
		"seconds_remaining": timer.SecondsRemaining(time.Now()),
	})
}

// POST /safety/timer/:id/stop
func (tc *TimerController) Stop(c *gin.Context) {
	tc.finish(c, tc.Timers.StopTimer)
}

// POST /safety/timer/:id/cancel
func (tc *TimerController) Cancel(c *gin.Context) {
	tc.finish(c, tc.Timers.CancelTimer)
}

func (tc *TimerController) finish(c *gin.Context, op func(uint) error) {
	id, err := timerID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timer id"})
		return
	}

	if err := op(id); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidState):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

type locationReq struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

// PATCH /safety/timer/:id/location
func (tc *TimerController) UpdateLocation(c *gin.Context) {
	id, err := timerID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timer id"})
		return
	}

	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tc.Timers.UpdateLocation(id, req.Lat, req.Lng); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /safety/timer/active
func (tc *TimerController) Active(c *gin.Context) {
	uid := c.GetUint("userID")

	timer, err := tc.Timers.ActiveTimer(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active timer"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timer":             timer,
		"seconds_remaining": timer.SecondsRemaining(time.Now()),
	})
}

// GET /safety/timer/history
func (tc *TimerController) History(c *gin.Context) {
	uid := c.GetUint("userID")

	timers, err := tc.Timers.ListTimers(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, timers)
}

func timerID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
