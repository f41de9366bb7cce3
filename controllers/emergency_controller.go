package controllers

import (
	"errors"
	"net/http"

	"safehub/models"
	"safehub/services"

	"github.com/gin-gonic/gin"
)

type EmergencyController struct {
	Emergency *services.EmergencyService
	Queue     *services.OfflineQueue
	Conn      *services.Connectivity
}

func NewEmergencyController(es *services.EmergencyService, q *services.OfflineQueue, conn *services.Connectivity) *EmergencyController {
	return &EmergencyController{Emergency: es, Queue: q, Conn: conn}
}

type triggerReq struct {
	Type    models.EmergencyEventType `json:"type" binding:"required"`
	Message string                    `json:"message"`
	Lat     *float64                  `json:"lat"`
	Lng     *float64                  `json:"lng"`
}

// POST /safety/emergency
func (ec *EmergencyController) Trigger(c *gin.Context) {
	uid := c.GetUint("userID")

	var req triggerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var loc *models.Point
	if req.Lat != nil && req.Lng != nil {
		loc = &models.Point{Lng: *req.Lng, Lat: *req.Lat}
	}

	queued, err := ec.Emergency.Trigger(c.Request.Context(), uid, req.Type, req.Message, loc)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

// GET /safety/emergency/pending
func (ec *EmergencyController) Pending(c *gin.Context) {
	records, err := ec.Queue.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "records": records})
}

type connectivityReq struct {
	Online *bool `json:"online" binding:"required"`
}

// POST /safety/connectivity
// The client reports its network state; going back online triggers a drain.
func (ec *EmergencyController) ReportConnectivity(c *gin.Context) {
	var req connectivityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ec.Conn.Set(*req.Online)
	c.JSON(http.StatusOK, gin.H{"online": *req.Online})
}
