package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"safehub/services"

	"github.com/gin-gonic/gin"
)

type GuardianController struct {
	Guardians *services.GuardianService
}

func NewGuardianController(gs *services.GuardianService) *GuardianController {
	return &GuardianController{Guardians: gs}
}

type addGuardianReq struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	GuardianUserID *uint  `json:"guardian_user_id"`
}

// POST /guardians
func (gc *GuardianController) Add(c *gin.Context) {
	uid := c.GetUint("userID")

	var req addGuardianReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := gc.Guardians.AddGuardian(uid, req.Name, req.Email, req.Phone, req.GuardianUserID)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, g)
}

// GET /guardians
func (gc *GuardianController) List(c *gin.Context) {
	uid := c.GetUint("userID")

	guardians, err := gc.Guardians.ListGuardians(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, guardians)
}

// DELETE /guardians/:id
func (gc *GuardianController) Delete(c *gin.Context) {
	uid := c.GetUint("userID")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid guardian id"})
		return
	}

	if err := gc.Guardians.DeleteGuardian(uid, uint(id)); err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
