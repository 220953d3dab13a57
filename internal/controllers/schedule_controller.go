package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shuttle_admin/internal/models"
	"shuttle_admin/internal/services"
)

type ScheduleController struct {
	DB        *gorm.DB
	Generator *services.TemplateGenerator
}

// CreateSchedule attaches a route and a vehicle to a recurrence pattern.
func (sc *ScheduleController) CreateSchedule(c *gin.Context) {
	var input struct {
		Name       string `json:"name" binding:"required"`
		RouteID    uint   `json:"route_id" binding:"required"`
		VehicleID  uint   `json:"vehicle_id"`
		Recurrence string `json:"recurrence"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	db := sc.DB.WithContext(c.Request.Context())
	if err := db.Select("id").First(&models.Route{}, input.RouteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Route does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if input.VehicleID != 0 {
		if err := db.Select("id").First(&models.Vehicle{}, input.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle does not exist"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
	}

	schedule := models.Schedule{
		Name:       input.Name,
		RouteID:    input.RouteID,
		VehicleID:  input.VehicleID,
		Recurrence: input.Recurrence,
	}
	if err := db.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create schedule: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func (sc *ScheduleController) GetSchedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var schedule models.Schedule
	if err := sc.DB.WithContext(c.Request.Context()).First(&schedule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// GenerateTemplates expands the schedule's route into every directed trip variant.
func (sc *ScheduleController) GenerateTemplates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input struct {
		DriverID  uint `json:"driver_id" binding:"required"`
		VehicleID uint `json:"vehicle_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	views, err := sc.Generator.Generate(c.Request.Context(), services.GenerateRequest{
		ScheduleID: id,
		DriverID:   input.DriverID,
		VehicleID:  input.VehicleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"templates": views})
}

func (sc *ScheduleController) ListTemplates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	views, err := sc.Generator.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": views})
}
