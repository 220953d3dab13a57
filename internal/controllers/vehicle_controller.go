package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shuttle_admin/internal/models"
)

type FleetController struct {
	DB *gorm.DB
}

// CreateVehicle registers a vehicle; InService defaults to true
func (fc *FleetController) CreateVehicle(c *gin.Context) {
	var input struct {
		VehicleNo           string `json:"vehicle_no" binding:"required"`
		VehicleRegistration string `json:"vehicle_registration" binding:"required"`
		Seats               int    `json:"seats" binding:"gte=0"`
		InService           *bool  `json:"in_service"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		VehicleNo:           input.VehicleNo,
		VehicleRegistration: input.VehicleRegistration,
		Seats:               input.Seats,
		InService:           true,
	}
	if input.InService != nil {
		vehicle.InService = *input.InService
	}

	if err := fc.DB.WithContext(c.Request.Context()).Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func (fc *FleetController) ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := fc.DB.WithContext(c.Request.Context()).Order("id").Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}
