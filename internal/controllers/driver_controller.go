package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle_admin/internal/models"
)

// CreateDriver registers a driver that templates can be assigned to.
func (fc *FleetController) CreateDriver(c *gin.Context) {
	var input struct {
		Name          string `json:"name" binding:"required"`
		Phone         string `json:"phone"`
		LicenseNumber string `json:"license_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}

	driver := models.Driver{
		Name:          input.Name,
		Phone:         input.Phone,
		LicenseNumber: input.LicenseNumber,
	}
	if err := fc.DB.WithContext(c.Request.Context()).Create(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// ListDrivers fetches all drivers.
func (fc *FleetController) ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := fc.DB.WithContext(c.Request.Context()).Order("id").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}
