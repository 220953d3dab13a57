package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shuttle_admin/internal/models"
	"shuttle_admin/internal/services"
)

// StopResponse mirrors models.Stop with the location as GeoJSON.
type StopResponse struct {
	ID        uint      `json:"ID"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	Location  string    `json:"location,omitempty"`
}

func toStopResponse(s models.Stop) StopResponse {
	loc, err := wkbToGeoJSON(s.Location)
	if err != nil {
		logrus.WithError(err).WithField("stop_id", s.ID).Warn("stop has unreadable location")
	}
	return StopResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Name:      s.Name,
		IsActive:  s.IsActive,
		Location:  loc,
	}
}

// StopController owns stop writes. Every write that may change the active
// stop set is followed by a route pair reconciliation.
type StopController struct {
	DB    *gorm.DB
	Pairs *services.RoutePairService
}

type stopInput struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
	Location *string `json:"location"` // GeoJSON Point
}

// CreateStop adds a stop; it is active unless is_active=false is sent.
func (sc *StopController) CreateStop(c *gin.Context) {
	var input stopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Name == nil || *input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	stop := models.Stop{Name: *input.Name, IsActive: true}
	if err := applyStopInput(&stop, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.DB.WithContext(c.Request.Context()).Create(&stop).Error; err != nil {
		logrus.WithError(err).Error("CreateStop: insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create stop failed: " + err.Error()})
		return
	}

	sc.reconcileAndRespond(c, http.StatusCreated, stop)
}

// ListStops returns every live stop, active or not.
func (sc *StopController) ListStops(c *gin.Context) {
	var stops []models.Stop
	if err := sc.DB.WithContext(c.Request.Context()).Order("id").Find(&stops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing stops: " + err.Error()})
		return
	}
	resp := make([]StopResponse, 0, len(stops))
	for _, s := range stops {
		resp = append(resp, toStopResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateStop changes name, activity or location.
func (sc *StopController) UpdateStop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var stop models.Stop
	if err := sc.DB.WithContext(c.Request.Context()).First(&stop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stop not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input stopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Name != nil && *input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}
	if input.Name != nil {
		stop.Name = *input.Name
	}
	if err := applyStopInput(&stop, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.DB.WithContext(c.Request.Context()).Save(&stop).Error; err != nil {
		logrus.WithError(err).Error("UpdateStop: save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}

	sc.reconcileAndRespond(c, http.StatusOK, stop)
}

// DeleteStop soft-deletes a stop.
func (sc *StopController) DeleteStop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result := sc.DB.WithContext(c.Request.Context()).Delete(&models.Stop{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stop: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stop not found"})
		return
	}

	res, err := sc.Pairs.Reconcile(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stop deleted", "route_pairs": res})
}

func (sc *StopController) reconcileAndRespond(c *gin.Context, status int, stop models.Stop) {
	res, err := sc.Pairs.Reconcile(c.Request.Context())
	if err != nil {
		// The stop write is committed; a later reconcile call repairs the pairs.
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"stop": toStopResponse(stop), "route_pairs": res})
}

func applyStopInput(stop *models.Stop, input *stopInput) error {
	if input.IsActive != nil {
		stop.IsActive = *input.IsActive
	}
	if input.Location != nil {
		loc, err := geoJSONToWKB(*input.Location, "Point")
		if err != nil {
			return errors.New("Invalid location: " + err.Error())
		}
		stop.Location = loc
	}
	return nil
}
