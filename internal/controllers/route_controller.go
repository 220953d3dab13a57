package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shuttle_admin/internal/models"
)

// RoutePointResponse is one ordered stop of a route.
type RoutePointResponse struct {
	Position int    `json:"position"`
	StopID   uint   `json:"stop_id"`
	StopName string `json:"stop_name"`
	IsActive bool   `json:"is_active"`
}

// RouteResponse struct for API output
// This mirrors models.Route but has Geometry as a string for JSON output
type RouteResponse struct {
	ID          uint                 `json:"ID"`
	CreatedAt   time.Time            `json:"CreatedAt"`
	UpdatedAt   time.Time            `json:"UpdatedAt"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Geometry    string               `json:"geometry"`
	Points      []RoutePointResponse `json:"points"`
}

// toRouteResponse expects Points (ordered) and Points.Stop preloaded.
func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, err := wkbToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route_id", route.ID).Warn("route has unreadable geometry")
	}
	resp := RouteResponse{
		ID:          route.ID,
		CreatedAt:   route.CreatedAt,
		UpdatedAt:   route.UpdatedAt,
		Name:        route.Name,
		Description: route.Description,
		Geometry:    jsonGeom,
		Points:      make([]RoutePointResponse, 0, len(route.Points)),
	}
	for _, p := range route.Points {
		resp.Points = append(resp.Points, RoutePointResponse{
			Position: p.Position,
			StopID:   p.StopID,
			StopName: p.Stop.Name,
			IsActive: p.Stop.IsActive && !p.Stop.DeletedAt.Valid,
		})
	}
	return resp
}

type RouteController struct {
	DB *gorm.DB
}

// CreateRoute creates a route whose stop order is the order of stop_ids.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Geometry    string `json:"geometry"` // GeoJSON LineString
		StopIDs     []uint `json:"stop_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	wkbGeom, err := geoJSONToWKB(input.Geometry, "LineString")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	tx := rc.DB.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	route := models.Route{Name: input.Name, Description: input.Description, Geometry: wkbGeom}
	if err := tx.Create(&route).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	if status, err := writeRoutePoints(tx, route.ID, input.StopIDs); err != nil {
		tx.Rollback()
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	rc.respondRoute(c, http.StatusCreated, route.ID)
}

// GetRoute returns a route with its ordered stops.
func (rc *RouteController) GetRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rc.respondRoute(c, http.StatusOK, id)
}

// ReplaceRoutePoints swaps the ordered stop list of a route. Existing
// templates are not regenerated.
func (rc *RouteController) ReplaceRoutePoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := rc.DB.WithContext(c.Request.Context()).First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input struct {
		StopIDs []uint `json:"stop_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := rc.DB.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Where("route_id = ?", route.ID).Delete(&models.RoutePoint{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear route points: " + err.Error()})
		return
	}
	if status, err := writeRoutePoints(tx, route.ID, input.StopIDs); err != nil {
		tx.Rollback()
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	rc.respondRoute(c, http.StatusOK, route.ID)
}

func (rc *RouteController) respondRoute(c *gin.Context, status int, id uint) {
	var route models.Route
	err := rc.DB.WithContext(c.Request.Context()).
		Preload("Points", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Points.Stop", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&route, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(status, gin.H{"route": toRouteResponse(route)})
}

// writeRoutePoints stores stopIDs as positions 1..n. Every stop must exist
// and appear once.
func writeRoutePoints(tx *gorm.DB, routeID uint, stopIDs []uint) (int, error) {
	if len(stopIDs) == 0 {
		return http.StatusOK, nil
	}

	seen := make(map[uint]bool, len(stopIDs))
	for _, id := range stopIDs {
		if seen[id] {
			return http.StatusBadRequest, fmt.Errorf("stop %d listed more than once", id)
		}
		seen[id] = true
	}

	var found int64
	if err := tx.Model(&models.Stop{}).Where("id IN ?", stopIDs).Count(&found).Error; err != nil {
		return http.StatusInternalServerError, err
	}
	if int(found) != len(stopIDs) {
		return http.StatusBadRequest, errors.New("one or more stops do not exist")
	}

	points := make([]models.RoutePoint, 0, len(stopIDs))
	for i, stopID := range stopIDs {
		points = append(points, models.RoutePoint{RouteID: routeID, StopID: stopID, Position: i + 1})
	}
	if err := tx.Create(&points).Error; err != nil {
		return http.StatusInternalServerError, fmt.Errorf("create route points failed: %w", err)
	}
	return http.StatusOK, nil
}
