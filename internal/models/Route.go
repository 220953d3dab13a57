package models

import (
	"gorm.io/gorm"
)

// Route is an ordered sequence of stops a vehicle traverses.
// The order is carried by RoutePoint.Position, never by creation time.
type Route struct {
	gorm.Model

	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`

	// Geometry stored as a WKB LINESTRING (SRID 4326)
	Geometry []byte `json:"-" gorm:"type:bytea"`

	Points []RoutePoint `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"points,omitempty"`
}
