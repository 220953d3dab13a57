package models

import (
	"gorm.io/gorm"
)

// Stop is a boarding/alighting point. Only stops that are not soft-deleted
// and have IsActive set take part in route pairs and template generation.
type Stop struct {
	gorm.Model

	Name     string `json:"name" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"not null;index"`

	// Point stored as WKB; GeoJSON on the API side.
	Location []byte `json:"-" gorm:"type:bytea"`
}

// ActiveStops scopes a query to stops usable by the engine.
func ActiveStops(db *gorm.DB) *gorm.DB {
	return db.Where("stops.is_active = ?", true)
}
