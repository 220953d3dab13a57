package models

import (
	"gorm.io/gorm"
)

// RoutePoint is the membership of a stop in a route at an explicit position.
type RoutePoint struct {
	gorm.Model

	RouteID  uint `json:"route_id" gorm:"not null;uniqueIndex:idx_route_point_position,where:deleted_at IS NULL"`
	StopID   uint `json:"stop_id" gorm:"not null;index"`
	Position int  `json:"position" gorm:"not null;uniqueIndex:idx_route_point_position,where:deleted_at IS NULL"`

	Stop Stop `gorm:"foreignKey:StopID" json:"stop,omitempty"`
}
