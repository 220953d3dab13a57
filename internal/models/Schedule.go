package models

import (
	"gorm.io/gorm"
)

// Schedule is a route run by a vehicle on a recurrence pattern.
type Schedule struct {
	gorm.Model

	Name       string `json:"name"`
	RouteID    uint   `json:"route_id" gorm:"not null;index"`
	VehicleID  uint   `json:"vehicle_id" gorm:"index"`
	Recurrence string `json:"recurrence"` // e.g. "mon,tue,fri"

	Route     Route              `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	Templates []ScheduleTemplate `gorm:"foreignKey:ScheduleID" json:"templates,omitempty"`
}
