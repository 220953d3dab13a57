package models

import (
	"gorm.io/gorm"
)

// ScheduleTemplate is one directed, contiguous trip variant of a schedule.
// IsRound=false follows the route order, IsRound=true the reverse.
type ScheduleTemplate struct {
	gorm.Model

	// One live template per (schedule, departure, arrival, direction).
	ScheduleID  uint `json:"schedule_id" gorm:"not null;index:idx_template_departure,priority:1;index:idx_template_arrival,priority:1;uniqueIndex:idx_template_live,priority:1,where:deleted_at IS NULL"`
	DepartureID uint `json:"departure_id" gorm:"not null;index:idx_template_departure,priority:2;uniqueIndex:idx_template_live,priority:2,where:deleted_at IS NULL"`
	ArrivalID   uint `json:"arrival_id" gorm:"not null;index:idx_template_arrival,priority:2;uniqueIndex:idx_template_live,priority:3,where:deleted_at IS NULL"`
	IsRound     bool `json:"is_round" gorm:"not null;index:idx_template_departure,priority:3;index:idx_template_arrival,priority:3;uniqueIndex:idx_template_live,priority:4,where:deleted_at IS NULL"`

	DriverID     uint   `json:"driver_id"`
	VehicleID    uint   `json:"vehicle_id"`
	GenerationID string `json:"generation_id" gorm:"size:36;index"`

	Price         float64 `json:"price"`
	PricePackage  float64 `json:"price_package"`
	Description   string  `json:"description"`
	IsSale        bool    `json:"is_sale"`
	DepartureTime string  `json:"departure_time" gorm:"size:5"` // HH:MM, empty until edited
	ArrivalTime   string  `json:"arrival_time" gorm:"size:5"`

	Departure Stop                    `gorm:"foreignKey:DepartureID" json:"departure,omitempty"`
	Arrival   Stop                    `gorm:"foreignKey:ArrivalID" json:"arrival,omitempty"`
	Points    []ScheduleTemplatePoint `gorm:"foreignKey:ScheduleTemplateID;constraint:OnDelete:CASCADE;" json:"points,omitempty"`
}
