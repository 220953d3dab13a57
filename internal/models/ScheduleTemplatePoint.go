package models

import (
	"gorm.io/gorm"
)

// ScheduleTemplatePoint is one stop visit of a template's itinerary.
// DepartureTime is the time at this stop, whatever its role.
type ScheduleTemplatePoint struct {
	gorm.Model

	ScheduleTemplateID uint   `json:"schedule_template_id" gorm:"not null;index"`
	StopID             uint   `json:"stop_id" gorm:"not null;index"`
	Sort               int    `json:"sort" gorm:"not null"`
	IsDeparture        bool   `json:"is_departure"`
	IsArrival          bool   `json:"is_arrival"`
	DepartureTime      string `json:"departure_time" gorm:"size:5"`

	Stop Stop `gorm:"foreignKey:StopID" json:"stop,omitempty"`
}
