package models

import (
	"gorm.io/gorm"
)

// RoutePair is a materialized directed edge between two active stops.
// Rows are only ever inserted or soft-deleted by the route pair reconciler.
type RoutePair struct {
	gorm.Model

	DepartureID uint `json:"departure_id" gorm:"not null;uniqueIndex:idx_route_pair_live,where:deleted_at IS NULL"`
	ArrivalID   uint `json:"arrival_id" gorm:"not null;uniqueIndex:idx_route_pair_live,where:deleted_at IS NULL"`
}
