package services

import (
	"shuttle_admin/internal/models"
)

// StopRef is the short form of a stop in views.
type StopRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TemplatePointView is one stop of a template itinerary.
type TemplatePointView struct {
	StopID        uint   `json:"stop_id"`
	StopName      string `json:"stop_name"`
	Sort          int    `json:"sort"`
	IsDeparture   bool   `json:"is_departure"`
	IsArrival     bool   `json:"is_arrival"`
	DepartureTime string `json:"departure_time"`
}

// ScheduleTemplateView is what callers get back from generation and edits.
type ScheduleTemplateView struct {
	ID            uint                `json:"id"`
	ScheduleID    uint                `json:"schedule_id"`
	Departure     StopRef             `json:"departure"`
	Arrival       StopRef             `json:"arrival"`
	IsRound       bool                `json:"is_round"`
	DriverID      uint                `json:"driver_id"`
	VehicleID     uint                `json:"vehicle_id"`
	DepartureTime string              `json:"departure_time"`
	ArrivalTime   string              `json:"arrival_time"`
	Price         float64             `json:"price"`
	PricePackage  float64             `json:"price_package"`
	Description   string              `json:"description"`
	IsSale        bool                `json:"is_sale"`
	Points        []TemplatePointView `json:"points"`
}

// toTemplateView expects Departure, Arrival and Points.Stop to be preloaded
// and Points to be ordered by sort.
func toTemplateView(t models.ScheduleTemplate) ScheduleTemplateView {
	v := ScheduleTemplateView{
		ID:            t.ID,
		ScheduleID:    t.ScheduleID,
		Departure:     StopRef{ID: t.DepartureID, Name: t.Departure.Name},
		Arrival:       StopRef{ID: t.ArrivalID, Name: t.Arrival.Name},
		IsRound:       t.IsRound,
		DriverID:      t.DriverID,
		VehicleID:     t.VehicleID,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Price:         t.Price,
		PricePackage:  t.PricePackage,
		Description:   t.Description,
		IsSale:        t.IsSale,
		Points:        make([]TemplatePointView, 0, len(t.Points)),
	}
	for _, p := range t.Points {
		v.Points = append(v.Points, TemplatePointView{
			StopID:        p.StopID,
			StopName:      p.Stop.Name,
			Sort:          p.Sort,
			IsDeparture:   p.IsDeparture,
			IsArrival:     p.IsArrival,
			DepartureTime: p.DepartureTime,
		})
	}
	return v
}
