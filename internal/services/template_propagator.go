package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shuttle_admin/internal/models"
)

// TimeLayout is the wall-clock format of every template time field.
const TimeLayout = "15:04"

// TimeEdit is a field-level edit of one template. DepartureTime is required;
// nil pointers leave the field unchanged. IsRound, when set, must match the
// template's direction.
type TimeEdit struct {
	DepartureTime string
	ArrivalTime   *string
	Description   *string
	Price         *float64
	PricePackage  *float64
	IsSale        *bool
	IsRound       *bool
}

// TemplatePropagator applies a template edit and fans its times out to every
// template and point of the same schedule and direction that shares the stop.
type TemplatePropagator struct {
	db *gorm.DB
}

func NewTemplatePropagator(db *gorm.DB) *TemplatePropagator {
	return &TemplatePropagator{db: db}
}

// ApplyTimeEdit updates the template and propagates its departure (and
// arrival) time in a single transaction, retrying it on transient errors.
// Only the edited template is returned.
func (p *TemplatePropagator) ApplyTimeEdit(ctx context.Context, templateID uint, edit TimeEdit) (ScheduleTemplateView, error) {
	const op = "update schedule template timing"

	if err := edit.validate(op); err != nil {
		return ScheduleTemplateView{}, err
	}

	var fanout fanoutStats
	err := retryTransient(ctx, op, func() error {
		fanout = fanoutStats{}
		return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return p.apply(tx, op, templateID, edit, &fanout)
		})
	})
	if err != nil {
		return ScheduleTemplateView{}, err
	}

	logrus.WithFields(logrus.Fields{
		"template_id":         templateID,
		"departure_templates": fanout.departureTemplates,
		"departure_points":    fanout.departurePoints,
		"arrival_templates":   fanout.arrivalTemplates,
		"arrival_points":      fanout.arrivalPoints,
	}).Info("template timing propagated")

	return p.Get(ctx, templateID)
}

// Get returns one live template with its ordered points.
func (p *TemplatePropagator) Get(ctx context.Context, templateID uint) (ScheduleTemplateView, error) {
	const op = "get schedule template"
	var t models.ScheduleTemplate
	if err := preloadTemplate(p.db.WithContext(ctx)).First(&t, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ScheduleTemplateView{}, notFound(op, "template %d not found", templateID)
		}
		return ScheduleTemplateView{}, storeError(op, err)
	}
	return toTemplateView(t), nil
}

type fanoutStats struct {
	departureTemplates int64
	departurePoints    int64
	arrivalTemplates   int64
	arrivalPoints      int64
}

func (p *TemplatePropagator) apply(tx *gorm.DB, op string, templateID uint, edit TimeEdit, stats *fanoutStats) error {
	var target models.ScheduleTemplate
	if err := tx.First(&target, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, "template %d not found", templateID)
		}
		return storeError(op, err)
	}
	if edit.IsRound != nil && *edit.IsRound != target.IsRound {
		return invalid(op, "template %d has is_round=%t, edit is scoped to is_round=%t", target.ID, target.IsRound, *edit.IsRound)
	}

	// 1. the target's own fields
	updates := map[string]interface{}{"departure_time": edit.DepartureTime}
	if edit.ArrivalTime != nil {
		updates["arrival_time"] = *edit.ArrivalTime
	}
	if edit.Description != nil {
		updates["description"] = *edit.Description
	}
	if edit.Price != nil {
		updates["price"] = *edit.Price
	}
	if edit.PricePackage != nil {
		updates["price_package"] = *edit.PricePackage
	}
	if edit.IsSale != nil {
		updates["is_sale"] = *edit.IsSale
	}
	if err := tx.Model(&target).Updates(updates).Error; err != nil {
		return storeError(op, err)
	}

	// 2. departure time, wherever this stop departs in this direction
	res := sameDirection(tx, target).
		Where("departure_id = ?", target.DepartureID).
		Update("departure_time", edit.DepartureTime)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	stats.departureTemplates = res.RowsAffected

	res = pointsAtStop(tx, target, target.DepartureID).Update("departure_time", edit.DepartureTime)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	stats.departurePoints = res.RowsAffected

	if edit.ArrivalTime == nil {
		return nil
	}

	// 3. arrival time; on points it is the time at the stop
	res = sameDirection(tx, target).
		Where("arrival_id = ?", target.ArrivalID).
		Update("arrival_time", *edit.ArrivalTime)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	stats.arrivalTemplates = res.RowsAffected

	res = pointsAtStop(tx, target, target.ArrivalID).Update("departure_time", *edit.ArrivalTime)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	stats.arrivalPoints = res.RowsAffected
	return nil
}

// sameDirection scopes to live templates of the target's schedule and direction.
func sameDirection(tx *gorm.DB, target models.ScheduleTemplate) *gorm.DB {
	return tx.Model(&models.ScheduleTemplate{}).
		Where("schedule_id = ? AND is_round = ?", target.ScheduleID, target.IsRound)
}

// pointsAtStop scopes to points visiting stopID inside templates of the
// target's schedule and direction.
func pointsAtStop(tx *gorm.DB, target models.ScheduleTemplate, stopID uint) *gorm.DB {
	templateIDs := sameDirection(tx, target).Select("id")
	return tx.Model(&models.ScheduleTemplatePoint{}).
		Where("stop_id = ? AND schedule_template_id IN (?)", stopID, templateIDs)
}

func (e TimeEdit) validate(op string) error {
	if e.DepartureTime == "" {
		return invalid(op, "departure_time is required")
	}
	if !validClock(e.DepartureTime) {
		return invalid(op, "departure_time %q is not HH:MM", e.DepartureTime)
	}
	if e.ArrivalTime != nil && !validClock(*e.ArrivalTime) {
		return invalid(op, "arrival_time %q is not HH:MM", *e.ArrivalTime)
	}
	if e.Price != nil && *e.Price < 0 {
		return invalid(op, "price must not be negative")
	}
	if e.PricePackage != nil && *e.PricePackage < 0 {
		return invalid(op, "price_package must not be negative")
	}
	return nil
}

func validClock(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
