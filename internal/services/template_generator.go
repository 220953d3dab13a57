package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shuttle_admin/internal/config"
	"shuttle_admin/internal/locks"
	"shuttle_admin/internal/models"
)

// GenerateRequest names the schedule to expand and the default assignment
// stamped on every generated template.
type GenerateRequest struct {
	ScheduleID uint
	DriverID   uint
	VehicleID  uint // zero means the schedule's vehicle
}

// TemplateGenerator derives every directed trip variant of a schedule's route.
type TemplateGenerator struct {
	db     *gorm.DB
	locker locks.Locker
	policy string
}

func NewTemplateGenerator(db *gorm.DB, locker locks.Locker, policy string) *TemplateGenerator {
	if policy == "" {
		policy = config.GenerationReject
	}
	return &TemplateGenerator{db: db, locker: locker, policy: policy}
}

// Generate creates n·(n-1) templates for a route of n ordered active stops:
// one per directed stop pair, forward for pairs in route order and round for
// the reverse. The whole set is written in one transaction. It is never
// retried automatically.
func (g *TemplateGenerator) Generate(ctx context.Context, req GenerateRequest) ([]ScheduleTemplateView, error) {
	const op = "generate schedule templates"

	if req.ScheduleID == 0 {
		return nil, invalid(op, "schedule_id is required")
	}
	if req.DriverID == 0 {
		return nil, invalid(op, "driver_id is required")
	}

	release, err := g.locker.TryLock(ctx, fmt.Sprintf("schedule:%d:generate", req.ScheduleID))
	if err != nil {
		if errors.Is(err, locks.ErrHeld) {
			return nil, conflict(op, "generation already in progress for schedule %d", req.ScheduleID)
		}
		return nil, &Error{Kind: KindTransient, Op: op, Err: err}
	}
	defer release()

	generationID := uuid.NewString()
	var created int

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, req.ScheduleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(op, "schedule %d not found", req.ScheduleID)
			}
			return storeError(op, err)
		}

		vehicleID := req.VehicleID
		if vehicleID == 0 {
			vehicleID = schedule.VehicleID
		}
		if err := g.checkAssignment(tx, op, req.DriverID, vehicleID); err != nil {
			return err
		}

		stops, err := orderedRouteStops(tx, op, schedule.RouteID)
		if err != nil {
			return err
		}
		if len(stops) < 2 {
			return invalid(op, "insufficient stops: route %d has %d active stops, need at least 2", schedule.RouteID, len(stops))
		}

		if err := g.guardExisting(tx, op, schedule.ID); err != nil {
			return err
		}

		for _, t := range buildTemplates(stops) {
			t.ScheduleID = schedule.ID
			t.DriverID = req.DriverID
			t.VehicleID = vehicleID
			t.GenerationID = generationID
			// Points are created with the template through the association.
			if err := tx.Create(&t).Error; err != nil {
				return storeError(op, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"schedule_id":   req.ScheduleID,
		"generation_id": generationID,
		"templates":     created,
		"policy":        g.policy,
	}).Info("schedule templates generated")

	return listTemplates(g.db.WithContext(ctx), op, func(db *gorm.DB) *gorm.DB {
		return db.Where("schedule_id = ? AND generation_id = ?", req.ScheduleID, generationID)
	})
}

// List returns the live templates of a schedule.
func (g *TemplateGenerator) List(ctx context.Context, scheduleID uint) ([]ScheduleTemplateView, error) {
	const op = "list schedule templates"
	db := g.db.WithContext(ctx)

	if err := db.Select("id").First(&models.Schedule{}, scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(op, "schedule %d not found", scheduleID)
		}
		return nil, storeError(op, err)
	}
	return listTemplates(db, op, func(db *gorm.DB) *gorm.DB {
		return db.Where("schedule_id = ?", scheduleID)
	})
}

func (g *TemplateGenerator) checkAssignment(tx *gorm.DB, op string, driverID, vehicleID uint) error {
	if err := tx.Select("id").First(&models.Driver{}, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, "driver %d not found", driverID)
		}
		return storeError(op, err)
	}
	if vehicleID == 0 {
		return invalid(op, "vehicle_id is required when the schedule has no vehicle")
	}
	if err := tx.Select("id").First(&models.Vehicle{}, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, "vehicle %d not found", vehicleID)
		}
		return storeError(op, err)
	}
	return nil
}

// guardExisting applies the regeneration policy to templates already stored
// for the schedule.
func (g *TemplateGenerator) guardExisting(tx *gorm.DB, op string, scheduleID uint) error {
	var existing int64
	if err := tx.Model(&models.ScheduleTemplate{}).
		Where("schedule_id = ?", scheduleID).Count(&existing).Error; err != nil {
		return storeError(op, err)
	}
	if existing == 0 {
		return nil
	}

	if g.policy != config.GenerationReplace {
		return conflict(op, "schedule %d already has %d templates", scheduleID, existing)
	}

	ids := tx.Model(&models.ScheduleTemplate{}).Select("id").Where("schedule_id = ?", scheduleID)
	if err := tx.Where("schedule_template_id IN (?)", ids).
		Delete(&models.ScheduleTemplatePoint{}).Error; err != nil {
		return storeError(op, err)
	}
	if err := tx.Where("schedule_id = ?", scheduleID).
		Delete(&models.ScheduleTemplate{}).Error; err != nil {
		return storeError(op, err)
	}
	logrus.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"cleared":     existing,
	}).Info("cleared previous schedule templates")
	return nil
}

// orderedRouteStops reads the route's active stops ordered by position in a
// single query.
func orderedRouteStops(tx *gorm.DB, op string, routeID uint) ([]models.Stop, error) {
	if err := tx.Select("id").First(&models.Route{}, routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(op, "route %d not found", routeID)
		}
		return nil, storeError(op, err)
	}

	var stops []models.Stop
	err := tx.Model(&models.Stop{}).
		Joins("JOIN route_points ON route_points.stop_id = stops.id AND route_points.deleted_at IS NULL").
		Where("route_points.route_id = ?", routeID).
		Scopes(models.ActiveStops).
		Order("route_points.position ASC").
		Find(&stops).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return stops, nil
}

// buildTemplates lays out both families for the ordered stops: forward
// templates for i<j in route order, then round templates for i>j walking
// the route backwards.
func buildTemplates(stops []models.Stop) []models.ScheduleTemplate {
	n := len(stops)
	templates := make([]models.ScheduleTemplate, 0, n*(n-1))

	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			templates = append(templates, buildTemplate(stops, i, j, false))
		}
	}
	for i := n - 1; i > 0; i-- {
		for j := i - 1; j >= 0; j-- {
			templates = append(templates, buildTemplate(stops, i, j, true))
		}
	}
	return templates
}

// buildTemplate walks from index from to index to inclusive.
func buildTemplate(stops []models.Stop, from, to int, isRound bool) models.ScheduleTemplate {
	step := 1
	if isRound {
		step = -1
	}
	count := (to-from)*step + 1

	t := models.ScheduleTemplate{
		DepartureID: stops[from].ID,
		ArrivalID:   stops[to].ID,
		IsRound:     isRound,
		Points:      make([]models.ScheduleTemplatePoint, 0, count),
	}
	for k := 0; k < count; k++ {
		sort := k + 1
		t.Points = append(t.Points, models.ScheduleTemplatePoint{
			StopID:      stops[from+k*step].ID,
			Sort:        sort,
			IsDeparture: sort == 1,
			IsArrival:   sort == count,
		})
	}
	return t
}

// listTemplates loads templates with stops and ordered points, forward
// family first.
func listTemplates(db *gorm.DB, op string, scope func(*gorm.DB) *gorm.DB) ([]ScheduleTemplateView, error) {
	var templates []models.ScheduleTemplate
	err := preloadTemplate(db).Scopes(scope).
		Order("is_round ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, storeError(op, err)
	}

	views := make([]ScheduleTemplateView, 0, len(templates))
	for _, t := range templates {
		views = append(views, toTemplateView(t))
	}
	return views, nil
}

// preloadTemplate preloads stops including soft-deleted ones so that
// templates keep their names after a stop is retired.
func preloadTemplate(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return db.
		Preload("Departure", unscoped).
		Preload("Arrival", unscoped).
		Preload("Points", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC") }).
		Preload("Points.Stop", unscoped)
}
