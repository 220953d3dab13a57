package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"shuttle_admin/internal/config"
	"shuttle_admin/internal/locks"
	"shuttle_admin/internal/models"
	"shuttle_admin/internal/testdb"
)

type propagationFixture struct {
	db        *gorm.DB
	stops     map[string]models.Stop
	templates map[string]ScheduleTemplateView // keyed "A>B" forward, "C<A" round
	schedule  models.Schedule
}

func templateKey(v ScheduleTemplateView) string {
	sep := ">"
	if v.IsRound {
		sep = "<"
	}
	return v.Departure.Name + sep + v.Arrival.Name
}

func newPropagationFixture(t *testing.T, names ...string) *propagationFixture {
	t.Helper()
	db := testdb.New(t)
	stops := testdb.Stops(t, db, names...)
	schedule, driver := testdb.Schedule(t, db, stops)

	gen := NewTemplateGenerator(db, locks.NewMemoryLocker(), config.GenerationReject)
	views, err := gen.Generate(context.Background(), GenerateRequest{ScheduleID: schedule.ID, DriverID: driver.ID})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	f := &propagationFixture{
		db:        db,
		stops:     make(map[string]models.Stop),
		templates: make(map[string]ScheduleTemplateView),
		schedule:  schedule,
	}
	for _, s := range stops {
		f.stops[s.Name] = s
	}
	for _, v := range views {
		f.templates[templateKey(v)] = v
	}
	return f
}

func (f *propagationFixture) load(t *testing.T, key string) models.ScheduleTemplate {
	t.Helper()
	var tpl models.ScheduleTemplate
	if err := f.db.Preload("Points").First(&tpl, f.templates[key].ID).Error; err != nil {
		t.Fatalf("load template %s: %v", key, err)
	}
	return tpl
}

// pointTimes returns the times recorded at stop in every template of the
// given direction.
func (f *propagationFixture) pointTimes(t *testing.T, stop string, isRound bool) []string {
	t.Helper()
	var times []string
	err := f.db.Model(&models.ScheduleTemplatePoint{}).
		Joins("JOIN schedule_templates ON schedule_templates.id = schedule_template_points.schedule_template_id").
		Where("schedule_template_points.stop_id = ? AND schedule_templates.is_round = ?", f.stops[stop].ID, isRound).
		Pluck("schedule_template_points.departure_time", &times).Error
	if err != nil {
		t.Fatalf("load point times: %v", err)
	}
	return times
}

func strPtr(s string) *string { return &s }

func TestApplyTimeEditFansOutDeparture(t *testing.T) {
	f := newPropagationFixture(t, "A", "B", "C")
	prop := NewTemplatePropagator(f.db)

	view, err := prop.ApplyTimeEdit(context.Background(), f.templates["A>B"].ID, TimeEdit{DepartureTime: "08:00"})
	if err != nil {
		t.Fatalf("ApplyTimeEdit failed: %v", err)
	}

	if view.DepartureTime != "08:00" {
		t.Errorf("returned template departure_time = %q", view.DepartureTime)
	}
	if len(view.Points) != 2 || view.Points[0].DepartureTime != "08:00" {
		t.Errorf("returned template points not refreshed: %+v", view.Points)
	}

	for _, key := range []string{"A>B", "A>C"} {
		if got := f.load(t, key).DepartureTime; got != "08:00" {
			t.Errorf("%s departure_time = %q, want 08:00", key, got)
		}
	}
	if got := f.load(t, "B>C").DepartureTime; got != "" {
		t.Errorf("B>C departure_time changed to %q", got)
	}

	forward := f.pointTimes(t, "A", false)
	if len(forward) != 2 {
		t.Fatalf("expected stop A in 2 forward templates, got %d", len(forward))
	}
	for _, got := range forward {
		if got != "08:00" {
			t.Errorf("forward point at A = %q, want 08:00", got)
		}
	}

	// Round templates visiting A are a different vehicle run.
	for _, got := range f.pointTimes(t, "A", true) {
		if got != "" {
			t.Errorf("round point at A changed to %q", got)
		}
	}
	for _, key := range []string{"C<A", "B<A"} {
		if got := f.load(t, key).DepartureTime; got != "" {
			t.Errorf("%s departure_time changed to %q", key, got)
		}
	}
}

func TestApplyTimeEditFansOutArrival(t *testing.T) {
	f := newPropagationFixture(t, "A", "B", "C")
	prop := NewTemplatePropagator(f.db)

	_, err := prop.ApplyTimeEdit(context.Background(), f.templates["B>C"].ID, TimeEdit{
		DepartureTime: "09:15",
		ArrivalTime:   strPtr("09:45"),
	})
	if err != nil {
		t.Fatalf("ApplyTimeEdit failed: %v", err)
	}

	for _, key := range []string{"B>C", "A>C"} {
		if got := f.load(t, key).ArrivalTime; got != "09:45" {
			t.Errorf("%s arrival_time = %q, want 09:45", key, got)
		}
	}
	if got := f.load(t, "A>B").ArrivalTime; got != "" {
		t.Errorf("A>B arrival_time changed to %q", got)
	}

	// Stop C's per-stop time holds the arrival time in every forward template.
	for _, got := range f.pointTimes(t, "C", false) {
		if got != "09:45" {
			t.Errorf("forward point at C = %q, want 09:45", got)
		}
	}
	// Stop B's per-stop time holds the departure time in every forward template,
	// including A>B where B is the arrival point.
	for _, got := range f.pointTimes(t, "B", false) {
		if got != "09:15" {
			t.Errorf("forward point at B = %q, want 09:15", got)
		}
	}

	// Local consistency: the template's departure equals its departure point.
	bc := f.load(t, "B>C")
	for _, p := range bc.Points {
		if p.IsDeparture && p.DepartureTime != bc.DepartureTime {
			t.Errorf("departure point time %q != template time %q", p.DepartureTime, bc.DepartureTime)
		}
	}
}

func TestApplyTimeEditRoundNeverTouchesForward(t *testing.T) {
	f := newPropagationFixture(t, "A", "B", "C")
	prop := NewTemplatePropagator(f.db)

	isRound := true
	_, err := prop.ApplyTimeEdit(context.Background(), f.templates["C<A"].ID, TimeEdit{
		DepartureTime: "17:00",
		ArrivalTime:   strPtr("17:40"),
		IsRound:       &isRound,
	})
	if err != nil {
		t.Fatalf("ApplyTimeEdit failed: %v", err)
	}

	if got := f.load(t, "C<B").DepartureTime; got != "17:00" {
		t.Errorf("C<B departure_time = %q, want 17:00", got)
	}
	if got := f.load(t, "B<A").ArrivalTime; got != "17:40" {
		t.Errorf("B<A arrival_time = %q, want 17:40", got)
	}

	var touched int64
	f.db.Model(&models.ScheduleTemplate{}).
		Where("is_round = ? AND (departure_time <> '' OR arrival_time <> '')", false).
		Count(&touched)
	if touched != 0 {
		t.Errorf("%d forward templates changed", touched)
	}
	var touchedPoints int64
	f.db.Model(&models.ScheduleTemplatePoint{}).
		Joins("JOIN schedule_templates ON schedule_templates.id = schedule_template_points.schedule_template_id").
		Where("schedule_templates.is_round = ? AND schedule_template_points.departure_time <> ''", false).
		Count(&touchedPoints)
	if touchedPoints != 0 {
		t.Errorf("%d forward points changed", touchedPoints)
	}
}

func TestApplyTimeEditCommercialFieldsStayLocal(t *testing.T) {
	f := newPropagationFixture(t, "A", "B", "C")
	prop := NewTemplatePropagator(f.db)

	price := 12.5
	pkg := 40.0
	sale := true
	view, err := prop.ApplyTimeEdit(context.Background(), f.templates["A>C"].ID, TimeEdit{
		DepartureTime: "07:30",
		Description:   strPtr("express"),
		Price:         &price,
		PricePackage:  &pkg,
		IsSale:        &sale,
	})
	if err != nil {
		t.Fatalf("ApplyTimeEdit failed: %v", err)
	}
	if view.Price != 12.5 || view.PricePackage != 40 || !view.IsSale || view.Description != "express" {
		t.Errorf("commercial fields not applied: %+v", view)
	}

	ab := f.load(t, "A>B")
	if ab.DepartureTime != "07:30" {
		t.Errorf("A>B departure_time = %q, want 07:30", ab.DepartureTime)
	}
	if ab.Price != 0 || ab.IsSale || ab.Description != "" {
		t.Errorf("commercial fields leaked to A>B: %+v", ab)
	}
}

func TestApplyTimeEditScopedToSchedule(t *testing.T) {
	f := newPropagationFixture(t, "A", "B")

	// A second schedule over the same stops.
	stops := []models.Stop{f.stops["A"], f.stops["B"]}
	other, driver := testdb.Schedule(t, f.db, stops)
	gen := NewTemplateGenerator(f.db, locks.NewMemoryLocker(), config.GenerationReject)
	if _, err := gen.Generate(context.Background(), GenerateRequest{ScheduleID: other.ID, DriverID: driver.ID}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	prop := NewTemplatePropagator(f.db)
	if _, err := prop.ApplyTimeEdit(context.Background(), f.templates["A>B"].ID, TimeEdit{DepartureTime: "06:00"}); err != nil {
		t.Fatalf("ApplyTimeEdit failed: %v", err)
	}

	var changed int64
	f.db.Model(&models.ScheduleTemplate{}).
		Where("schedule_id = ? AND departure_time <> ''", other.ID).
		Count(&changed)
	if changed != 0 {
		t.Errorf("%d templates of another schedule changed", changed)
	}
}

func TestApplyTimeEditValidation(t *testing.T) {
	f := newPropagationFixture(t, "A", "B")
	prop := NewTemplatePropagator(f.db)
	ctx := context.Background()
	forward := f.templates["A>B"].ID

	isRound := true
	neg := -1.0
	tests := []struct {
		name string
		id   uint
		edit TimeEdit
		want error
	}{
		{"missing departure", forward, TimeEdit{}, ErrValidation},
		{"bad departure", forward, TimeEdit{DepartureTime: "8am"}, ErrValidation},
		{"out of range", forward, TimeEdit{DepartureTime: "25:00"}, ErrValidation},
		{"bad arrival", forward, TimeEdit{DepartureTime: "08:00", ArrivalTime: strPtr("8:5")}, ErrValidation},
		{"negative price", forward, TimeEdit{DepartureTime: "08:00", Price: &neg}, ErrValidation},
		{"wrong direction", forward, TimeEdit{DepartureTime: "08:00", IsRound: &isRound}, ErrValidation},
		{"unknown template", 9999, TimeEdit{DepartureTime: "08:00"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := prop.ApplyTimeEdit(ctx, tt.id, tt.edit); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// The rejected direction edit rolled back.
	if got := f.load(t, "A>B").DepartureTime; got != "" {
		t.Errorf("failed edits changed departure_time to %q", got)
	}
}

func TestApplyTimeEditRollsBackOnFailure(t *testing.T) {
	f := newPropagationFixture(t, "A", "B", "C")
	prop := NewTemplatePropagator(f.db)

	boom := errors.New("disk full")
	const hook = "test:fail_point_update"
	if err := f.db.Callback().Update().Before("gorm:update").Register(hook, func(tx *gorm.DB) {
		if tx.Statement.Table == "schedule_template_points" {
			tx.AddError(boom)
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer f.db.Callback().Update().Remove(hook)

	if _, err := prop.ApplyTimeEdit(context.Background(), f.templates["A>B"].ID, TimeEdit{DepartureTime: "08:00"}); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	for _, key := range []string{"A>B", "A>C"} {
		if got := f.load(t, key).DepartureTime; got != "" {
			t.Errorf("%s kept a half-propagated departure_time %q", key, got)
		}
	}
}
