// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"shuttle_admin/internal/config"
	"shuttle_admin/internal/models"
)

var counter atomic.Int64

// New returns a migrated in-memory SQLite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", counter.Add(1))
	db, err := config.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Stops creates one active stop per name and returns them in order.
func Stops(t testing.TB, db *gorm.DB, names ...string) []models.Stop {
	t.Helper()
	stops := make([]models.Stop, 0, len(names))
	for _, name := range names {
		s := models.Stop{Name: name, IsActive: true}
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("create stop %s: %v", name, err)
		}
		stops = append(stops, s)
	}
	return stops
}

// Schedule creates a driver, a vehicle, a route over stops (in the given
// order) and a schedule on it.
func Schedule(t testing.TB, db *gorm.DB, stops []models.Stop) (models.Schedule, models.Driver) {
	t.Helper()

	driver := models.Driver{Name: "Default Driver", LicenseNumber: "DL-1"}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("create driver: %v", err)
	}
	vehicle := models.Vehicle{VehicleNo: "BUS-1", Seats: 20, InService: true}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	route := models.Route{Name: "Test Route"}
	for i, s := range stops {
		route.Points = append(route.Points, models.RoutePoint{StopID: s.ID, Position: i + 1})
	}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("create route: %v", err)
	}

	schedule := models.Schedule{Name: "Weekday", RouteID: route.ID, VehicleID: vehicle.ID, Recurrence: "mon,tue,wed,thu,fri"}
	if err := db.Create(&schedule).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return schedule, driver
}
