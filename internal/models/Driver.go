// internal/models/driver.go
package models

import (
	"gorm.io/gorm"
)

// Driver is managed by the fleet CRUD; the engine only references it
// as the default assignment on generated templates.
type Driver struct {
	gorm.Model
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
}
