package models

import "gorm.io/gorm"

// User is an operator account for the admin API.
type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"`
	Role     string `json:"role"` // "admin", "dispatcher"
}
