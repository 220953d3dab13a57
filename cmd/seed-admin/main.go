// Command seed-admin creates or resets an admin account.
//
//	seed-admin -email ops@example.com -name "Ops" -password secret
package main

import (
	"errors"
	"flag"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shuttle_admin/internal/config"
	"shuttle_admin/internal/controllers"
	"shuttle_admin/internal/models"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Administrator", "display name")
	password := flag.String("password", "", "password (min 8 chars)")
	role := flag.String("role", "admin", "role: admin or dispatcher")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		logrus.Fatal("-email and a -password of at least 8 characters are required")
	}
	if *role != "admin" && *role != "dispatcher" {
		logrus.Fatalf("invalid role %q", *role)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load settings")
	}
	db, err := config.InitDB(settings)
	if err != nil {
		logrus.WithError(err).Fatal("database init failed")
	}

	hash, err := controllers.HashPassword(*password)
	if err != nil {
		logrus.WithError(err).Fatal("could not hash password")
	}

	addr := strings.ToLower(*email)
	var user models.User
	err = db.Where("email = ?", addr).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Name: *name, Email: addr, Password: hash, Role: *role}
		err = db.Create(&user).Error
	case err == nil:
		err = db.Model(&user).Updates(map[string]interface{}{"name": *name, "password": hash, "role": *role}).Error
	}
	if err != nil {
		logrus.WithError(err).Fatal("could not save admin user")
	}
	logrus.WithFields(logrus.Fields{"id": user.ID, "email": addr, "role": *role}).Info("admin user ready")
}
