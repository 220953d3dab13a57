package routes

import (
	"shuttle_admin/internal/controllers"
	"shuttle_admin/internal/middleware"

	"github.com/gin-gonic/gin"
)

func FleetRoutes(r *gin.Engine, d Deps) {
	fc := &controllers.FleetController{DB: d.DB}

	fleet := r.Group("/admin/fleet")
	fleet.Use(middleware.RequireAuthWithRole("admin", "dispatcher"))
	{
		fleet.POST("/vehicles", fc.CreateVehicle)
		fleet.GET("/vehicles", fc.ListVehicles)
		fleet.POST("/drivers", fc.CreateDriver)
		fleet.GET("/drivers", fc.ListDrivers)
	}
}
