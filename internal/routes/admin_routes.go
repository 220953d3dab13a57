package routes

import (
	"shuttle_admin/internal/controllers"
	"shuttle_admin/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine, d Deps) {
	stops := &controllers.StopController{DB: d.DB, Pairs: d.Pairs}
	pairs := &controllers.RoutePairController{Pairs: d.Pairs}
	routes := &controllers.RouteController{DB: d.DB}
	schedules := &controllers.ScheduleController{DB: d.DB, Generator: d.Generator}
	templates := &controllers.TemplateController{Propagator: d.Propagator}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	if d.RateLimiter != nil {
		admin.Use(d.RateLimiter.Limit())
	}
	{
		admin.POST("/stops", stops.CreateStop)
		admin.GET("/stops", stops.ListStops)
		admin.PUT("/stops/:id", stops.UpdateStop)
		admin.DELETE("/stops/:id", stops.DeleteStop)

		admin.GET("/route-pairs", pairs.ListRoutePairs)
		admin.POST("/route-pairs/reconcile", pairs.ReconcileRoutePairs)

		admin.POST("/routes", routes.CreateRoute)
		admin.GET("/routes/:id", routes.GetRoute)
		admin.PUT("/routes/:id/points", routes.ReplaceRoutePoints)

		admin.POST("/schedules", schedules.CreateSchedule)
		admin.GET("/schedules/:id", schedules.GetSchedule)
		admin.POST("/schedules/:id/templates", schedules.GenerateTemplates)
		admin.GET("/schedules/:id/templates", schedules.ListTemplates)

		admin.GET("/templates/:id", templates.GetTemplate)
		admin.PATCH("/templates/:id", templates.UpdateTemplateTiming)
	}
}
