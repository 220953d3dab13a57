package routes

import (
	"context"
	"net/http"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shuttle_admin/internal/middleware"
	"shuttle_admin/internal/services"
)

// Deps carries everything the handlers need.
type Deps struct {
	DB          *gorm.DB
	Pairs       *services.RoutePairService
	Generator   *services.TemplateGenerator
	Propagator  *services.TemplatePropagator
	RateLimiter *middleware.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(ginlog.SetLogger(
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/health"}),
	))
	r.Use(gin.Recovery())

	r.GET("/health", health(d.DB))

	AuthRoutes(r, d)
	AdminRoutes(r, d)
	FleetRoutes(r, d)

	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "error",
				"database": "disconnected",
				"error":    err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	}
}
