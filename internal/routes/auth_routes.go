package routes

import (
	"shuttle_admin/internal/controllers"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine, d Deps) {
	ac := &controllers.AuthController{DB: d.DB}

	auth := r.Group("/auth")
	{
		auth.POST("/login", ac.LoginUser)
	}
}
