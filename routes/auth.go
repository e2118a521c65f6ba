package routes

import (
	"cinema-backend/handlers/auth"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", auth.Login)
		authRoutes.POST("/register", auth.Register)
		authRoutes.POST("/request-password-reset", auth.RequestPasswordReset)
		authRoutes.POST("/reset-password", auth.ResetPassword)
		// Payment-processor webhook, authenticated by signature.
		authRoutes.POST("/account-updated", auth.AccountUpdated)

		authRoutes.GET("/onboarded", middleware.JWTAuth(), auth.IsOnboarded)
	}
}
