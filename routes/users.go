package routes

import (
	"cinema-backend/handlers/users"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	usersRoutes := r.Group("/users")
	usersRoutes.Use(middleware.JWTAuth())
	{
		usersRoutes.GET("/top-channels", users.GetTopChannels)
		usersRoutes.POST("", users.SearchUsers)
		usersRoutes.POST("/update-channel", users.UpdateChannel)
		usersRoutes.GET("/:id", users.GetUser)
	}
}
