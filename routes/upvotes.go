package routes

import (
	"cinema-backend/handlers/upvotes"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UpvotesRoutes(r *gin.Engine) {
	upvoteRoutes := r.Group("/upvote")
	upvoteRoutes.Use(middleware.JWTAuth())
	{
		upvoteRoutes.POST("/toggle-comment", upvotes.ToggleCommentUpvote)
		upvoteRoutes.POST("/toggle-video", upvotes.ToggleVideoUpvote)
		upvoteRoutes.GET("/video/:id", upvotes.GetVideoUpvoteCount)
	}
}
