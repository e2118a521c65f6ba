package routes

import (
	"cinema-backend/handlers/comments"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func CommentsRoutes(r *gin.Engine) {
	commentsRoutes := r.Group("/comments")
	commentsRoutes.Use(middleware.JWTAuth())
	{
		commentsRoutes.POST("", comments.CreateComment)
		commentsRoutes.POST("/edit", comments.EditComment)
		commentsRoutes.POST("/delete", comments.DeleteComment)
		commentsRoutes.GET("/:video_id", comments.GetComments)
	}
}
