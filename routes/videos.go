package routes

import (
	"cinema-backend/handlers/videos"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func VideosRoutes(r *gin.Engine) {
	videoRoutes := r.Group("/video")
	videoRoutes.Use(middleware.JWTAuth())
	{
		videoRoutes.POST("", videos.Search)
		videoRoutes.GET("/tags", videos.GetTags)
		videoRoutes.GET("/popular-tags", videos.GetPopularTags)
		videoRoutes.POST("/increment-play", videos.RecordPlay)
		videoRoutes.POST("/update", videos.UpdateVideo)
		videoRoutes.GET("/:id", videos.GetVideo)
	}

	uploadRoutes := r.Group("/upload")
	uploadRoutes.Use(middleware.JWTAuth())
	{
		uploadRoutes.POST("", videos.Upload)
	}
}
