package main

import (
	"log"

	"cinema-backend/db"
	_ "cinema-backend/docs"
	"cinema-backend/jobs"
	"cinema-backend/routes"
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
)

// @title Cinema Backend API
// @version 1.0
// @description Video sharing platform API: auth, videos, comments, upvotes, tokens and payouts
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {
	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	if err := utils.InitCloudinary(); err != nil {
		log.Printf("Warning: Cloudinary initialization failed: %v", err)
		log.Println("Media uploads will not work correctly.")
	}

	// Monthly token conversion and grant batches.
	scheduler := jobs.Schedule(db.DB)
	defer scheduler.Stop()

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
