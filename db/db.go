package db

import (
	"os"

	"cinema-backend/models"
	"cinema-backend/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		utils.LogError(err, "Warning: impossible to load the .env file")
		utils.LogInfo("The environment variable DB_URL must be defined in the system environment")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		utils.LogError(nil, "Variable DB_URL not set")
		panic("Database URL not configured")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: utils.GetGormLogger(),
	})
	if err != nil {
		utils.LogError(err, "Error connecting to the database")
		panic("Could not connect to the database")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.ChannelToken{},
		&models.TokenTransaction{},
		&models.Video{},
		&models.VideoPlay{},
		&models.Tag{},
		&models.Comment{},
		&models.VideoUpvote{},
		&models.CommentUpvote{},
	)
	if err != nil {
		utils.LogError(err, "Error migrating database")
		panic("Could not migrate database")
	}

	utils.LogSuccess("Database connection successful")
}
