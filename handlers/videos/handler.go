package videos

import (
	"encoding/json"
	"net/http"
	"time"

	"cinema-backend/db"
	"cinema-backend/models"
	"cinema-backend/recommender"
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type searchInput struct {
	Title           *string `json:"title"`
	Tag             *string `json:"tag"`
	User            *string `json:"user"`
	Recommended     *bool   `json:"recommended"`
	Subscriptions   *bool   `json:"subscriptions"`
	Upvoted         *bool   `json:"upvoted"`
	RecentlyWatched *bool   `json:"recentlyWatched"`
}

// applyFilters builds the search query: a READY base predicate plus one
// conjunctive predicate per populated optional field.
func applyFilters(query *gorm.DB, input searchInput, userID string) *gorm.DB {
	query = query.Where("videos.status = ?", models.VideoReady)

	if input.Title != nil {
		pattern := "%" + *input.Title + "%"
		query = query.Where("videos.title ILIKE ? OR videos.description ILIKE ?", pattern, pattern)
	}

	if input.Tag != nil {
		query = query.Where("EXISTS (SELECT 1 FROM video_tags WHERE video_tags.video_id = videos.id AND video_tags.tag_id = ?)", *input.Tag)
	}

	if input.User != nil {
		query = query.Where("videos.user_id = ?", *input.User)
	}

	if input.Subscriptions != nil && *input.Subscriptions {
		query = query.Where(`EXISTS (
			SELECT 1 FROM channel_tokens
			JOIN tokens ON tokens.id = channel_tokens.token_id
			WHERE tokens.user_id = ?
			  AND channel_tokens.channel_user_id = videos.user_id
			  AND channel_tokens.expires >= ?)`, userID, time.Now())
	}

	if input.Upvoted != nil && *input.Upvoted {
		query = query.Where(`EXISTS (
			SELECT 1 FROM video_upvotes
			WHERE video_upvotes.video_id = videos.id
			  AND video_upvotes.user_id = ?
			  AND video_upvotes.upvote_type = ?
			  AND video_upvotes.inactive = false)`, userID, models.Up)
	}

	if input.RecentlyWatched != nil && *input.RecentlyWatched {
		query = query.Where(`EXISTS (
			SELECT 1 FROM video_plays
			WHERE video_plays.video_id = videos.id
			  AND video_plays.user_id = ?)`, userID)
	}

	return query
}

// @Summary Search videos
// @Description List READY videos matching the optional filters, or the personalized recommendations when recommended is set.
// @Tags videos
// @Accept json
// @Produce json
// @Param filters body searchInput true "Optional filters"
// @Security BearerAuth
// @Success 200 {array} recommender.VideoCard
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /video [post]
func Search(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input searchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Recommended != nil && *input.Recommended {
		cards, err := recommender.Recommend(db.DB, userID.(string))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing recommendations: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, cards)
		return
	}

	var results []models.Video
	query := applyFilters(db.DB.Model(&models.Video{}).Preload("Tags"), input, userID.(string))
	if err := query.Order("videos.upload_date DESC").Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving videos: " + err.Error()})
		return
	}

	cards, err := recommender.BuildCards(db.DB, userID.(string), results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error building the video list: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, cards)
}

// @Summary Get a video
// @Description Return one video with uploader, tags, counts and the requester's vote flags.
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Security BearerAuth
// @Success 200 {object} recommender.VideoCard
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Video not found"
// @Router /video/{id} [get]
func GetVideo(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var video models.Video
	if err := db.DB.Preload("Tags").First(&video, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	cards, err := recommender.BuildCards(db.DB, userID.(string), []models.Video{video})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error building the video: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, cards[0])
}

type recordPlayInput struct {
	VideoID string `json:"videoId" binding:"required"`
}

// @Summary Record a play
// @Description Append one playback event for the authenticated user.
// @Tags videos
// @Accept json
// @Produce json
// @Param body body recordPlayInput true "Video played"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Play recorded"
// @Failure 400 {object} map[string]string "error: Couldn't record play"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /video/increment-play [post]
func RecordPlay(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input recordPlayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	play := models.VideoPlay{
		UserID:  userID.(string),
		VideoID: input.VideoID,
	}

	if err := db.DB.Create(&play).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't record play"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Play recorded"})
}

// @Summary List tags
// @Description Return every tag available for tagging and filtering.
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Tag
// @Router /video/tags [get]
func GetTags(c *gin.Context) {
	var tags []models.Tag
	if err := db.DB.Order("name ASC").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving tags: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, tags)
}

// @Summary Popular tags
// @Description Return the ten tags attached to the most videos.
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PopularTag
// @Router /video/popular-tags [get]
func GetPopularTags(c *gin.Context) {
	var result []models.PopularTag
	err := db.DB.Table("tags").
		Select("tags.id, tags.name, COUNT(video_tags.video_id) AS videos").
		Joins("LEFT JOIN video_tags ON video_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("videos DESC").
		Limit(10).
		Scan(&result).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving popular tags: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type updateVideoInput struct {
	VideoID     string  `json:"videoId" binding:"required"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// @Summary Update a video
// @Description Change the title or description of a video owned by the authenticated user.
// @Tags videos
// @Accept json
// @Produce json
// @Param body body updateVideoInput true "Fields to change"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Video updated"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Video not found"
// @Router /video/update [post]
func UpdateVideo(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input updateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to update"})
		return
	}

	result := db.DB.Model(&models.Video{}).
		Where("id = ? AND user_id = ?", input.VideoID, userID).
		Updates(updates)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the video: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video updated"})
}

// @Summary Upload a video
// @Description Upload a video file with title, description and tags. The file goes to media storage and the video becomes READY.
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Video title"
// @Param description formData string false "Video description"
// @Param tags formData string false "JSON array of tag IDs"
// @Param video formData file true "Video file"
// @Security BearerAuth
// @Success 201 {object} models.Video
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /upload [post]
func Upload(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	title := c.Request.FormValue("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	description := c.Request.FormValue("description")

	var tagIDs []string
	if tagsStr := c.Request.FormValue("tags"); tagsStr != "" {
		if err := json.Unmarshal([]byte(tagsStr), &tagIDs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tags format: " + err.Error()})
			return
		}
	}

	file, err := c.FormFile("video")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video file is required"})
		return
	}

	fileURL, err := utils.UploadVideo(file)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Video upload failed in Upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading the video: " + err.Error()})
		return
	}

	video := models.Video{
		UserID:      userID.(string),
		Title:       title,
		Description: description,
		FileURL:     fileURL,
		Status:      models.VideoReady,
	}

	if len(tagIDs) > 0 {
		var tags []models.Tag
		if err := db.DB.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error finding tags: " + err.Error()})
			return
		}
		video.Tags = tags
	}

	if err := db.DB.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the video: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Video uploaded")
	c.JSON(http.StatusCreated, video)
}
