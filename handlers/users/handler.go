package users

import (
	"net/http"
	"time"

	"cinema-backend/db"
	"cinema-backend/models"
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// subscriberCount is the number of active (non-expired) channel tokens held
// against a channel.
func subscriberCount(channelUserID string) (int64, error) {
	var count int64
	err := db.DB.Model(&models.ChannelToken{}).
		Where("channel_user_id = ? AND expires >= ?", channelUserID, time.Now()).
		Count(&count).Error
	return count, err
}

// @Summary Get a user
// @Description Return a user's public profile with their active subscriber count.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} models.SafeUser
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /users/{id} [get]
func GetUser(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	safe := user.Safe()
	if user.UserType == models.Channel {
		count, err := subscriberCount(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting subscribers: " + err.Error()})
			return
		}
		safe.Subscribers = count
	}

	c.JSON(http.StatusOK, safe)
}

type searchUsersInput struct {
	Name *string `json:"name"`
}

// @Summary Search channels
// @Description List channels, optionally filtered by username or display name.
// @Tags users
// @Accept json
// @Produce json
// @Param body body searchUsersInput true "Optional name filter"
// @Security BearerAuth
// @Success 200 {array} models.SafeUser
// @Router /users [post]
func SearchUsers(c *gin.Context) {
	var input searchUsersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	query := db.DB.Where("user_type = ?", models.Channel)
	if input.Name != nil {
		pattern := "%" + *input.Name + "%"
		query = query.Where("username ILIKE ? OR display_name ILIKE ?", pattern, pattern)
	}

	var channels []models.User
	if err := query.Find(&channels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving channels: " + err.Error()})
		return
	}

	result := make([]models.SafeUser, 0, len(channels))
	for _, channel := range channels {
		safe := channel.Safe()
		count, err := subscriberCount(channel.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting subscribers: " + err.Error()})
			return
		}
		safe.Subscribers = count
		result = append(result, safe)
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Top channels
// @Description Return the ten channels whose videos have the most plays.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SafeUser
// @Router /users/top-channels [get]
func GetTopChannels(c *gin.Context) {
	var channelIDs []string
	err := db.DB.Table("users").
		Select("users.id").
		Joins("LEFT JOIN videos ON videos.user_id = users.id").
		Joins("LEFT JOIN video_plays ON video_plays.video_id = videos.id").
		Where("users.user_type = ?", models.Channel).
		Group("users.id").
		Order("COUNT(video_plays.id) DESC").
		Limit(10).
		Pluck("users.id", &channelIDs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving top channels: " + err.Error()})
		return
	}

	result := make([]models.SafeUser, 0, len(channelIDs))
	for _, id := range channelIDs {
		var channel models.User
		if err := db.DB.First(&channel, "id = ?", id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving channel: " + err.Error()})
			return
		}

		safe := channel.Safe()
		count, err := subscriberCount(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting subscribers: " + err.Error()})
			return
		}
		safe.Subscribers = count
		result = append(result, safe)
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Update my profile
// @Description Change profile fields, the password (with current-password check) or the avatar and cover images.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param bio formData string false "Bio"
// @Param displayName formData string false "Display name"
// @Param subscriptionsEnabled formData boolean false "Subscription token grants on or off"
// @Param currentPassword formData string false "Current password, required to change it"
// @Param newPassword formData string false "New password"
// @Param avatar formData file false "Avatar image"
// @Param cover formData file false "Cover image"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Profile updated"
// @Failure 400 {object} map[string]string "error: Incorrect password"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /users/update-channel [post]
func UpdateChannel(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]interface{}{}

	if currentPassword := c.Request.FormValue("currentPassword"); currentPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect password supplied"})
			return
		}

		newPassword := c.Request.FormValue("newPassword")
		if len(newPassword) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The new password must contain at least 6 characters"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing the new password"})
			return
		}
		updates["password"] = string(hash)
	}

	if bio := c.Request.FormValue("bio"); bio != "" {
		updates["bio"] = bio
	}

	if displayName := c.Request.FormValue("displayName"); displayName != "" {
		updates["display_name"] = displayName
	}

	if subsEnabled := c.Request.FormValue("subscriptionsEnabled"); subsEnabled != "" {
		updates["subscriptions_enabled"] = subsEnabled == "true"
	}

	if avatar, err := c.FormFile("avatar"); err == nil && avatar != nil {
		url, err := utils.UploadImage(avatar, "avatars")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't upload avatar: " + err.Error()})
			return
		}
		updates["avatar_url"] = url
	}

	if cover, err := c.FormFile("cover"); err == nil && cover != nil {
		url, err := utils.UploadImage(cover, "covers")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't upload cover: " + err.Error()})
			return
		}
		updates["cover_url"] = url
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to update"})
		return
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the profile: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Profile updated")
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
