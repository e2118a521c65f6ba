package comments

import (
	"net/http"

	"cinema-backend/db"
	"cinema-backend/models"
	"cinema-backend/voting"

	"github.com/gin-gonic/gin"
)

type createCommentInput struct {
	Text    string `json:"text" binding:"required,min=1,max=256"`
	VideoID string `json:"videoId" binding:"required"`
}

// @Summary Add a comment
// @Description Post a comment on a video.
// @Tags comments
// @Accept json
// @Produce json
// @Param body body createCommentInput true "Comment text and video"
// @Security BearerAuth
// @Success 201 {object} models.Comment
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Video not found"
// @Router /comments [post]
func CreateComment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var video models.Video
	if err := db.DB.First(&video, "id = ?", input.VideoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	comment := models.Comment{
		UserID:  userID.(string),
		VideoID: input.VideoID,
		Text:    input.Text,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding the comment: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

type editCommentInput struct {
	CommentID string `json:"commentId" binding:"required"`
	Text      string `json:"text" binding:"required,min=1,max=256"`
}

// @Summary Edit a comment
// @Description Change the text of a comment owned by the authenticated user.
// @Tags comments
// @Accept json
// @Produce json
// @Param body body editCommentInput true "Comment and new text"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Comment updated"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Comment not found"
// @Router /comments/edit [post]
func EditComment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input editCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result := db.DB.Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", input.CommentID, userID).
		Update("text", input.Text)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the comment: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}

type deleteCommentInput struct {
	CommentID string `json:"commentId" binding:"required"`
}

// @Summary Delete a comment
// @Description Mark a comment owned by the authenticated user inactive. The row is kept for thread history.
// @Tags comments
// @Accept json
// @Produce json
// @Param body body deleteCommentInput true "Comment to delete"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Comment deleted"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Comment not found"
// @Router /comments/delete [post]
func DeleteComment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input deleteCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	result := db.DB.Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", input.CommentID, userID).
		Update("inactive", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting the comment: " + result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// @Summary List comments
// @Description Return a video's comments with authors, vote counts and the requester's vote flags.
// @Tags comments
// @Produce json
// @Param video_id path string true "Video ID"
// @Security BearerAuth
// @Success 200 {array} models.CommentWithUser
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /comments/{video_id} [get]
func GetComments(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var comments []models.Comment
	err := db.DB.Where("video_id = ?", c.Param("video_id")).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving comments: " + err.Error()})
		return
	}

	result := make([]models.CommentWithUser, 0, len(comments))
	for _, comment := range comments {
		var author models.User
		if err := db.DB.First(&author, "id = ?", comment.UserID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving comment author: " + err.Error()})
			return
		}

		up, down, err := voting.Counts(db.DB, voting.TargetComment, comment.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting votes: " + err.Error()})
			return
		}

		vote, err := voting.ActiveVote(db.DB, voting.TargetComment, userID.(string), comment.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving vote: " + err.Error()})
			return
		}

		result = append(result, models.CommentWithUser{
			Comment:   comment,
			User:      author.Safe(),
			Upvoted:   vote != nil && *vote == models.Up,
			Downvoted: vote != nil && *vote == models.Down,
			Upvotes:   up,
			Downvotes: down,
		})
	}

	c.JSON(http.StatusOK, result)
}
