package upvotes

import (
	"net/http"

	"cinema-backend/db"
	"cinema-backend/models"
	"cinema-backend/voting"

	"github.com/gin-gonic/gin"
)

type toggleCommentInput struct {
	CommentID  string            `json:"commentId" binding:"required"`
	UpvoteType models.UpvoteType `json:"upvoteType" binding:"required"`
}

// @Summary Toggle a comment vote
// @Description Apply one up/down vote action on a comment for the authenticated user.
// @Tags upvotes
// @Accept json
// @Produce json
// @Param body body toggleCommentInput true "Comment and vote direction"
// @Security BearerAuth
// @Success 200 {object} voting.Vote
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Comment not found"
// @Router /upvote/toggle-comment [post]
func ToggleCommentUpvote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input toggleCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.UpvoteType != models.Up && input.UpvoteType != models.Down {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upvoteType must be UP or DOWN"})
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, "id = ?", input.CommentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	vote, err := voting.Toggle(db.DB, voting.TargetComment, userID.(string), input.CommentID, input.UpvoteType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error toggling the vote: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, vote)
}

type toggleVideoInput struct {
	VideoID    string            `json:"videoId" binding:"required"`
	UpvoteType models.UpvoteType `json:"upvoteType" binding:"required"`
}

// @Summary Toggle a video vote
// @Description Apply one up/down vote action on a video for the authenticated user.
// @Tags upvotes
// @Accept json
// @Produce json
// @Param body body toggleVideoInput true "Video and vote direction"
// @Security BearerAuth
// @Success 200 {object} voting.Vote
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Video not found"
// @Router /upvote/toggle-video [post]
func ToggleVideoUpvote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input toggleVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.UpvoteType != models.Up && input.UpvoteType != models.Down {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upvoteType must be UP or DOWN"})
		return
	}

	var video models.Video
	if err := db.DB.First(&video, "id = ?", input.VideoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}

	vote, err := voting.Toggle(db.DB, voting.TargetVideo, userID.(string), input.VideoID, input.UpvoteType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error toggling the vote: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, vote)
}

// @Summary Video vote counts
// @Description Return the active up and down vote totals for a video.
// @Tags upvotes
// @Produce json
// @Param id path string true "Video ID"
// @Security BearerAuth
// @Success 200 {object} map[string]int64 "upvotes, downvotes"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /upvote/video/{id} [get]
func GetVideoUpvoteCount(c *gin.Context) {
	videoID := c.Param("id")

	up, down, err := voting.Counts(db.DB, voting.TargetVideo, videoID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting votes: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvotes": up, "downvotes": down})
}
