package comments

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"cinema-backend/models"
	"cinema-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestCreateComment_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "user-uuid-1"
	videoID := "video-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "videos" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(videoID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "title", "status"}).
			AddRow(videoID, "channel-uuid-1", "Test Video", "READY"))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "comments" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("comment-uuid-1"))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/comments", func(c *gin.Context) {
		c.Set("user_id", userID)
		CreateComment(c)
	})

	jsonData, _ := json.Marshal(map[string]string{"text": "Great video", "videoId": videoID})
	req, _ := http.NewRequest(http.MethodPost, "/comments", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var comment models.Comment
	json.Unmarshal(resp.Body.Bytes(), &comment)
	assert.Equal(t, "Great video", comment.Text)
	assert.Equal(t, videoID, comment.VideoID)
	assert.False(t, comment.Inactive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComment_VideoNotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "videos" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs("missing-video", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.POST("/comments", func(c *gin.Context) {
		c.Set("user_id", "user-uuid-1")
		CreateComment(c)
	})

	jsonData, _ := json.Marshal(map[string]string{"text": "Great video", "videoId": "missing-video"})
	req, _ := http.NewRequest(http.MethodPost, "/comments", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditComment_NotOwnerReturns404(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "comments" SET "text"=\$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs("Edited", "comment-uuid-1", "intruder-uuid").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/comments/edit", func(c *gin.Context) {
		c.Set("user_id", "intruder-uuid")
		EditComment(c)
	})

	jsonData, _ := json.Marshal(map[string]string{"commentId": "comment-uuid-1", "text": "Edited"})
	req, _ := http.NewRequest(http.MethodPost, "/comments/edit", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteComment_MarksInactive(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "user-uuid-1"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "comments" SET "inactive"=\$1 WHERE id = \$2 AND user_id = \$3`).
		WithArgs(true, "comment-uuid-1", userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/comments/delete", func(c *gin.Context) {
		c.Set("user_id", userID)
		DeleteComment(c)
	})

	jsonData, _ := json.Marshal(map[string]string{"commentId": "comment-uuid-1"})
	req, _ := http.NewRequest(http.MethodPost, "/comments/delete", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Comment deleted", respBody["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetComments_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	viewerID := "user-uuid-1"
	authorID := "user-uuid-2"
	videoID := "video-uuid-1"
	commentID := "comment-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "comments" WHERE video_id = \$1`).
		WithArgs(videoID).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "video_id", "text", "inactive", "created_at"}).
			AddRow(commentID, authorID, videoID, "First!", false, time.Now()))
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(authorID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "user_type"}).
			AddRow(authorID, "commenter", "SUBSCRIBER"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "comment_upvotes"`).
		WithArgs(commentID, "UP", false).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "comment_upvotes"`).
		WithArgs(commentID, "DOWN", false).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT "upvote_type" FROM "comment_upvotes"`).
		WithArgs(commentID, viewerID, false, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.GET("/comments/:video_id", func(c *gin.Context) {
		c.Set("user_id", viewerID)
		GetComments(c)
	})

	req, _ := http.NewRequest(http.MethodGet, "/comments/"+videoID, nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var comments []models.CommentWithUser
	json.Unmarshal(resp.Body.Bytes(), &comments)
	assert.Len(t, comments, 1)
	assert.Equal(t, "commenter", comments[0].User.Username)
	assert.Equal(t, int64(2), comments[0].Upvotes)
	assert.False(t, comments[0].Upvoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
