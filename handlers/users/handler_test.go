package users

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"cinema-backend/models"
	"cinema-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestGetUser_ChannelWithSubscribers(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	channelID := "channel-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(channelID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "user_type", "display_name", "bio"}).
			AddRow(channelID, "cinemachannel", "CHANNEL", "Cinema Channel", "Films every week"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "channel_tokens" WHERE channel_user_id = \$1 AND expires >= \$2`).
		WithArgs(channelID, sqlmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(42))

	r := testutils.SetupTestRouter()
	r.GET("/users/:id", GetUser)

	req, _ := http.NewRequest(http.MethodGet, "/users/"+channelID, nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var user models.SafeUser
	json.Unmarshal(resp.Body.Bytes(), &user)
	assert.Equal(t, "cinemachannel", user.Username)
	assert.Equal(t, int64(42), user.Subscribers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs("missing-user", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.GET("/users/:id", GetUser)

	req, _ := http.NewRequest(http.MethodGet, "/users/missing-user", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchUsers_NameFilter(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	channelID := "channel-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE user_type = \$1 AND \(username ILIKE \$2 OR display_name ILIKE \$3\)`).
		WithArgs("CHANNEL", "%cinema%", "%cinema%").
		WillReturnRows(mock.NewRows([]string{"id", "username", "user_type"}).
			AddRow(channelID, "cinemachannel", "CHANNEL"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "channel_tokens"`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(3))

	r := testutils.SetupTestRouter()
	r.POST("/users", SearchUsers)

	jsonData, _ := json.Marshal(map[string]string{"name": "cinema"})
	req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var channels []models.SafeUser
	json.Unmarshal(resp.Body.Bytes(), &channels)
	assert.Len(t, channels, 1)
	assert.Equal(t, int64(3), channels[0].Subscribers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChannel_WrongCurrentPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "channel-uuid-1"
	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(userID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "password", "user_type"}).
			AddRow(userID, "cinemachannel", string(hash), "CHANNEL"))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("currentPassword", "NotThePassword")
	writer.WriteField("newPassword", "Password2")
	writer.Close()

	r := testutils.SetupTestRouter()
	r.POST("/users/update-channel", func(c *gin.Context) {
		c.Set("user_id", userID)
		UpdateChannel(c)
	})

	req, _ := http.NewRequest(http.MethodPost, "/users/update-channel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Incorrect password supplied", respBody["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateChannel_NothingToUpdate(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "channel-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(userID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "user_type"}).
			AddRow(userID, "cinemachannel", "CHANNEL"))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	r := testutils.SetupTestRouter()
	r.POST("/users/update-channel", func(c *gin.Context) {
		c.Set("user_id", userID)
		UpdateChannel(c)
	})

	req, _ := http.NewRequest(http.MethodPost, "/users/update-channel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Nothing to update", respBody["message"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
