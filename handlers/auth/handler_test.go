package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"cinema-backend/testutils"
	"cinema-backend/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	os.Setenv("JWT_SECRET", "test-secret")

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestLogin_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE username = \$1(.+)LIMIT \$2`).
		WithArgs("moviefan", 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "email", "password", "user_type"}).
			AddRow("user-uuid-1", "moviefan", "moviefan@example.com", string(hash), "SUBSCRIBER"))

	r := testutils.SetupTestRouter()
	r.POST("/auth/login", Login)

	jsonData, _ := json.Marshal(map[string]string{"username": "moviefan", "password": "Password1"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.NotEmpty(t, respBody["token"])

	claims, err := utils.DecodeJWT(respBody["token"])
	assert.NoError(t, err)
	assert.Equal(t, "user-uuid-1", claims["user_id"])
	assert.Equal(t, "SUBSCRIBER", claims["user_type"])
	assert.NotNil(t, claims["exp"])
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE username = \$1(.+)LIMIT \$2`).
		WithArgs("moviefan", 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "email", "password", "user_type"}).
			AddRow("user-uuid-1", "moviefan", "moviefan@example.com", string(hash), "SUBSCRIBER"))

	r := testutils.SetupTestRouter()
	r.POST("/auth/login", Login)

	jsonData, _ := json.Marshal(map[string]string{"username": "moviefan", "password": "NotThePassword1"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Wrong credentials", respBody["error"])
}

func TestLogin_UnknownUser(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE username = \$1(.+)LIMIT \$2`).
		WithArgs("ghost", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.POST("/auth/login", Login)

	jsonData, _ := json.Marshal(map[string]string{"username": "ghost", "password": "Password1"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegister_InvalidEmail(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.POST("/auth/register", Register)

	jsonData, _ := json.Marshal(map[string]string{
		"username": "moviefan",
		"email":    "not-an-email",
		"password": "Password1",
		"userType": "SUBSCRIBER",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "Invalid email format", respBody["error"])
}

func TestRegister_WeakPassword(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.POST("/auth/register", Register)

	jsonData, _ := json.Marshal(map[string]string{
		"username": "moviefan",
		"email":    "moviefan@example.com",
		"password": "password",
		"userType": "SUBSCRIBER",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRegister_DuplicateAccount(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1 OR username = \$2(.+)LIMIT \$3`).
		WithArgs("moviefan@example.com", "moviefan", 1).
		WillReturnRows(mock.NewRows([]string{"id", "username", "email"}).
			AddRow("user-uuid-1", "moviefan", "moviefan@example.com"))

	r := testutils.SetupTestRouter()
	r.POST("/auth/register", Register)

	jsonData, _ := json.Marshal(map[string]string{
		"username": "moviefan",
		"email":    "moviefan@example.com",
		"password": "Password1",
		"userType": "SUBSCRIBER",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_IncorrectCode(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("the-real-code"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1(.+)LIMIT \$2`).
		WithArgs("moviefan@example.com", 1).
		WillReturnRows(mock.NewRows([]string{"id", "email", "password_reset_token"}).
			AddRow("user-uuid-1", "moviefan@example.com", string(hash)))

	r := testutils.SetupTestRouter()
	r.POST("/auth/reset-password", ResetPassword)

	jsonData, _ := json.Marshal(map[string]string{
		"email":       "moviefan@example.com",
		"token":       "a-wrong-code",
		"newPassword": "Password2",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hash, _ := bcrypt.GenerateFromPassword([]byte("the-real-code"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1(.+)LIMIT \$2`).
		WithArgs("moviefan@example.com", 1).
		WillReturnRows(mock.NewRows([]string{"id", "email", "password_reset_token"}).
			AddRow("user-uuid-1", "moviefan@example.com", string(hash)))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET (.+) WHERE "id" = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/auth/reset-password", ResetPassword)

	jsonData, _ := json.Marshal(map[string]string{
		"email":       "moviefan@example.com",
		"token":       "the-real-code",
		"newPassword": "Password2",
	})
	req, _ := http.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsOnboarded_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	channelID := "channel-uuid-1"

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(channelID, 1).
		WillReturnRows(mock.NewRows([]string{"id", "user_type", "channel_onboarded"}).
			AddRow(channelID, "CHANNEL", true))

	r := testutils.SetupTestRouter()
	r.GET("/auth/onboarded", func(c *gin.Context) {
		c.Set("user_id", channelID)
		IsOnboarded(c)
	})

	req, _ := http.NewRequest(http.MethodGet, "/auth/onboarded", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "true", resp.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
