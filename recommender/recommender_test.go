package recommender

import (
	"testing"
	"time"

	"cinema-backend/models"
	"cinema-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestRecommend_NoPlayHistoryReturnsEmptyList(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "11111111-e89b-12d3-a456-426614174000"

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "tags" JOIN video_tags ON video_tags\.tag_id = tags\.id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	cards, err := Recommend(gormDB, userID)

	assert.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommend_SharedTagSurfacesUnplayedVideo(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	userID := "11111111-e89b-12d3-a456-426614174000"
	uploaderID := "22222222-e89b-12d3-a456-426614174000"
	videoID := "33333333-e89b-12d3-a456-426614174000"
	tagID := "44444444-e89b-12d3-a456-426614174000"

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "tags" JOIN video_tags ON video_tags\.tag_id = tags\.id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tagID))

	mock.ExpectQuery(`SELECT DISTINCT videos\.\* FROM "videos" JOIN video_tags ON video_tags\.video_id = videos\.id`).
		WithArgs(string(models.VideoReady), tagID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "status", "upload_date"}).
			AddRow(videoID, uploaderID, "Late Night Stand-up", string(models.VideoReady), time.Now()))

	// Tags preload (join table then tags)
	mock.ExpectQuery(`SELECT (.+) FROM "video_tags" WHERE "video_tags"\."video_id" = \$1`).
		WithArgs(videoID).
		WillReturnRows(sqlmock.NewRows([]string{"video_id", "tag_id"}).AddRow(videoID, tagID))
	mock.ExpectQuery(`SELECT (.+) FROM "tags" WHERE "tags"\."id" = \$1`).
		WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(tagID, "comedy"))

	// Card annotations
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE id = \$1(.+)LIMIT \$2`).
		WithArgs(uploaderID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "user_type"}).
			AddRow(uploaderID, "comedychannel", "CHANNEL"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "video_upvotes"`).
		WithArgs(videoID, string(models.Up), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "video_upvotes"`).
		WithArgs(videoID, string(models.Down), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "video_plays" WHERE video_id = \$1`).
		WithArgs(videoID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT "upvote_type" FROM "video_upvotes"`).
		WithArgs(videoID, userID, false, 1).
		WillReturnRows(sqlmock.NewRows([]string{"upvote_type"}).AddRow(string(models.Up)))

	cards, err := Recommend(gormDB, userID)

	assert.NoError(t, err)
	assert.Len(t, cards, 1)
	assert.Equal(t, videoID, cards[0].ID)
	assert.Equal(t, "comedychannel", cards[0].User.Username)
	assert.True(t, cards[0].Upvoted)
	assert.False(t, cards[0].Downvoted)
	assert.Equal(t, int64(3), cards[0].Upvotes)
	assert.Equal(t, int64(12), cards[0].Plays)
	assert.NoError(t, mock.ExpectationsWereMet())
}
