// Package recommender computes the personalized video feed from a user's
// watch history and tag overlap.
package recommender

import (
	"cinema-backend/models"
	"cinema-backend/voting"

	"gorm.io/gorm"
)

// VideoCard is a video plus everything the frontend renders next to it:
// the uploader, the full tag list, aggregate counts and the requesting
// user's own vote flags.
type VideoCard struct {
	models.Video
	User      models.SafeUser `json:"user"`
	Upvoted   bool            `json:"upvoted"`
	Downvoted bool            `json:"downvoted"`
	Upvotes   int64           `json:"upvotes"`
	Downvotes int64           `json:"downvotes"`
	Plays     int64           `json:"plays"`
}

// Recommend returns READY videos the user has not played that share at
// least one tag with a video they have played. A user with no play history
// gets an empty list; there is no popularity fallback.
func Recommend(db *gorm.DB, userID string) ([]VideoCard, error) {
	var tagIDs []string
	err := db.Table("tags").
		Distinct("tags.id").
		Joins("JOIN video_tags ON video_tags.tag_id = tags.id").
		Joins("JOIN video_plays ON video_plays.video_id = video_tags.video_id").
		Where("video_plays.user_id = ?", userID).
		Pluck("tags.id", &tagIDs).Error
	if err != nil {
		return nil, err
	}

	if len(tagIDs) == 0 {
		return []VideoCard{}, nil
	}

	var videos []models.Video
	err = db.Preload("Tags").
		Joins("JOIN video_tags ON video_tags.video_id = videos.id").
		Where("videos.status = ?", models.VideoReady).
		Where("video_tags.tag_id IN ?", tagIDs).
		Where("NOT EXISTS (SELECT 1 FROM video_plays WHERE video_plays.user_id = ? AND video_plays.video_id = videos.id)", userID).
		Distinct("videos.*").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}

	return BuildCards(db, userID, videos)
}

// BuildCards annotates videos with uploader, counts and the viewer's vote
// flags. Shared by the recommender and the video search/detail handlers.
func BuildCards(db *gorm.DB, viewerID string, videos []models.Video) ([]VideoCard, error) {
	cards := make([]VideoCard, 0, len(videos))

	for _, video := range videos {
		var uploader models.User
		if err := db.First(&uploader, "id = ?", video.UserID).Error; err != nil {
			return nil, err
		}

		up, down, err := voting.Counts(db, voting.TargetVideo, video.ID)
		if err != nil {
			return nil, err
		}

		var plays int64
		err = db.Model(&models.VideoPlay{}).
			Where("video_id = ?", video.ID).
			Count(&plays).Error
		if err != nil {
			return nil, err
		}

		vote, err := voting.ActiveVote(db, voting.TargetVideo, viewerID, video.ID)
		if err != nil {
			return nil, err
		}

		cards = append(cards, VideoCard{
			Video:     video,
			User:      uploader.Safe(),
			Upvoted:   vote != nil && *vote == models.Up,
			Downvoted: vote != nil && *vote == models.Down,
			Upvotes:   up,
			Downvotes: down,
			Plays:     plays,
		})
	}

	return cards, nil
}
