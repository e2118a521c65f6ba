package models

import (
	"time"
)

type UpvoteType string

const (
	Up   UpvoteType = "UP"
	Down UpvoteType = "DOWN"
)

// Exactly zero or one upvote row exists per (user, video) pair, enforced by
// the unique pair index. Toggling the same vote off flips Inactive instead
// of deleting the row.
type VideoUpvote struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID     string     `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_video_upvote_pair"`
	VideoID    string     `json:"videoId" gorm:"type:uuid;not null;uniqueIndex:idx_video_upvote_pair"`
	UpvoteType UpvoteType `json:"upvoteType" gorm:"type:varchar(10);not null"`
	Inactive   bool       `json:"inactive" gorm:"default:false"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type CommentUpvote struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID     string     `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_comment_upvote_pair"`
	CommentID  string     `json:"commentId" gorm:"type:uuid;not null;uniqueIndex:idx_comment_upvote_pair"`
	UpvoteType UpvoteType `json:"upvoteType" gorm:"type:varchar(10);not null"`
	Inactive   bool       `json:"inactive" gorm:"default:false"`
	CreatedAt  time.Time  `json:"createdAt"`
}
