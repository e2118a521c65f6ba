package models

import (
	"time"
)

// Comment rows are never hard-deleted; Inactive marks a removed comment so
// the thread history stays intact.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	VideoID   string    `json:"videoId" gorm:"type:uuid;not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	Inactive  bool      `json:"inactive" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentWithUser struct {
	Comment
	User      SafeUser `json:"user"`
	Upvoted   bool     `json:"upvoted"`
	Downvoted bool     `json:"downvoted"`
	Upvotes   int64    `json:"upvotes"`
	Downvotes int64    `json:"downvotes"`
}
