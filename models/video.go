package models

import (
	"time"
)

type VideoStatus string

const (
	VideoProcessing VideoStatus = "PROCESSING"
	VideoReady      VideoStatus = "READY"
)

type Video struct {
	ID          string      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string      `json:"userId" gorm:"type:uuid;not null;index"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	FileURL     string      `json:"fileUrl"`
	Status      VideoStatus `json:"status" gorm:"type:varchar(20);default:'PROCESSING'"`
	UploadDate  time.Time   `json:"uploadDate" gorm:"autoCreateTime"`
	Tags        []Tag       `json:"tags" gorm:"many2many:video_tags;"`
}

// VideoPlay is one playback event. Append-only; feeds both the recommender
// and the recently-watched filter.
type VideoPlay struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	VideoID   string    `json:"videoId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}
