package models

import (
	"time"
)

// Token is one unit of viewer-granted value. It is created unused and can
// be transferred to exactly one channel, at which point DateUsed is set and
// the row never changes again.
type Token struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string     `json:"userId" gorm:"type:uuid;not null;index"`
	DateGranted time.Time  `json:"dateGranted" gorm:"autoCreateTime"`
	DateUsed    *time.Time `json:"dateUsed"`
}

// ChannelToken records a Token having been transferred to a channel.
// Expires only affects whether the pair counts as "active"; conversion
// eligibility ignores it.
type ChannelToken struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TokenID       string    `json:"tokenId" gorm:"type:uuid;not null"`
	ChannelUserID string    `json:"channelUserId" gorm:"type:uuid;not null;index"`
	Expires       time.Time `json:"expires"`
	Converted     bool      `json:"converted" gorm:"default:false"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ChannelTokenWithUser struct {
	ChannelToken
	User SafeUser `json:"user"`
}
