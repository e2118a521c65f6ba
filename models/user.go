package models

import (
	"time"
)

type UserType string

const (
	Subscriber UserType = "SUBSCRIBER"
	Channel    UserType = "CHANNEL"
)

type User struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Username             string    `json:"username" gorm:"uniqueIndex;not null"`
	Email                string    `json:"email" gorm:"uniqueIndex;not null"`
	Password             string    `json:"-"`
	PasswordResetToken   string    `json:"-"`
	UserType             UserType  `json:"userType" gorm:"type:varchar(20);not null"`
	StripeCustomerId     string    `json:"-"`
	StripeAccountId      string    `json:"-"`
	ChannelOnboarded     bool      `json:"channelOnboarded"`
	SubscriptionsEnabled bool      `json:"subscriptionsEnabled"`
	AvatarURL            string    `json:"avatarUrl"`
	CoverURL             string    `json:"coverUrl"`
	DisplayName          string    `json:"displayName"`
	Bio                  string    `json:"bio"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// SafeUser is the public projection of a user, embedded wherever another
// user's profile appears in a response.
type SafeUser struct {
	ID                   string   `json:"id"`
	Username             string   `json:"username"`
	UserType             UserType `json:"userType"`
	AvatarURL            string   `json:"avatarUrl"`
	CoverURL             string   `json:"coverUrl"`
	SubscriptionsEnabled bool     `json:"subscriptionsEnabled"`
	DisplayName          string   `json:"displayName"`
	Bio                  string   `json:"bio"`
	Subscribers          int64    `json:"subscribers"`
	ChannelOnboarded     bool     `json:"channelOnboarded"`
}

func (u User) Safe() SafeUser {
	return SafeUser{
		ID:                   u.ID,
		Username:             u.Username,
		UserType:             u.UserType,
		AvatarURL:            u.AvatarURL,
		CoverURL:             u.CoverURL,
		SubscriptionsEnabled: u.SubscriptionsEnabled,
		DisplayName:          u.DisplayName,
		Bio:                  u.Bio,
		ChannelOnboarded:     u.ChannelOnboarded,
	}
}
