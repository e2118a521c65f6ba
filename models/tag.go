package models

type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

type PopularTag struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Videos int64  `json:"videos"`
}
