package models

import (
	"time"
)

type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// TokenTransaction is an append-only ledger entry for a channel's balance.
// Rows are never updated or deleted.
type TokenTransaction struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ChannelUserID   string          `json:"channelUserId" gorm:"type:uuid;not null;index"`
	TransactionType TransactionType `json:"transactionType" gorm:"type:varchar(20);not null"`
	Amount          int             `json:"amount" gorm:"not null"`
	CreatedAt       time.Time       `json:"createdAt"`
}
