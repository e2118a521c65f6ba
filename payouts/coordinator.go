// Package payouts orchestrates channel withdrawals against the token
// ledger and the external transfer API.
package payouts

import (
	"errors"
	"fmt"
	"sync"

	"cinema-backend/ledger"
	"cinema-backend/models"

	"gorm.io/gorm"
)

var (
	ErrInsufficientBalance = errors.New("withdrawal amount exceeds the current balance")
	ErrNotOnboarded        = errors.New("channel has not completed payout onboarding")
	ErrPayoutFailed        = errors.New("payout failed")
)

// TransferClient is the narrow surface of the external payment processor
// the coordinator needs.
type TransferClient interface {
	CreateTransfer(accountID string, amount int) error
}

type Coordinator struct {
	transfers TransferClient
	locks     sync.Map // channel user ID -> *sync.Mutex
}

func NewCoordinator(transfers TransferClient) *Coordinator {
	return &Coordinator{transfers: transfers}
}

func (p *Coordinator) lockFor(channelUserID string) *sync.Mutex {
	mu, _ := p.locks.LoadOrStore(channelUserID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RequestWithdrawal checks the channel's balance and onboarding state,
// invokes the external transfer, and debits the ledger only after the
// transfer succeeds. A per-channel lock keeps concurrent withdrawals from
// both passing the balance check.
func (p *Coordinator) RequestWithdrawal(db *gorm.DB, channelUserID string, amount int) error {
	mu := p.lockFor(channelUserID)
	mu.Lock()
	defer mu.Unlock()

	l := ledger.New(db)

	balance, err := l.Balance(channelUserID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}

	var channel models.User
	if err := db.First(&channel, "id = ?", channelUserID).Error; err != nil {
		return err
	}
	if channel.StripeAccountId == "" || !channel.ChannelOnboarded {
		return ErrNotOnboarded
	}

	if err := p.transfers.CreateTransfer(channel.StripeAccountId, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrPayoutFailed, err)
	}

	return db.Create(&models.TokenTransaction{
		ChannelUserID:   channelUserID,
		TransactionType: models.Withdrawal,
		Amount:          amount,
	}).Error
}
