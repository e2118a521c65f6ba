// Package ledger owns the token economy: token grants, viewer-to-channel
// transfers, channel balances and the monthly conversion batch. It is the
// only code allowed to mutate Token, ChannelToken and TokenTransaction rows.
package ledger

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"time"

	"cinema-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoTokensAvailable = errors.New("no unused tokens available")
	ErrTargetNotChannel  = errors.New("target user is not a channel")
	ErrAlreadyActive     = errors.New("an active token already exists for this channel")
)

const (
	// DefaultTokenValue is the currency amount one converted token deposits.
	DefaultTokenValue = 180
	// DefaultValidityHours is how long a transferred token counts as active.
	DefaultValidityHours = 720
	// MonthlyTokenGrant is how many tokens each subscribed user receives per
	// batch run.
	MonthlyTokenGrant = 5
)

type Ledger struct {
	db         *gorm.DB
	tokenValue int
	validity   time.Duration
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:         db,
		tokenValue: envInt("TOKEN_VALUE", DefaultTokenValue),
		validity:   time.Duration(envInt("CHANNEL_TOKEN_VALIDITY_HOURS", DefaultValidityHours)) * time.Hour,
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// GrantTokens inserts count fresh unused tokens owned by the given user.
func (l *Ledger) GrantTokens(userID string, count int) error {
	return grantTokens(l.db, userID, count)
}

func grantTokens(tx *gorm.DB, userID string, count int) error {
	if count <= 0 {
		return nil
	}

	tokens := make([]models.Token, count)
	for i := range tokens {
		tokens[i] = models.Token{UserID: userID}
	}

	return tx.Create(&tokens).Error
}

// HasActiveToken reports whether the source user holds a non-expired
// ChannelToken for the target channel.
func (l *Ledger) HasActiveToken(sourceUserID, channelUserID string) (bool, error) {
	return l.hasActiveToken(l.db, sourceUserID, channelUserID)
}

func (l *Ledger) hasActiveToken(tx *gorm.DB, sourceUserID, channelUserID string) (bool, error) {
	var count int64
	err := tx.Model(&models.ChannelToken{}).
		Joins("JOIN tokens ON tokens.id = channel_tokens.token_id").
		Where("tokens.user_id = ? AND channel_tokens.channel_user_id = ? AND channel_tokens.expires >= ?",
			sourceUserID, channelUserID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransferToken consumes the source user's oldest unused token and records
// its transfer to the channel. The whole sequence runs in one transaction
// with the token row locked, so two concurrent transfers by the same source
// cannot both spend the same token.
func (l *Ledger) TransferToken(sourceUserID, channelUserID string) (time.Time, error) {
	var usedAt time.Time

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var token models.Token
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND date_used IS NULL", sourceUserID).
			Order("date_granted ASC").
			First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoTokensAvailable
		}
		if err != nil {
			return err
		}

		var target models.User
		err = tx.First(&target, "id = ?", channelUserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotChannel
		}
		if err != nil {
			return err
		}
		if target.UserType != models.Channel {
			return ErrTargetNotChannel
		}

		active, err := l.hasActiveToken(tx, sourceUserID, channelUserID)
		if err != nil {
			return err
		}
		if active {
			return ErrAlreadyActive
		}

		now := time.Now()
		channelToken := models.ChannelToken{
			TokenID:       token.ID,
			ChannelUserID: channelUserID,
			Expires:       now.Add(l.validity),
		}
		if err := tx.Create(&channelToken).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Token{}).Where("id = ?", token.ID).
			Update("date_used", now).Error; err != nil {
			return err
		}

		usedAt = now
		return nil
	})

	return usedAt, err
}

// Balance is the sum of deposits minus withdrawals for a channel.
func (l *Ledger) Balance(channelUserID string) (int, error) {
	transactions, err := l.Transactions(channelUserID)
	if err != nil {
		return 0, err
	}

	balance := 0
	for _, t := range transactions {
		switch t.TransactionType {
		case models.Deposit:
			balance += t.Amount
		case models.Withdrawal:
			balance -= t.Amount
		}
	}

	return balance, nil
}

func (l *Ledger) Transactions(channelUserID string) ([]models.TokenTransaction, error) {
	var transactions []models.TokenTransaction
	err := l.db.Where("channel_user_id = ?", channelUserID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

// UnconvertedCount counts the channel's tokens waiting for the next
// conversion run.
func (l *Ledger) UnconvertedCount(channelUserID string) (int64, error) {
	var count int64
	err := l.db.Model(&models.ChannelToken{}).
		Where("channel_user_id = ? AND converted = ?", channelUserID, false).
		Count(&count).Error
	return count, err
}

// ConvertPendingTokens turns every unconverted ChannelToken into currency:
// one DEPOSIT per channel worth count times the token value. The rows are
// locked and the conversion flag is set on exactly the rows counted, so
// tokens transferred while the batch runs are left for the next run.
func (l *Ledger) ConvertPendingTokens() error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var pending []models.ChannelToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("converted = ?", false).
			Find(&pending).Error
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		counts := make(map[string]int)
		ids := make([]string, 0, len(pending))
		for _, ct := range pending {
			counts[ct.ChannelUserID]++
			ids = append(ids, ct.ID)
		}

		channels := make([]string, 0, len(counts))
		for channel := range counts {
			channels = append(channels, channel)
		}
		sort.Strings(channels)

		deposits := make([]models.TokenTransaction, 0, len(channels))
		for _, channel := range channels {
			deposits = append(deposits, models.TokenTransaction{
				ChannelUserID:   channel,
				TransactionType: models.Deposit,
				Amount:          counts[channel] * l.tokenValue,
			})
		}

		if err := tx.Create(&deposits).Error; err != nil {
			return err
		}

		return tx.Model(&models.ChannelToken{}).
			Where("id IN ?", ids).
			Update("converted", true).Error
	})
}

// GrantSubscriberTokens gives every user with subscriptions enabled their
// monthly token allowance. The whole batch commits or rolls back as one
// transaction; a store failure mid-run leaves no user granted.
func (l *Ledger) GrantSubscriberTokens() error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var subscribers []models.User
		if err := tx.Where("subscriptions_enabled = ?", true).Find(&subscribers).Error; err != nil {
			return err
		}

		for _, subscriber := range subscribers {
			if err := grantTokens(tx, subscriber.ID, MonthlyTokenGrant); err != nil {
				return err
			}
		}

		return nil
	})
}
