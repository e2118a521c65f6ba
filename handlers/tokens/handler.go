package tokens

import (
	"errors"
	"net/http"
	"time"

	"cinema-backend/db"
	"cinema-backend/ledger"
	"cinema-backend/models"
	"cinema-backend/payouts"
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
)

// The coordinator is package-level so per-channel withdrawal locks survive
// across requests.
var coordinator = payouts.NewCoordinator(payouts.StripeTransferClient{})

// @Summary List my tokens
// @Description Return every token the authenticated user has been granted, used or not.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Token
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens [get]
func GetMyTokens(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var tokens []models.Token
	err := db.DB.Where("user_id = ?", userID).Order("date_granted ASC").Find(&tokens).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving tokens: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, tokens)
}

type transferInput struct {
	ChannelUserID string `json:"channelUserId" binding:"required"`
}

// @Summary Transfer a token to a channel
// @Description Consume one unused token and grant it to the channel for the validity window.
// @Tags tokens
// @Accept json
// @Produce json
// @Param body body transferInput true "Target channel"
// @Security BearerAuth
// @Success 200 {object} map[string]string "usedAt: transfer timestamp"
// @Failure 400 {object} map[string]string "error: No tokens left"
// @Failure 403 {object} map[string]string "error: Target is not a channel"
// @Failure 409 {object} map[string]string "error: Token already active"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/transfer [post]
func Transfer(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input transferInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	usedAt, err := ledger.New(db.DB).TransferToken(userID.(string), input.ChannelUserID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNoTokensAvailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You do not have any tokens left"})
		case errors.Is(err, ledger.ErrTargetNotChannel):
			c.JSON(http.StatusForbidden, gin.H{"error": "Target is not a channel"})
		case errors.Is(err, ledger.ErrAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active token for this channel"})
		default:
			utils.LogErrorWithUser(userID, err, "Token transfer failed in Transfer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error transferring the token"})
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Token transferred")
	c.JSON(http.StatusOK, gin.H{"usedAt": usedAt.Format(time.RFC3339)})
}

// @Summary List my active tokens
// @Description Return the authenticated user's non-expired channel tokens with the target channel's profile.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ChannelTokenWithUser
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/active [get]
func GetActiveTokens(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var active []models.ChannelToken
	err := db.DB.
		Select("channel_tokens.*").
		Joins("JOIN tokens ON tokens.id = channel_tokens.token_id").
		Where("tokens.user_id = ? AND channel_tokens.expires >= ?", userID, time.Now()).
		Find(&active).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving active tokens: " + err.Error()})
		return
	}

	result := make([]models.ChannelTokenWithUser, 0, len(active))
	for _, ct := range active {
		var channel models.User
		if err := db.DB.First(&channel, "id = ?", ct.ChannelUserID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving channel: " + err.Error()})
			return
		}
		result = append(result, models.ChannelTokenWithUser{ChannelToken: ct, User: channel.Safe()})
	}

	c.JSON(http.StatusOK, result)
}

type hasActiveTokenInput struct {
	ChannelID string `json:"channelId" binding:"required"`
}

// @Summary Check for an active token
// @Description Report whether the authenticated user currently holds an active token for the channel. A channel viewing itself always gets true.
// @Tags tokens
// @Accept json
// @Produce json
// @Param body body hasActiveTokenInput true "Channel to check"
// @Security BearerAuth
// @Success 200 {boolean} boolean
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/has [post]
func HasActiveToken(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input hasActiveTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// A channel viewing its own page needs no token.
	if userID.(string) == input.ChannelID {
		c.JSON(http.StatusOK, true)
		return
	}

	active, err := ledger.New(db.DB).HasActiveToken(userID.(string), input.ChannelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking active token: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, active)
}

// @Summary Channel balance
// @Description Return the channel's currency balance and the count of tokens not yet converted.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "balance, unconvertedTokens"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/balance [get]
func GetMyBalance(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	l := ledger.New(db.DB)

	balance, err := l.Balance(userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing the balance: " + err.Error()})
		return
	}

	unconverted, err := l.UnconvertedCount(userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting unconverted tokens: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance, "unconvertedTokens": unconverted})
}

// @Summary Transaction history
// @Description Return the channel's ledger entries, newest first.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.TokenTransaction
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/transaction-history [get]
func GetTransactionHistory(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	transactions, err := ledger.New(db.DB).Transactions(userID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving transactions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, transactions)
}

type withdrawalInput struct {
	Amount int `json:"amount" binding:"required,gt=0"`
}

// @Summary Request a withdrawal
// @Description Pay out part of the channel's balance through the payment processor and record the debit.
// @Tags tokens
// @Accept json
// @Produce json
// @Param body body withdrawalInput true "Amount to withdraw"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Payout successful"
// @Failure 400 {object} map[string]string "error: Insufficient balance"
// @Failure 403 {object} map[string]string "error: Onboarding not completed"
// @Failure 502 {object} map[string]string "error: Payout failed"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/generate-withdrawal [post]
func GenerateWithdrawal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input withdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	err := coordinator.RequestWithdrawal(db.DB, userID.(string), input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payouts.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are withdrawing more than your current balance"})
		case errors.Is(err, payouts.ErrNotOnboarded):
			c.JSON(http.StatusForbidden, gin.H{"error": "You have not completed the onboarding process yet"})
		case errors.Is(err, payouts.ErrPayoutFailed):
			utils.LogErrorWithUser(userID, err, "Transfer call failed in GenerateWithdrawal")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payout failed, make sure you have completed the onboarding process"})
		default:
			utils.LogErrorWithUser(userID, err, "Withdrawal failed in GenerateWithdrawal")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing the withdrawal"})
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Withdrawal processed")
	c.JSON(http.StatusOK, gin.H{"message": "Payout successful"})
}

// @Summary Payout onboarding link
// @Description Return a fresh onboarding URL for the channel's payout account.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "url"
// @Failure 400 {object} map[string]string "error: Payout account not created"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /tokens/account-link [get]
func GenerateAccountLink(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.StripeAccountId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payout account not created"})
		return
	}

	url, err := payouts.CreateAccountLink(user.StripeAccountId)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Account link creation failed in GenerateAccountLink")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't generate the onboarding link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
