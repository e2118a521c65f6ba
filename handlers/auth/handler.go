package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"os"
	"strings"

	"cinema-backend/db"
	"cinema-backend/ledger"
	"cinema-backend/models"
	"cinema-backend/payouts"
	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	UserType        string `json:"userType" binding:"required"`
	PaymentMethodId string `json:"paymentMethodId"`
}

// @Summary Register a new user
// @Description Create a subscriber or channel account. Subscribers get a Stripe customer, a platform subscription and their first token grant; channels get a Stripe connect account and an onboarding link.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerInput true "Registration information"
// @Success 200 {object} map[string]interface{} "message: Registered, onboardingUrl for channels"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 409 {object} map[string]string "error: Username or email already used"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /auth/register [post]
func Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if !utils.ValidateEmail(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	if len(input.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The password must contain at least 6 characters"})
		return
	}

	hasLower := strings.ContainsAny(input.Password, "abcdefghijklmnopqrstuvwxyz")
	hasUpper := strings.ContainsAny(input.Password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasDigit := strings.ContainsAny(input.Password, "0123456789")
	if !hasLower || !hasUpper || !hasDigit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The password must contain at least one lowercase, one uppercase and one digit"})
		return
	}

	userType := models.UserType(input.UserType)
	if userType != models.Subscriber && userType != models.Channel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userType must be SUBSCRIBER or CHANNEL"})
		return
	}

	var existing models.User
	err := db.DB.Where("email = ? OR username = ?", input.Email, input.Username).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This username or email is already used"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error when checking account existence"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error hashing the password"})
		return
	}

	user := models.User{
		Username:             input.Username,
		Email:                input.Email,
		Password:             string(passwordHash),
		UserType:             userType,
		SubscriptionsEnabled: userType == models.Subscriber,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the user: " + err.Error()})
		return
	}

	if userType == models.Subscriber {
		if err := setupSubscriber(&user, input.PaymentMethodId); err != nil {
			utils.LogErrorWithUser(user.ID, err, "Stripe subscriber setup failed in Register")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error setting up the subscription"})
			return
		}

		if err := ledger.New(db.DB).GrantTokens(user.ID, ledger.MonthlyTokenGrant); err != nil {
			utils.LogErrorWithUser(user.ID, err, "Initial token grant failed in Register")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error granting initial tokens"})
			return
		}

		utils.LogSuccessWithUser(user.ID, "Subscriber registered")
		c.JSON(http.StatusOK, gin.H{"message": "Registered"})
		return
	}

	accountID, err := payouts.CreateConnectAccount(user.Email)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Stripe connect account creation failed in Register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the payout account"})
		return
	}

	if err := db.DB.Model(&user).Update("stripe_account_id", accountID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving the payout account"})
		return
	}

	onboardingURL, err := payouts.CreateAccountLink(accountID)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Stripe account link creation failed in Register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating the onboarding link"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Channel registered")
	c.JSON(http.StatusOK, gin.H{"message": "Registered", "onboardingUrl": onboardingURL})
}

func setupSubscriber(user *models.User, paymentMethodID string) error {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	custParams := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	if paymentMethodID != "" {
		custParams.PaymentMethod = stripe.String(paymentMethodID)
	}
	cust, err := customer.New(custParams)
	if err != nil {
		return err
	}

	if err := db.DB.Model(user).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return err
	}

	subParams := &stripe.SubscriptionParams{
		Customer:         stripe.String(cust.ID),
		CollectionMethod: stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
		Items: []*stripe.SubscriptionItemsParams{
			{
				Price:    stripe.String(os.Getenv("STRIPE_SUBSCRIPTION_PRICE_ID")),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if paymentMethodID != "" {
		subParams.DefaultPaymentMethod = stripe.String(paymentMethodID)
	}

	_, err = stripeSubscription.New(subParams)
	return err
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary User login
// @Description Check credentials and issue a signed identity token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginInput true "Credentials"
// @Success 200 {object} map[string]string "token: JWT"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Wrong credentials"
// @Router /auth/login [post]
func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	result := db.DB.Where("username = ?", input.Username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + result.Error.Error()})
		}
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong credentials"})
		return
	}

	token, err := utils.GenerateJWT(user, 72)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error generating the token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type requestPasswordResetInput struct {
	Email string `json:"email" binding:"required"`
}

// @Summary Request a password reset
// @Description Issue a one-time reset code and mail it to the user. Always answers success so addresses cannot be probed.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestPasswordResetInput true "Account email"
// @Success 200 {object} map[string]string "message: Done"
// @Failure 400 {object} map[string]string "error: Invalid email"
// @Router /auth/request-password-reset [post]
func RequestPasswordReset(c *gin.Context) {
	var input requestPasswordResetInput
	if err := c.ShouldBindJSON(&input); err != nil || !utils.ValidateEmail(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email supplied"})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		// Do not reveal whether the account exists.
		c.JSON(http.StatusOK, gin.H{"message": "Done"})
		return
	}

	code, err := resetCode(30)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating the reset code"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating the reset code"})
		return
	}

	if err := db.DB.Model(&user).Update("password_reset_token", string(hash)).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Done"})
		return
	}

	utils.SendPasswordResetMail(user.Email, code)

	c.JSON(http.StatusOK, gin.H{"message": "Done"})
}

const resetCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func resetCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(resetCodeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

type resetPasswordInput struct {
	Email       string `json:"email" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// @Summary Reset a password
// @Description Consume a reset code and set a new password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body resetPasswordInput true "Email, reset code and new password"
// @Success 200 {object} map[string]string "message: Password updated"
// @Failure 400 {object} map[string]string "error: No reset requested"
// @Failure 403 {object} map[string]string "error: Incorrect code"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /auth/reset-password [post]
func ResetPassword(c *gin.Context) {
	var input resetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil || !utils.ValidateEmail(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.PasswordResetToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No password reset was requested for this account"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordResetToken), []byte(input.Token)) != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Incorrect reset code supplied"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing the new password"})
		return
	}

	err = db.DB.Model(&user).Updates(map[string]interface{}{
		"password":             string(newHash),
		"password_reset_token": "",
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// @Summary Stripe account webhook
// @Description Payment-processor callback fired when a connect account changes; marks the channel as onboarded once payouts are enabled.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "message: Success"
// @Failure 400 {object} map[string]string "error: Signature verification failed"
// @Router /auth/account-updated [post]
func AccountUpdated(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cannot read the request body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe signature verification failed"})
		return
	}

	if event.Type != "account.updated" {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	var acct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing the account payload"})
		return
	}

	if !acct.PayoutsEnabled {
		c.JSON(http.StatusOK, gin.H{"message": "Payouts not enabled"})
		return
	}

	result := db.DB.Model(&models.User{}).
		Where("stripe_account_id = ?", acct.ID).
		Update("channel_onboarded", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the channel"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Success"})
}

// @Summary Channel onboarding state
// @Description Report whether the authenticated channel has completed payout onboarding.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {boolean} boolean
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /auth/onboarded [get]
func IsOnboarded(c *gin.Context) {
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

	c.JSON(http.StatusOK, user.ChannelOnboarded)
}
