package routes

import (
	"cinema-backend/handlers/tokens"
	"cinema-backend/middleware"

	"github.com/gin-gonic/gin"
)

func TokensRoutes(r *gin.Engine) {
	tokensRoutes := r.Group("/tokens")
	tokensRoutes.Use(middleware.JWTAuth())
	{
		tokensRoutes.GET("", tokens.GetMyTokens)
		tokensRoutes.POST("/transfer", tokens.Transfer)
		tokensRoutes.GET("/active", tokens.GetActiveTokens)
		tokensRoutes.POST("/has", tokens.HasActiveToken)
		tokensRoutes.GET("/balance", tokens.GetMyBalance)
		tokensRoutes.GET("/transaction-history", tokens.GetTransactionHistory)
		tokensRoutes.POST("/generate-withdrawal", tokens.GenerateWithdrawal)
		tokensRoutes.GET("/account-link", tokens.GenerateAccountLink)
	}
}
