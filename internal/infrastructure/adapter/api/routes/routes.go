package routes

import (
	"net/http"

	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	accountHandler *handler.AccountHandler,
	rewardHandler *handler.RewardHandler,
	withdrawalHandler *handler.WithdrawalHandler,
	depositHandler *handler.DepositHandler,
	adminHandler *handler.AdminHandler,
	referralHandler *handler.ReferralHandler,
) {
	// Caller-facing routes. Identity comes from the gateway headers.
	authed := router.Group("/", middleware.Identity())
	{
		// Account routes
		authed.GET("/account/balance", accountHandler.GetBalance)
		authed.GET("/account/history", accountHandler.GetHistory)

		// Reward routes
		authed.POST("/rewards/spin", rewardHandler.Spin)
		authed.POST("/rewards/mystery-box", rewardHandler.OpenMysteryBox)
		authed.POST("/rewards/mission", rewardHandler.CompleteMission)
		authed.POST("/rewards/streak", rewardHandler.ClaimStreak)

		// Rewarded-ad routes
		authed.GET("/ads", rewardHandler.ListAds)
		authed.POST("/ads/sessions", rewardHandler.StartAdSession)
		authed.POST("/ads/sessions/:sessionId/complete", rewardHandler.CompleteAdSession)

		// Withdrawal routes
		authed.POST("/withdrawals", withdrawalHandler.Submit)
		authed.GET("/withdrawals/:withdrawalId", withdrawalHandler.Get)
	}

	// Admin routes require the gateway to mark the caller as an operator.
	admin := router.Group("/admin", middleware.Identity(), middleware.RequireAdmin())
	{
		admin.GET("/withdrawals", withdrawalHandler.ListPending)
		admin.POST("/withdrawals/:withdrawalId/reject", withdrawalHandler.Reject)
		admin.POST("/withdrawals/:withdrawalId/pay", withdrawalHandler.MarkPaid)

		admin.GET("/budget", adminHandler.GetBudget)
		admin.PUT("/budget", adminHandler.UpdateBudgetCaps)

		admin.POST("/credits", adminHandler.ManualCredit)
		admin.POST("/ad-credits", adminHandler.AdCredit)

		admin.POST("/referrals", referralHandler.Enroll)
		admin.POST("/referrals/run", referralHandler.RunBilling)
		admin.POST("/subscriptions/:subscriptionId/cancel", referralHandler.CancelSubscription)
	}

	// POST /deposits is the payment-processor webhook. The processor signs
	// requests at the gateway, so no caller identity is attached here.
	router.POST("/deposits", depositHandler.Record)

	router.GET("/metrics", metrics.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
	router.Use(metrics.HTTPMiddleware())
}
