package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	budgetUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/budget"
	depositUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/deposit"
	ledgerUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/ledger"
	referralUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/referral"
	rewardUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/reward"
	withdrawalUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/withdrawal"

	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/database"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/database/migration"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/logger"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/random"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/repository"
	timeProvider "github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/time"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/config"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/scheduler"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == "production")

	// Setup database configuration
	dbConfig := &database.Config{
		Driver:          "postgres",
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   3,
		RetryDelay:      5,
	}

	// Initialize time provider and random source
	tp := timeProvider.NewRealTimeProvider()
	rng := random.NewLockedSource()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	// Run migrations
	migrationMgr := migration.NewMigrationManagerWithTimeProvider(dbManager.DB(), appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Seed the default rewarded-ad catalog
	if err := migration.SeedDefaultAds(context.Background(), dbManager.DB(), tp.Now()); err != nil {
		appLogger.Error("Failed to seed default ads", map[string]any{
			"error": err.Error(),
		})
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(dbManager.DB(), tp, appLogger)
	transactionRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	rewardEventRepo := repository.NewRewardEventRepository(dbManager.DB(), appLogger)
	adRepo := repository.NewAdRepository(dbManager.DB(), appLogger)
	budgetRepo := repository.NewBudgetRepository(dbManager.DB(), tp, appLogger, cfg.Budget.DailyCapCents, cfg.Budget.WeeklyCapCents)
	withdrawalRepo := repository.NewWithdrawalRepository(dbManager.DB(), appLogger)
	subscriptionRepo := repository.NewSubscriptionRepository(dbManager.DB(), tp, appLogger)
	commissionRepo := repository.NewCommissionRepository(dbManager.DB(), appLogger)

	// Unit of work (transaction manager)
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)

	// Initialize use cases
	ledgerService := ledgerUseCase.NewService(accountRepo, transactionRepo, appLogger)
	governor := budgetUseCase.NewGovernor(budgetRepo, tp, appLogger)
	issuer := rewardUseCase.NewIssuer(
		uow,
		accountRepo,
		rewardEventRepo,
		adRepo,
		governor,
		defaultRewardTables(),
		rewardUseCase.Limits{
			SpinsPerDay:        cfg.Rewards.SpinsPerDay,
			MysteryBoxesPerDay: cfg.Rewards.MysteryBoxesPerDay,
			MissionsPerDay:     cfg.Rewards.MissionsPerDay,
		},
		rewardUseCase.StreakConfig{
			BaseCents: cfg.Rewards.StreakBaseCents,
			MaxDays:   cfg.Rewards.StreakMaxDays,
		},
		tp,
		rng,
		appLogger,
	)
	withdrawalService := withdrawalUseCase.NewService(uow, accountRepo, withdrawalRepo, cfg.Withdrawal.MinimumCents, tp, appLogger)
	referralEngine := referralUseCase.NewEngine(uow, subscriptionRepo, commissionRepo, transactionRepo, cfg.Referral.RatePercent, tp, appLogger)
	depositRecorder := depositUseCase.NewRecorder(accountRepo, transactionRepo, appLogger)

	// Initialize API handlers
	accountHandler := handler.NewAccountHandler(ledgerService, appLogger)
	rewardHandler := handler.NewRewardHandler(issuer, appLogger)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalService, appLogger)
	depositHandler := handler.NewDepositHandler(depositRecorder, appLogger)
	adminHandler := handler.NewAdminHandler(governor, ledgerService, appLogger)
	referralHandler := handler.NewReferralHandler(referralEngine, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, accountHandler, rewardHandler, withdrawalHandler, depositHandler, adminHandler, referralHandler)

	// Start the referral billing scheduler
	billingScheduler := scheduler.NewBillingScheduler(referralEngine, cfg.Referral.BillingCron, appLogger)
	if err := billingScheduler.Start(); err != nil {
		appLogger.Error("Failed to start billing scheduler", map[string]any{
			"error":    err.Error(),
			"schedule": cfg.Referral.BillingCron,
		})
		os.Exit(1)
	}

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the billing scheduler before the server so an in-flight sweep finishes
	billingScheduler.Stop()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// defaultRewardTables returns the built-in weighted outcome distributions.
// Weights are per-table relative shares; amounts are integer cents.
func defaultRewardTables() rewardUseCase.Tables {
	return rewardUseCase.Tables{
		SpinWheel: entity.RewardTable{
			{Label: "no_reward", AmountCents: 0, Weight: 40},
			{Label: "small", AmountCents: 1, Weight: 30},
			{Label: "medium", AmountCents: 5, Weight: 20},
			{Label: "large", AmountCents: 25, Weight: 9},
			{Label: "jackpot", AmountCents: 100, Weight: 1},
		},
		MysteryBox: entity.RewardTable{
			{Label: "common", AmountCents: 2, Weight: 60},
			{Label: "uncommon", AmountCents: 10, Weight: 30},
			{Label: "rare", AmountCents: 50, Weight: 9},
			{Label: "legendary", AmountCents: 200, Weight: 1},
		},
		Mission: entity.RewardTable{
			{Label: "mission_complete", AmountCents: 15, Weight: 1},
		},
	}
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// Validate database configuration
	if cfg.Database.Host == "" {
		// In production, check if environment variable exists
		if cfg.Environment == config.Production && os.Getenv("RL_DB_HOST") == "" {
			missingConfigs = append(missingConfigs, "database.host (or RL_DB_HOST environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.host")
		}
	}

	if cfg.Database.Port == "" {
		// In production, check if environment variable exists
		if cfg.Environment == config.Production && os.Getenv("RL_DB_PORT") == "" {
			missingConfigs = append(missingConfigs, "database.port (or RL_DB_PORT environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.port")
		}
	}

	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database")
	}

	// Validate budget configuration
	if cfg.Budget.DailyCapCents <= 0 {
		missingConfigs = append(missingConfigs, "budget.dailyCapCents")
	}

	if cfg.Budget.WeeklyCapCents <= 0 {
		missingConfigs = append(missingConfigs, "budget.weeklyCapCents")
	}

	// Validate withdrawal configuration
	if cfg.Withdrawal.MinimumCents <= 0 {
		missingConfigs = append(missingConfigs, "withdrawal.minimumCents")
	}

	// Validate referral configuration
	if cfg.Referral.RatePercent <= 0 || cfg.Referral.RatePercent > 100 {
		missingConfigs = append(missingConfigs, "referral.ratePercent")
	}

	if cfg.Referral.BillingCron == "" {
		missingConfigs = append(missingConfigs, "referral.billingCron")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missingConfigs, ", "))
	}

	return nil
}
