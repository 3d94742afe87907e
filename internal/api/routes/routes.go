package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/yourusername/token-mine/mining-service/internal/api/handlers"
	"github.com/yourusername/token-mine/mining-service/internal/config"
	"github.com/yourusername/token-mine/mining-service/internal/mining"
	"github.com/yourusername/token-mine/mining-service/internal/models"
	"github.com/yourusername/token-mine/mining-service/internal/repository"
	"github.com/yourusername/token-mine/mining-service/internal/service"
	"github.com/yourusername/token-mine/mining-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Setup wires the database, repositories, the mining service and all routes,
// and returns the service for background jobs.
func Setup(router *gin.Engine, cfg *config.Config) *service.MiningService {
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	rewardRepo := repository.NewRewardRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	defaults := cfg.DefaultSettings
	if err := settingsRepo.Seed(context.Background(), &defaults); err != nil {
		logger.Fatal("Failed to seed mining settings", zap.Error(err))
	}

	miningService := service.NewMiningService(
		rewardRepo,
		accountRepo,
		settingsRepo,
		mining.NewBonusEngine(nil),
	)

	miningHandler := handlers.NewMiningHandler(miningService)

	// Health check
	router.GET("/health", miningHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		m := v1.Group("/mining")
		{
			m.POST("/claim", miningHandler.Claim)
			m.POST("/activate", miningHandler.Activate)
			m.POST("/offline", miningHandler.CreditOffline)
			m.GET("/:user_id/history", miningHandler.History)
			m.GET("/:user_id/status", miningHandler.Status)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.GET("/stats", miningHandler.GetStats)
			admin.PUT("/settings", miningHandler.UpdateSettings)
		}
	}

	return miningService
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	gormCfg := &gorm.Config{TranslateError: true}

	if cfg.DatabaseURL == "" {
		logger.Info("No database URL configured, using in-memory SQLite")
		// Use pure Go SQLite (no CGO required)
		db, err = gorm.Open(sqlite.Open(":memory:"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
		}
	} else {
		logger.Info("Connecting to PostgreSQL database")
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err != nil {
			return nil, err
		}
	}

	err = db.AutoMigrate(
		&models.RewardEvent{},
		&models.MinerAccount{},
		&models.MiningSettings{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database initialized successfully")
	return db, nil
}
