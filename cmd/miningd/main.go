package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/yourusername/token-mine/mining-service/internal/api/routes"
	"github.com/yourusername/token-mine/mining-service/internal/config"
	"github.com/yourusername/token-mine/mining-service/internal/service"
	"github.com/yourusername/token-mine/mining-service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg := config.Load()

	// Initialize Gin router
	router := gin.Default()

	// Setup routes and the mining service
	miningService := routes.Setup(router, cfg)

	// Periodic sweep keeping expired activations (and the dashboard's
	// active-miner count) honest between lazy checks on the claim path.
	startActivationSweep(miningService, cfg.SweepIntervalMinutes)

	logger.Info("Starting mining service on port " + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Failed to start server: " + err.Error())
	}
}

func startActivationSweep(miningService *service.MiningService, intervalMinutes int) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Duration(intervalMinutes)*time.Minute),
		gocron.NewTask(func() {
			swept, err := miningService.ExpireStaleActivations(context.Background())
			if err != nil {
				logger.Error("Activation sweep failed", zap.Error(err))
				return
			}
			if swept > 0 {
				logger.Info("Activation sweep completed", zap.Int64("deactivated", swept))
			}
		}),
	)
	if err != nil {
		logger.Fatal("Failed to schedule activation sweep", zap.Error(err))
	}

	sched.Start()
}
