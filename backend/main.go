package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/backend/cache"
	"learnhub/backend/config"
	"learnhub/backend/database"
	"learnhub/backend/mailer"
	"learnhub/backend/routes"
	"learnhub/backend/upload"
	"learnhub/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("database init failed", "error", err)
	}
	defer database.Close(db)

	deps := routes.Deps{}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, leaderboard cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer client.Close()
			deps.Leaderboard = cache.NewLeaderboardCache(client)
		}
	}
	if cfg.MailAPIKey != "" {
		deps.Mailer = mailer.NewSender(cfg.MailAPIKey, cfg.MailFrom, cfg.FrontendURL)
	} else {
		deps.Mailer = mailer.NewLogSender(logger)
	}
	if cfg.ImageHostKey != "" {
		deps.Uploader = upload.NewImageHost(cfg.ImageHostURL, cfg.ImageHostKey)
	}

	app := routes.NewApp(cfg, logger)
	routes.SetupRoutes(app, db, cfg, logger, deps)

	go func() {
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("server stopped", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
