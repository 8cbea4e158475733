package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/routes"
	"ecoaware/backend/scheduler"
	"ecoaware/backend/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format:       cfg.LogFormat,
		EnableColors: cfg.LogColors,
	})

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	jobs := scheduler.New(db, logger, cfg.BlacklistCleanupInterval)
	if err := jobs.Start(); err != nil {
		logger.Fatalf("Error starting scheduler: %v", err)
	}

	app := routes.NewApp(db, cfg, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Println("Shutting down...")
		jobs.Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Listening on :%s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Server error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
