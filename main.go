package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"edabench/internal/config"
	"edabench/internal/container"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load(os.Getenv("EDABENCH_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	// Optional dataset preloaded into a first session
	if path := os.Getenv("EDABENCH_DATA_FILE"); path != "" {
		sess, _, err := appContainer.OpenFile(path)
		if err != nil {
			appContainer.Logger.Fatal("failed to load data file", zap.String("file", path), zap.Error(err))
		}
		appContainer.Logger.Info("data file loaded", zap.String("file", path), zap.String("session", sess.ID().String()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appContainer.Server().Start(ctx, ":"+appConfig.Server.Port); err != nil {
		appContainer.Logger.Fatal("server stopped", zap.Error(err))
	}
}
