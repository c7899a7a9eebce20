package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fastfisher/internal/config"
	"fastfisher/internal/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	app, err := appContainer.UIApp()
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appContainer.Serve(ctx, "ui", app.Handler()); err != nil {
		appContainer.Logger.Error("ui server failed", "error", err)
		os.Exit(1)
	}
}
