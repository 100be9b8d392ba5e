package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"plummymarket_api/config"
	"plummymarket_api/internal/poizon/app"
	"plummymarket_api/pkg/dbconnect/postgres"
)

func main() {
	log.Printf("\nStarted app\n")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment as is")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	connector := postgres.NewPgConnector(&cfg.Postgres)
	server := app.NewPoizonServer(connector, cfg, os.Stdout)
	server.ServeMetrics(":2112")

	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
