package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/httpapi"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/internal/storage"
	"github.com/plantops/plantwatch/internal/weather"
	"github.com/plantops/plantwatch/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting API Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Run migrations
	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create readings producer for manual entries
	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings)
	defer producer.Close()
	fmt.Println("Kafka producer initialized")

	// Weather client for live conditions
	weatherClient := weather.NewClient(&cfg.Weather)

	// Map storage is optional; without a bucket the map routes return 503
	var maps *storage.S3Client
	if cfg.Storage.Bucket != "" {
		maps, err = storage.NewS3Client(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.URLExpiry)
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
		fmt.Println("Map storage initialized")
	} else {
		fmt.Println("Map storage not configured, map routes disabled")
	}

	app := fiber.New()
	httpapi.Register(app, httpapi.New(db, producer, weatherClient, maps))

	go func() {
		if err := app.Listen(cfg.API.Addr); err != nil {
			log.Fatalf("API server exited: %v", err)
		}
	}()

	fmt.Println("\n✓ API Service is running")
	fmt.Printf("✓ Listening on %s\n", cfg.API.Addr)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down cleanly: %v\n", err)
	}
}
