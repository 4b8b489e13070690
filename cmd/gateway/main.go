package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantops/plantwatch/internal/connection"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/internal/server"
	"github.com/plantops/plantwatch/internal/timer"
	"github.com/plantops/plantwatch/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Analyzer Gateway...")

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

	// Create Kafka topics
	if err := queue.CreateTopic(
		cfg.Kafka.Brokers,
		cfg.Kafka.TopicReadings,
		cfg.Kafka.NumPartitions,
		1, // replication factor
	); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	if err := queue.CreateTopic(
		cfg.Kafka.Brokers,
		cfg.Kafka.TopicAlerts,
		1, // single partition for alerts
		1, // replication factor
	); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	// Create readings producer
	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings)
	defer producer.Close()
	fmt.Println("Kafka producer initialized")

	// Create connection manager
	connManager := connection.NewManager(cfg.Gateway.MaxConnections)
	fmt.Println("Connection manager initialized")

	// Create scheduler for inactivity timers
	scheduler := timer.NewScheduler(10)
	scheduler.Start()
	defer scheduler.Stop()
	fmt.Println("Scheduler started")

	// Start the gateway
	gateway := server.NewGateway(&cfg.Gateway, db, connManager, scheduler, producer)
	if err := gateway.Start(); err != nil {
		log.Fatalf("Failed to start gateway: %v", err)
	}
	defer gateway.Stop()

	// Print statistics periodically
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := connManager.Stats()
			schedStats := scheduler.Stats()
			fmt.Printf("\n--- Gateway Statistics ---\n")
			fmt.Printf("Active Connections: %d / %d\n", stats.TotalConnections, stats.MaxConnections)
			fmt.Printf("Connected Sites: %d\n", stats.UniqueSites)
			fmt.Printf("Scheduled Timers: %d\n", schedStats.ScheduledTasks)
			fmt.Printf("--------------------------\n\n")
		}
	}()

	fmt.Println("\n✓ Analyzer Gateway is running")
	fmt.Printf("✓ Listening on port %d\n", cfg.Gateway.Port)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}
