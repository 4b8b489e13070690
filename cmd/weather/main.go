package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/weather"
	"github.com/plantops/plantwatch/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Weather Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	client := weather.NewClient(&cfg.Weather)
	snapshotter := weather.NewSnapshotter(db, client, cfg.Weather.SitePacing)

	fmt.Printf("Polling %s every %s\n", cfg.Weather.Provider, cfg.Weather.PollInterval)
	fmt.Println("\n✓ Weather Service is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	stopCh := make(chan struct{})

	// Poll on the configured interval; the first sweep runs immediately
	go func() {
		ticker := time.NewTicker(cfg.Weather.PollInterval)
		defer ticker.Stop()

		if err := snapshotter.Run(); err != nil {
			log.Printf("Snapshot sweep failed: %v\n", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := snapshotter.Run(); err != nil {
					log.Printf("Snapshot sweep failed: %v\n", err)
				}
			case <-stopCh:
				return
			}
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	close(stopCh)
	fmt.Println("\nShutting down gracefully...")
}
