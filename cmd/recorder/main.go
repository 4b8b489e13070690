package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantops/plantwatch/internal/aggregation"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/internal/timer"
	"github.com/plantops/plantwatch/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Recorder Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Start database writer for analyzer readings
	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReadings, "recorder-group")
	defer consumer.Close()

	batchWriter := queue.NewBatchWriter(consumer, db, 100, 5*time.Second)
	if err := batchWriter.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start batch writer: %v", err)
	}
	defer batchWriter.Stop()
	fmt.Println("Database writer started")

	// Create scheduler for the nightly rollup
	scheduler := timer.NewScheduler(2)
	scheduler.Start()
	defer scheduler.Stop()
	fmt.Println("Scheduler started")

	// Schedule daily rollup
	rollup := aggregation.NewDailyRollup(db)
	scheduleDailyRollup(scheduler, rollup, cfg.Rollup.DailyTime)

	fmt.Println("\n✓ Recorder Service is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}

func scheduleDailyRollup(s *timer.Scheduler, rollup *aggregation.DailyRollup, timeOfDay string) {
	taskID := "daily-rollup"

	var scheduleNext func()
	scheduleNext = func() {
		nextRun, err := rollup.CalculateNextRunTime(timeOfDay)
		if err != nil {
			log.Fatalf("Failed to calculate rollup run time: %v", err)
		}
		fmt.Printf("Next daily rollup scheduled for: %s\n", nextRun.Format("2006-01-02 15:04:05"))

		callback := func() {
			fmt.Println("\n--- Running Daily Rollup ---")
			if err := rollup.AggregatePreviousDay(); err != nil {
				log.Printf("Daily rollup failed: %v\n", err)
			}
			fmt.Println("--- Daily Rollup Complete ---")

			// Schedule next run
			scheduleNext()
		}

		s.Schedule(taskID, nextRun, callback)
	}

	scheduleNext()
}
