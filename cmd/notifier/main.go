package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plantops/plantwatch/internal/calibration"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/notification"
	"github.com/plantops/plantwatch/internal/protocol"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/pkg/config"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Notification Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Create email notifier
	notifier := notification.NewEmailNotifier(&cfg.SMTP, db)
	if err := notifier.TestConnection(); err != nil {
		fmt.Printf("Note: SMTP not reachable, emails will be logged only: %v\n", err)
	}

	// Create consumer for alert notifications
	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, "notification-group")
	defer consumer.Close()
	fmt.Println("Kafka consumer initialized")

	ctx := context.Background()

	// Start consuming alerts
	go func() {
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				log.Printf("Failed to consume message: %v\n", err)
				continue
			}

			alert, err := protocol.DecodeAlertNotification(msg.Value)
			if err != nil {
				log.Printf("Failed to decode alert: %v\n", err)
				consumer.Commit(ctx, msg)
				continue
			}

			if err := notifier.SendAlertNotification(alert); err != nil {
				log.Printf("Failed to send alert notification: %v\n", err)
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v\n", err)
			}
		}
	}()

	// Schedule the daily calibration reminder sweep
	c := cron.New()
	_, err = c.AddFunc(cfg.Reminder.CronSpec, func() {
		fmt.Println("\n--- Running Calibration Reminder Sweep ---")
		if err := sendCalibrationReminders(db, notifier, cfg.Reminder.DueSoonDays); err != nil {
			log.Printf("Calibration reminder sweep failed: %v\n", err)
		}
		fmt.Println("--- Calibration Reminder Sweep Complete ---")
	})
	if err != nil {
		log.Fatalf("Failed to schedule reminder sweep: %v", err)
	}
	c.Start()
	defer c.Stop()
	fmt.Printf("Calibration reminder sweep scheduled (%s)\n", cfg.Reminder.CronSpec)

	fmt.Println("\n✓ Notification Service is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}

func sendCalibrationReminders(db *database.DB, notifier *notification.EmailNotifier, dueSoonDays int) error {
	items, err := calibration.SweepDue(db, time.Now(), dueSoonDays)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No calibrations due")
		return nil
	}

	reminders := make([]notification.CalibrationReminder, 0, len(items))
	for _, item := range items {
		reminders = append(reminders, notification.CalibrationReminder{
			SiteName:   item.SiteName,
			Instrument: item.Schedule.Instrument,
			Parameter:  item.Schedule.ParameterKey,
			NextDueAt:  item.Schedule.NextDueAt,
			Status:     string(item.Due.Status),
			DaysUntil:  item.Due.DaysUntil,
		})
	}

	fmt.Printf("Sending reminders for %d calibration(s)\n", len(reminders))
	return notifier.SendCalibrationReminders(reminders)
}
