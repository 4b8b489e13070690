package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/protocol"
)

// BatchWriter consumes reading messages from Kafka and batch-writes them to
// the database. Gateway readings arrive here; manual entries are written by
// the API directly and skipped via their source tag.
type BatchWriter struct {
	consumer      *Consumer
	db            *database.DB
	batchSize     int
	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(consumer *Consumer, db *database.DB, batchSize int, flushInterval time.Duration) *BatchWriter {
	return &BatchWriter{
		consumer:      consumer,
		db:            db,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopCh:        make(chan struct{}),
	}
}

// Start begins consuming and writing to database
func (bw *BatchWriter) Start(ctx context.Context) error {
	bw.wg.Add(1)
	go bw.run(ctx)
	return nil
}

// Stop stops the batch writer gracefully
func (bw *BatchWriter) Stop() {
	close(bw.stopCh)
	bw.wg.Wait()
}

func (bw *BatchWriter) run(ctx context.Context) {
	defer bw.wg.Done()

	var batch []kafka.Message
	ticker := time.NewTicker(bw.flushInterval)
	defer ticker.Stop()

	msgChan := make(chan kafka.Message, 10)
	go func() {
		for {
			msg, err := bw.consumer.Consume(ctx)
			if err != nil {
				fmt.Printf("Consumer error: %v\n", err)
				continue
			}
			msgChan <- msg
		}
	}()

	for {
		select {
		case <-bw.stopCh:
			// Flush remaining batch before stopping
			if len(batch) > 0 {
				bw.flush(ctx, batch)
			}
			return

		case <-ticker.C:
			if len(batch) > 0 {
				bw.flush(ctx, batch)
				batch = nil
			}

		case msg := <-msgChan:
			batch = append(batch, msg)

			if len(batch) >= bw.batchSize {
				bw.flush(ctx, batch)
				batch = nil
			}
		}
	}
}

func (bw *BatchWriter) flush(ctx context.Context, batch []kafka.Message) {
	if len(batch) == 0 {
		return
	}

	successCount := 0
	for _, msg := range batch {
		if err := bw.processMessage(msg); err != nil {
			fmt.Printf("Failed to process message: %v\n", err)
			continue
		}
		successCount++

		// Commit offset after successful processing
		if err := bw.consumer.Commit(ctx, msg); err != nil {
			fmt.Printf("Failed to commit offset: %v\n", err)
		}
	}

	fmt.Printf("Flushed batch of %d readings to database\n", successCount)
}

func (bw *BatchWriter) processMessage(msg kafka.Message) error {
	readingMsg, err := protocol.DecodeReadingMessage(msg.Value)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	// Manual entries are persisted by the API before publication; writing
	// them again would duplicate the row.
	if readingMsg.Source == database.SourceManual {
		return nil
	}

	siteID := readingMsg.SiteID
	if siteID == 0 {
		site, err := bw.db.GetSiteBySlug(readingMsg.SiteSlug)
		if err != nil {
			return fmt.Errorf("failed to get site: %w", err)
		}
		if site == nil {
			return fmt.Errorf("unknown site slug %q", readingMsg.SiteSlug)
		}
		siteID = site.ID
	}

	reading := &database.Reading{
		SiteID:       siteID,
		ParameterKey: readingMsg.ParameterKey,
		Value:        readingMsg.Value,
		RecordedAt:   readingMsg.RecordedAt,
		Source:       readingMsg.Source,
		ReceivedAt:   readingMsg.ReceivedAt,
	}

	if err := bw.db.InsertReading(reading); err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}
