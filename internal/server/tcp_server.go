package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/plantops/plantwatch/internal/connection"
	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/protocol"
	"github.com/plantops/plantwatch/internal/queue"
	"github.com/plantops/plantwatch/internal/timer"
	"github.com/plantops/plantwatch/pkg/config"
)

// Gateway is the TCP ingest server for online analyzers
type Gateway struct {
	config      *config.GatewayConfig
	db          *database.DB
	connManager *connection.Manager
	scheduler   *timer.Scheduler
	producer    *queue.Producer
	listener    net.Listener
	wg          sync.WaitGroup
	stopCh      chan struct{}
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewGateway creates a new analyzer gateway
func NewGateway(cfg *config.GatewayConfig, db *database.DB, connManager *connection.Manager, scheduler *timer.Scheduler, producer *queue.Producer) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		config:      cfg,
		db:          db,
		connManager: connManager,
		scheduler:   scheduler,
		producer:    producer,
		stopCh:      make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the gateway listener
func (g *Gateway) Start() error {
	addr := fmt.Sprintf(":%d", g.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	g.listener = listener
	fmt.Printf("Analyzer gateway listening on %s\n", addr)

	g.wg.Add(1)
	go g.acceptConnections()

	return nil
}

// Stop stops the gateway gracefully
func (g *Gateway) Stop() {
	close(g.stopCh)
	g.cancel()

	if g.listener != nil {
		g.listener.Close()
	}

	g.wg.Wait()
	fmt.Println("Analyzer gateway stopped")
}

func (g *Gateway) acceptConnections() {
	defer g.wg.Done()

	for {
		conn, err := g.listener.Accept()
		if err != nil {
			select {
			case <-g.stopCh:
				return
			default:
				fmt.Printf("Failed to accept connection: %v\n", err)
				continue
			}
		}

		// Check max connections
		if g.connManager.Count() >= g.config.MaxConnections {
			fmt.Println("Maximum connections reached, rejecting connection")
			conn.Close()
			continue
		}

		// Handle connection in a new goroutine
		g.wg.Add(1)
		go g.handleConnection(conn)
	}
}

func (g *Gateway) handleConnection(conn net.Conn) {
	defer g.wg.Done()
	defer conn.Close()

	// Generate connection ID
	connectionID := uuid.New().String()
	fmt.Printf("New connection: %s from %s\n", connectionID, conn.RemoteAddr())

	// Set identify timeout
	conn.SetReadDeadline(time.Now().Add(g.config.IdentifyTimeout))

	// Read identification message
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		fmt.Printf("Failed to read identify message: %v\n", err)
		return
	}

	// Parse identification message
	msg, err := protocol.ParseMessage([]byte(line))
	if err != nil {
		fmt.Printf("Failed to parse identify message: %v\n", err)
		g.sendError(conn)
		return
	}

	identifyMsg, ok := msg.(*protocol.IdentifyMessage)
	if !ok {
		fmt.Printf("Expected identify message, got %T\n", msg)
		g.sendError(conn)
		return
	}

	// The analyzer must identify with a known site
	site, err := g.db.GetSiteBySlug(identifyMsg.SiteSlug)
	if err != nil {
		fmt.Printf("Failed to look up site %q: %v\n", identifyMsg.SiteSlug, err)
		g.sendError(conn)
		return
	}
	if site == nil {
		fmt.Printf("Unknown site %q from connection %s\n", identifyMsg.SiteSlug, connectionID)
		g.sendError(conn)
		return
	}

	// Register client
	if err := g.connManager.Register(connectionID, site.ID, site.Slug, identifyMsg.Instrument, conn); err != nil {
		fmt.Printf("Failed to register client: %v\n", err)
		g.sendError(conn)
		return
	}
	defer g.connManager.Unregister(connectionID)
	defer g.scheduler.Cancel(inactivityTimerID(connectionID))

	fmt.Printf("Analyzer identified: %s (site=%s, instrument=%s)\n", connectionID, site.Slug, identifyMsg.Instrument)

	// Send acknowledgment
	ack := protocol.NewAckMessage(protocol.AckStatusIdentified)
	if err := g.sendMessage(conn, ack); err != nil {
		fmt.Printf("Failed to send ack: %v\n", err)
		return
	}

	// Schedule inactivity timer
	g.scheduleInactivityTimer(connectionID)

	// Clear read deadline for normal operation
	conn.SetReadDeadline(time.Time{})

	// Handle messages
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}

		// Read message with a reasonable timeout
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		line, err := reader.ReadString('\n')
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Timeout, continue reading
				continue
			}
			// Connection closed or error
			fmt.Printf("Connection %s closed: %v\n", connectionID, err)
			return
		}

		// Parse message
		msg, err := protocol.ParseMessage([]byte(line))
		if err != nil {
			fmt.Printf("Failed to parse message: %v\n", err)
			continue
		}

		// Handle message
		if err := g.handleMessage(connectionID, site, msg, conn); err != nil {
			fmt.Printf("Failed to handle message: %v\n", err)
		}

		// Update activity timestamp
		g.connManager.UpdateActivity(connectionID)

		// Reschedule inactivity timer
		g.scheduleInactivityTimer(connectionID)
	}
}

func (g *Gateway) handleMessage(connectionID string, site *database.Site, msg interface{}, conn net.Conn) error {
	switch m := msg.(type) {
	case *protocol.ReadingsMessage:
		return g.handleReadings(connectionID, site, m)

	case *protocol.KeepaliveMessage:
		return g.handleKeepalive(conn)

	default:
		return fmt.Errorf("unknown message type: %T", msg)
	}
}

func (g *Gateway) handleReadings(connectionID string, site *database.Site, msg *protocol.ReadingsMessage) error {
	recordedAt, err := time.Parse(time.RFC3339, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid reading timestamp: %w", err)
	}

	receivedAt := time.Now()

	// Fan the batch out as one message per parameter value. Partitioning
	// by site slug keeps each site's readings ordered.
	for _, v := range msg.Values {
		readingMsg := &protocol.ReadingMessage{
			SiteSlug:     site.Slug,
			SiteID:       site.ID,
			ParameterKey: v.ParameterKey,
			Value:        v.Value,
			RecordedAt:   recordedAt,
			ReceivedAt:   receivedAt,
			Source:       database.SourceAnalyzer,
		}

		data, err := protocol.EncodeReadingMessage(readingMsg)
		if err != nil {
			return fmt.Errorf("failed to encode reading: %w", err)
		}

		if err := g.producer.Publish(g.ctx, site.Slug, data); err != nil {
			return fmt.Errorf("failed to publish reading: %w", err)
		}
	}

	fmt.Printf("Received %d readings from %s (site=%s)\n", len(msg.Values), connectionID, site.Slug)
	return nil
}

func (g *Gateway) handleKeepalive(conn net.Conn) error {
	ack := protocol.NewAckMessage(protocol.AckStatusAlive)
	return g.sendMessage(conn, ack)
}

func (g *Gateway) sendMessage(conn net.Conn, msg interface{}) error {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		return err
	}

	_, err = conn.Write(append(data, '\n'))
	return err
}

func (g *Gateway) sendError(conn net.Conn) {
	ack := protocol.NewAckMessage(protocol.AckStatusError)
	g.sendMessage(conn, ack)
}

func (g *Gateway) scheduleInactivityTimer(connectionID string) {
	expiryAt := time.Now().Add(g.config.InactivityTimeout)

	callback := func() {
		fmt.Printf("Inactivity timeout for connection %s\n", connectionID)

		// Get client info
		client, exists := g.connManager.Get(connectionID)
		if !exists {
			return
		}

		// Close connection; unregistration happens in the handler's
		// deferred cleanup
		client.Conn.Close()
	}

	g.scheduler.Schedule(inactivityTimerID(connectionID), expiryAt, callback)
}

func inactivityTimerID(connectionID string) string {
	return fmt.Sprintf("inactivity-%s", connectionID)
}
