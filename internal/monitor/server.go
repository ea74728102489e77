package monitor

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/ld2420/internal/device"
	"github.com/muurk/ld2420/internal/logging"
)

const (
	// Time allowed to write a message to a subscriber
	writeWait = 10 * time.Second

	// Per-subscriber send queue depth. A subscriber that falls this far
	// behind is disconnected rather than allowed to stall the stream.
	sendQueueSize = 64
)

// Event is the JSON record broadcast for each decoded frame.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Port       string    `json:"port"`
	Cmd        string    `json:"cmd"`
	Status     uint16    `json:"status"`
	PayloadLen int       `json:"payload_length"`
	PayloadHex string    `json:"payload_hex"`
	RawHex     string    `json:"raw_hex"`
}

// Config holds the monitor server configuration
type Config struct {
	Addr string
}

// Server republishes decoded sensor frames to WebSocket subscribers.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader
	httpSrv  *http.Server
	listener net.Listener

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// New creates a new monitor server
func New(config *Config) *Server {
	s := &Server{
		config: config,
		subs:   make(map[*subscriber]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Local diagnostics tool, any origin may subscribe.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	return s
}

// Start begins listening and serving subscribers. It returns once the
// listener is bound; serving continues in the background until
// Shutdown.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", s.handleFrames)

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	s.httpSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logging.Info("Monitor server listening",
		zap.String("addr", listener.Addr().String()),
	)

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Monitor server stopped", zap.Error(err))
		}
	}()

	return nil
}

// handleFrames upgrades the connection and registers the subscriber.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan Event, sendQueueSize),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	count := len(s.subs)
	s.mu.Unlock()

	logging.Info("Subscriber connected",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("subscribers", count),
	)

	go s.writeLoop(sub)
	go s.readLoop(sub)
}

// writeLoop drains the subscriber's queue onto the wire.
func (s *Server) writeLoop(sub *subscriber) {
	defer s.drop(sub)

	for ev := range sub.send {
		if err := sub.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := sub.conn.WriteJSON(ev); err != nil {
			logging.Debug("Subscriber write failed",
				zap.String("remote_addr", sub.conn.RemoteAddr().String()),
				zap.Error(err),
			)
			return
		}
	}
}

// readLoop consumes and discards subscriber messages so that close
// frames and errors are noticed.
func (s *Server) readLoop(sub *subscriber) {
	defer s.drop(sub)

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters and closes a subscriber. Safe to call twice.
// Broadcast only sends to registered subscribers while holding the
// lock, so the queue can be closed once the entry is removed.
func (s *Server) drop(sub *subscriber) {
	s.mu.Lock()
	_, present := s.subs[sub]
	delete(s.subs, sub)
	s.mu.Unlock()

	if present {
		close(sub.send)
		_ = sub.conn.Close()
		logging.Info("Subscriber disconnected",
			zap.String("remote_addr", sub.conn.RemoteAddr().String()),
		)
	}
}

// Broadcast queues a decoded frame for every subscriber. Subscribers
// with a full queue are disconnected so decoding never blocks on a
// slow peer.
func (s *Server) Broadcast(ev device.FrameEvent) {
	event := Event{
		Timestamp:  ev.Received,
		Port:       ev.Port,
		Cmd:        fmt.Sprintf("0x%02x", ev.Frame.CmdEcho),
		Status:     ev.Frame.Status,
		PayloadLen: len(ev.Frame.Payload),
		PayloadHex: hex.EncodeToString(ev.Frame.Payload),
		RawHex:     hex.EncodeToString(ev.Raw),
	}

	s.mu.Lock()
	var stalled []*subscriber
	for sub := range s.subs {
		select {
		case sub.send <- event:
		default:
			stalled = append(stalled, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range stalled {
		logging.Warn("Dropping slow subscriber",
			zap.String("remote_addr", sub.conn.RemoteAddr().String()),
		)
		s.drop(sub)
	}
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Subscribers returns the number of connected subscribers
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Shutdown stops the listener and disconnects all subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down monitor server")

	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		s.drop(sub)
	}

	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}
