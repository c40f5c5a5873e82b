package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gomokuhub/gomoku-backend/internal/monitor"
	"github.com/gomokuhub/gomoku-backend/internal/protocol"
	"github.com/gomokuhub/gomoku-backend/internal/room"
)

// Server binds physical connections to the room manager: it owns the
// upgrade path, the per-connection read loops, and the liveness sweep.
type Server struct {
	logger       *slog.Logger
	manager      *room.Manager
	metrics      *monitor.Metrics
	pingInterval time.Duration
	upgrader     websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func New(logger *slog.Logger, manager *room.Manager, metrics *monitor.Metrics, pingInterval time.Duration) *Server {
	return &Server{
		logger:       logger.With("component", "ws-server"),
		manager:      manager,
		metrics:      metrics,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start - starts the WebSocket server and blocks until ctx is canceled or
// the listener fails.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgrade(w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived; the sweep handles liveness
		IdleTimeout: 0,
	}

	// sweepCtx also ends when the listener fails, so Start never blocks on a
	// sweep that has no server left to sweep.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	sweepDone := make(chan struct{})
	go that.livenessSweep(sweepCtx, sweepDone)

	go func() {
		<-sweepCtx.Done()
		that.shutdownClients()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	stopSweep()
	<-sweepDone

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return fmt.Errorf("failed to start server: %w", err)
}

// upgrade promotes the HTTP request and runs the connection's read loop.
func (that *Server) upgrade(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgrade")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)

	that.mu.Lock()
	that.clients[c] = struct{}{}
	that.mu.Unlock()
	that.metrics.ClientConnected()

	log.Info("connection established", "remote", conn.RemoteAddr().String())

	if err = c.Send(protocol.Welcome{
		Type:      protocol.TypeWelcome,
		Message:   "connected to game server",
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Error("failed to send welcome", "error", err)
	}

	that.readLoop(c)
	that.dropClient(c)
}

func (that *Server) readLoop(c *client) {
	log := that.logger.With("method", "readLoop")

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection read failed", "error", err)
			}
			return
		}

		that.dispatch(c, raw)
	}
}

// dropClient forwards the close to the room manager and forgets the
// connection context.
func (that *Server) dropClient(c *client) {
	that.mu.Lock()
	_, tracked := that.clients[c]
	delete(that.clients, c)
	that.mu.Unlock()

	if !tracked {
		return
	}

	_ = c.Close()
	that.metrics.ClientDisconnected()

	if playerID, _ := c.roomContext(); playerID != "" {
		that.manager.HandleDisconnect(playerID)
	}
}

// livenessSweep pings every open connection each interval and terminates
// any that failed to pong since the previous one, independent of game
// logic.
func (that *Server) livenessSweep(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(that.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range that.snapshotClients() {
				if !c.alive.Swap(false) {
					playerID, _ := c.roomContext()
					that.logger.Info("terminating unresponsive connection", "playerID", playerID)
					that.dropClient(c)
					continue
				}
				if err := c.ping(); err != nil {
					that.dropClient(c)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// shutdownClients notifies and closes every open connection.
func (that *Server) shutdownClients() {
	for _, c := range that.snapshotClients() {
		_ = c.Send(protocol.System{
			Type:      protocol.TypeSystem,
			Code:      "SERVER_SHUTDOWN",
			Message:   "server is going down",
			Timestamp: time.Now().UnixMilli(),
		})
		that.dropClient(c)
	}
}

func (that *Server) snapshotClients() []*client {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients := make([]*client, 0, len(that.clients))
	for c := range that.clients {
		clients = append(clients, c)
	}

	return clients
}
