package transport

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/frame"
)

const writeTimeout = 5 * time.Second

// Hub fans published frames out to connected websocket consumers.
type Hub struct {
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	closed  bool
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

// NewHub creates a Hub with no consumers.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log.WithField("component", "hub"),
		clients: make(map[uuid.UUID]*client),
	}
}

// ServeHTTP upgrades the request and registers the connection as a consumer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{id: uuid.New(), conn: conn}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.WithFields(logrus.Fields{
		"client": c.id.String(),
		"remote": r.RemoteAddr,
	}).Info("Consumer connected")

	// Consumers never send frames; reading only detects disconnects and
	// handles control messages.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				h.remove(c)
				return
			}
		}
	}()
}

// Clients returns the number of connected consumers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes f once and writes it to every consumer. Consumers that fail
// are disconnected; their errors are joined into the returned error.
func (h *Hub) Publish(f frame.Frame) error {
	msg := frame.Marshal(f)

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return errors.New("hub is closed")
	}
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var errs []error
	for _, c := range clients {
		if err := c.write(msg); err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", c.id, err))
			h.remove(c)
		}
	}
	return errors.Join(errs...)
}

// Close disconnects every consumer and rejects further publishes.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[uuid.UUID]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.log.WithField("client", c.id.String()).Info("Consumer disconnected")
	}
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}
