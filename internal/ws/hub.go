package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types pushed to dashboards.
const (
	EventProductCreated  = "product_created"
	EventScriptSaved     = "script_saved"
	EventScriptUpdated   = "script_updated"
	EventScriptPublished = "script_published"
	EventSessionRevoked  = "session_revoked"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	outboundBuffer = 256
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one socket bound to a user. Writes happen on the client's own
// goroutine, so a slow reader only loses its own events.
type Client struct {
	UserID uuid.UUID
	conn   Conn
	send   chan []byte
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{UserID: userID, conn: conn, send: make(chan []byte, clientBuffer)}
}

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type outbound struct {
	userID  uuid.UUID
	payload []byte
}

// Hub owns the client registry; only Run touches it.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	outbound   chan outbound
	done       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
	writers    sync.WaitGroup
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outbound, outboundBuffer),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.writers.Add(1)
			go h.writeLoop(c)
			h.log.Debug("ws client connected", zap.String("user_id", c.UserID.String()))

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.outbound:
			for c := range h.clients {
				if c.UserID != m.userID {
					continue
				}
				select {
				case c.send <- m.payload:
				default:
					h.log.Warn("ws client too slow, dropping", zap.String("user_id", c.UserID.String()))
					h.drop(c)
				}
			}

		case <-h.done:
			for c := range h.clients {
				h.drop(c)
			}
			h.writers.Wait()
			return
		}
	}
}

// drop removes c and closes its socket, which also unblocks a pending write.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) writeLoop(c *Client) {
	defer h.writers.Done()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.conn.Close()
			h.Unregister(c)
			// wait for Run to close send
			for range c.send {
			}
			return
		}
	}
}

// Stop ends Run and closes every socket. It waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendToUser queues an event for every socket of userID. It never blocks:
// when the queue is full the event is dropped. A nil hub drops it too.
func (h *Hub) SendToUser(userID uuid.UUID, eventType string, data interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		h.log.Error("ws event marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	select {
	case <-h.done:
	case h.outbound <- outbound{userID: userID, payload: payload}:
	default:
		h.log.Warn("ws outbound queue full, dropping event", zap.String("type", eventType))
	}
}
