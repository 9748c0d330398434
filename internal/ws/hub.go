package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrHubBusy = errors.New("websocket hub send queue is full")

const (
	writeWait        = 10 * time.Second
	clientBufferSize = 16
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one open connection. Its writer goroutine owns Conn; the hub only
// hands it payloads through send.
type Client struct {
	UserID uuid.UUID
	Conn   Conn
	send   chan []byte
}

func NewClient(userID uuid.UUID, conn Conn) *Client {
	return &Client{UserID: userID, Conn: conn, send: make(chan []byte, clientBufferSize)}
}

// Message is delivered to every open connection of each recipient.
type Message struct {
	Recipients []uuid.UUID
	Payload    []byte
}

type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	send       chan Message
	done       chan struct{}
	logger     *logrus.Logger
	mutex      sync.RWMutex
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mutex.Unlock()
			go h.writeLoop(client)
			h.logger.WithField("user_id", client.UserID).Debug("WS client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			h.mutex.Unlock()

		case msg := <-h.send:
			h.mutex.Lock()
			for _, userID := range msg.Recipients {
				for client := range h.clients[userID] {
					select {
					case client.send <- msg.Payload:
					default:
						h.logger.WithField("user_id", userID).Debug("Dropping slow WS client")
						h.remove(client)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Join registers client. It reports false when the hub has already stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters client; it returns immediately once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues msg without blocking. A full queue drops the message.
func (h *Hub) Publish(recipients []uuid.UUID, payload []byte) error {
	select {
	case h.send <- Message{Recipients: recipients, Payload: payload}:
		return nil
	default:
		return ErrHubBusy
	}
}

func (h *Hub) ClientCount(userID uuid.UUID) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}

// writeLoop drains client.send until the hub closes it. A failed or timed-out
// write takes the client out of the hub.
func (h *Hub) writeLoop(client *Client) {
	defer client.Conn.Close()
	for payload := range client.send {
		client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.WithError(err).WithField("user_id", client.UserID).Debug("Dropping WS client after write failure")
			h.Leave(client)
			return
		}
	}
}

// remove must be called with the mutex held.
func (h *Hub) remove(client *Client) {
	conns, ok := h.clients[client.UserID]
	if !ok || !conns[client] {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			close(client.send)
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]bool)
}
