// Package events fans committed hierarchy changes out to websocket subscribers.
package events

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/hierarchy"
)

const (
	MessageTypeConnection = "connection"
	MessageTypePong       = "pong"

	writeWait      = 10 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is the JSON frame written to subscribers.
type Message struct {
	Type      string           `json:"type"`
	Message   string           `json:"message,omitempty"`
	Event     *hierarchy.Event `json:"event,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

type client struct {
	subscriber string
	conn       *websocket.Conn
	send       chan Message
}

type directMessage struct {
	client *client
	msg    Message
}

// Hub owns every subscriber connection. Only the Run goroutine sends on or
// closes a client's send channel; each connection has one writer goroutine.
type Hub struct {
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	direct     chan directMessage
	broadcast  chan Message
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Logger
}

var _ hierarchy.EventPublisher = (*Hub)(nil)

// NewHub accepts browser connections from allowedOrigins ("*" allows any).
// Requests without an Origin header are always accepted.
func NewHub(allowedOrigins []string, log *logrus.Logger) *Hub {
	h := &Hub{
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		direct:     make(chan directMessage, 16),
		broadcast:  make(chan Message, 1000),
		done:       make(chan struct{}),
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			log.WithField("origin", origin).Warn("websocket connection rejected")
			return false
		},
	}
	return h
}

// Run serves the hub until ctx is cancelled, then closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]bool)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				close(c.send)
			}
			h.count.Store(0)
			return

		case c := <-h.register:
			clients[c] = true
			h.count.Store(int64(len(clients)))
			h.log.WithFields(logrus.Fields{
				"subscriber": c.subscriber,
				"total":      len(clients),
			}).Info("websocket subscriber connected")
			h.deliver(clients, c, Message{
				Type:      MessageTypeConnection,
				Message:   "subscribed to hierarchy events",
				Timestamp: time.Now().UTC(),
			})

		case c := <-h.unregister:
			if clients[c] {
				delete(clients, c)
				close(c.send)
				h.count.Store(int64(len(clients)))
				h.log.WithFields(logrus.Fields{
					"subscriber": c.subscriber,
					"total":      len(clients),
				}).Info("websocket subscriber disconnected")
			}

		case d := <-h.direct:
			if clients[d.client] {
				h.deliver(clients, d.client, d.msg)
			}

		case msg := <-h.broadcast:
			for c := range clients {
				h.deliver(clients, c, msg)
			}
		}
	}
}

// deliver drops subscribers whose buffer is full.
func (h *Hub) deliver(clients map[*client]bool, c *client, msg Message) {
	select {
	case c.send <- msg:
	default:
		delete(clients, c)
		close(c.send)
		h.count.Store(int64(len(clients)))
		h.log.WithField("subscriber", c.subscriber).Warn("websocket subscriber too slow, disconnected")
	}
}

// Publish queues ev for every subscriber. It never blocks; when the queue is
// full the event is dropped.
func (h *Hub) Publish(ev hierarchy.Event) {
	msg := Message{Type: ev.Type, Event: &ev, Timestamp: ev.OccurredAt}
	select {
	case h.broadcast <- msg:
	default:
		h.log.WithFields(logrus.Fields{
			"type":   ev.Type,
			"org_id": ev.OrganizationID,
		}).Warn("event queue full, dropping event")
	}
}

// ConnectionCount returns the number of live subscribers.
func (h *Hub) ConnectionCount() int {
	return int(h.count.Load())
}

var errHubStopped = errors.New("event hub stopped")

// ServeWS upgrades the request and blocks until the subscriber goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, subscriber string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{subscriber: subscriber, conn: conn, send: make(chan Message, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go h.writePump(c)
	h.readPump(c)

	select {
	case h.unregister <- c:
	case <-h.done:
	}
	return nil
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.WithError(err).WithField("subscriber", c.subscriber).Warn("websocket write failed")
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		var incoming map[string]interface{}
		if err := c.conn.ReadJSON(&incoming); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).WithField("subscriber", c.subscriber).Warn("websocket read failed")
			}
			return
		}

		if msgType, _ := incoming["type"].(string); msgType == "ping" {
			pong := directMessage{client: c, msg: Message{
				Type:      MessageTypePong,
				Message:   "pong",
				Timestamp: time.Now().UTC(),
			}}
			select {
			case h.direct <- pong:
			case <-h.done:
				return
			}
		}
	}
}
