package websocket

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Conn is the subset of the websocket connection the hub writes to. The
// concrete connection is not safe for concurrent writes, so all writes go
// through Client.Send.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client is one connected stream participant.
type Client struct {
	ID       string
	UserID   uuid.UUID
	StreamID uuid.UUID

	conn    Conn
	writeMu sync.Mutex
}

func NewClient(userID, streamID uuid.UUID, conn Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		StreamID: streamID,
		conn:     conn,
	}
}

func (c *Client) Send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(event)
}

// Hub tracks which clients participate in which stream so enforcement
// events can be broadcast to a whole room.
type Hub struct {
	mu      sync.RWMutex
	streams map[uuid.UUID]map[*Client]struct{}
	logger  *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		streams: make(map[uuid.UUID]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.streams[client.StreamID]
	if !ok {
		room = make(map[*Client]struct{})
		h.streams[client.StreamID] = room
	}
	room[client] = struct{}{}

	h.logger.WithFields(logrus.Fields{
		"client_id": client.ID,
		"stream_id": client.StreamID,
	}).Debug("Client registered")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.streams[client.StreamID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.streams, client.StreamID)
	}

	h.logger.WithFields(logrus.Fields{
		"client_id": client.ID,
		"stream_id": client.StreamID,
	}).Debug("Client unregistered")
}

// Participants returns the current number of clients in a stream room.
func (h *Hub) Participants(streamID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[streamID])
}

// Broadcast fans an event out to every client in the stream room. Writes run
// concurrently; a failed write is logged and does not stop delivery to the
// remaining clients.
func (h *Hub) Broadcast(ctx context.Context, streamID uuid.UUID, event Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.streams[streamID]))
	for client := range h.streams[streamID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)
	for _, client := range clients {
		client := client
		g.Go(func() error {
			if err := client.Send(event); err != nil {
				h.logger.WithError(err).WithFields(logrus.Fields{
					"client_id": client.ID,
					"stream_id": streamID,
					"event":     event.Type,
				}).Warn("Failed to deliver broadcast event")
			}
			return nil
		})
	}
	_ = g.Wait()
}
