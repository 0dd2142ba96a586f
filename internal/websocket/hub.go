package websocket

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"whatsapp-tracking-be/internal/pkg/logger"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const recentTTL = 1 * time.Hour

// Hub fans processing results out to every connected dashboard socket. There
// is no per-user addressing: the live feed is a firehose. A go-cache buffer
// keeps the last hour of frames so a freshly opened dashboard can backfill,
// and an optional redis channel relays frames across instances.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout; nil disables it.
	rdb *redis.Client

	// instanceId marks our own frames on the redis channel so they are not
	// re-broadcast locally.
	instanceId string

	recent *gocache.Cache

	logger logger.ILogger
}

type recentEntry struct {
	At   time.Time
	Data json.RawMessage
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		recent:     gocache.New(recentTTL, 10*time.Minute),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"remote": client.Remote})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"remote": client.Remote})
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a frame to every connected client, records it in the
// recent buffer, and relays it to other instances over redis.
func (h *Hub) Broadcast(frameType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": frameType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Broadcast marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	h.remember(data)
	h.sendLocal(data)

	if h.rdb != nil {
		relay, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceId,
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "cluster_events", relay)
	}
}

// Recent returns up to limit of the newest broadcast frames, newest first.
func (h *Hub) Recent(limit int) []json.RawMessage {
	items := h.recent.Items()
	entries := make([]recentEntry, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object.(recentEntry); ok {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].At.After(entries[j].At)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	frames := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		frames[i] = e.Data
	}
	return frames
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remember(data []byte) {
	h.recent.Set(uuid.NewString(), recentEntry{At: time.Now(), Data: data}, gocache.DefaultExpiration)
}

func (h *Hub) sendLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop it rather than block the pipeline.
			h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"remote": client.Remote})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}

		// Our own frames already went to local clients.
		if payload.Origin == h.instanceId {
			continue
		}

		h.sendLocal(payload.Message)
	}
}
