// Package realtime fans session events out to Server-Sent Events listeners.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const outboundBuffer = 16

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
	heartbeat     time.Duration
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
		heartbeat:     15 * time.Second,
	}
}

func (h *Hub) NewClient() *Client {
	id := uuid.New()
	return &Client{
		ID:       id,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, outboundBuffer),
		done:     make(chan struct{}),
		log:      h.log.With("client_id", id.String()),
	}
}

func (h *Hub) AddChannel(c *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Channels[channel] = true
	subs, ok := h.subscriptions[channel]
	if !ok {
		subs = make(map[*Client]bool)
		h.subscriptions[channel] = subs
	}
	subs[c] = true
	h.log.Debug("SSE client subscribed", "client_id", c.ID, "channel", channel)
}

func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range c.Channels {
		if subs, ok := h.subscriptions[ch]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.subscriptions, ch)
			}
		}
	}
	c.Channels = make(map[string]bool)
}

// Broadcast delivers msg to every client on its channel without blocking. A client
// whose buffer is full misses the message.
func (h *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("Dropping SSE message; outbound buffer full", "client_id", c.ID)
		}
	}
}

// Subscribers counts clients on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

// ServeHTTP streams c's messages until the request ends or the client is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-c.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				c.log.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes c and closes its outbound channel. Safe to call once.
func (h *Hub) CloseClient(c *Client) {
	close(c.done)
	h.RemoveClient(c)
	close(c.Outbound)
}
