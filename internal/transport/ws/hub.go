// Package ws pushes the re-rendered map to websocket clients after every
// snapshot poll.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
	mapHandler "govdash/internal/mapview/handler"
	"govdash/internal/snapshot"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 8
)

// MapRenderer draws the map for one layer and language.
type MapRenderer interface {
	Render(ctx context.Context, req mapview.RenderRequest) *mapview.View
}

type streamKey struct {
	layer choropleth.Layer
	lang  i18n.Lang
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	key  streamKey
	send chan []byte
}

// Message is one frame on the stream.
type Message struct {
	Type string        `json:"type"`
	View *mapview.View `json:"view"`
}

// Hub tracks stream clients and broadcasts a fresh render to each after a
// poll. Clients sharing a layer and language share one render.
type Hub struct {
	renderer MapRenderer
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
	notify  chan struct{}
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithAllowedOrigins accepts cross-origin upgrades from the listed origins.
// Without it only same-origin clients may connect.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Hub) {
		if len(origins) == 0 {
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		}
	}
}

func NewHub(renderer MapRenderer, opts ...Option) *Hub {
	h := &Hub{
		renderer: renderer,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		logger:   slog.Default(),
		clients:  make(map[*client]struct{}),
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify schedules a broadcast. It never blocks, so it is safe to pass to
// the poller's Subscribe.
func (h *Hub) Notify(*snapshot.Snapshot) {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Run broadcasts on every notification until ctx is done, then closes all
// client connections.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case <-h.notify:
			h.broadcast(ctx)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ctx context.Context) {
	h.mu.RLock()
	keys := make(map[streamKey]struct{})
	for c := range h.clients {
		keys[c.key] = struct{}{}
	}
	h.mu.RUnlock()
	if len(keys) == 0 {
		return
	}

	frames := make(map[streamKey][]byte, len(keys))
	for key := range keys {
		data, err := h.frame(ctx, key)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to encode map frame", "layer", key.layer, "error", err)
			continue
		}
		frames[key] = data
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		data, ok := frames[c.key]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
			h.metrics.pushed(true)
		default:
			h.metrics.pushed(false)
		}
	}
}

func (h *Hub) frame(ctx context.Context, key streamKey) ([]byte, error) {
	view := h.renderer.Render(ctx, mapview.RenderRequest{Layer: key.layer, Lang: key.lang})
	return json.Marshal(Message{Type: "map", View: view})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.connected(1)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.metrics.connected(-1)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		h.metrics.connected(-1)
	}
	h.mu.Unlock()
}

// HandleStream upgrades the request and streams map views for ?layer= in the
// negotiated language. The first frame is sent immediately.
func (h *Hub) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	layer, err := mapHandler.Layer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := streamKey{layer: layer, lang: mapHandler.Lang(r)}

	first, err := h.frame(ctx, key)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	c := &client{hub: h, conn: conn, key: key, send: make(chan []byte, sendBuffer)}
	c.send <- first
	h.register(c)
	h.logger.InfoContext(ctx, "map stream connected",
		"request_id", requestID,
		"layer", layer,
		"user_id", requestcontext.Principal(ctx).UserID,
	)

	go c.writePump()
	c.readPump()
}

// readPump discards client frames and detects disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
