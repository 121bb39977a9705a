package websocket

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/abrezinsky/snapchaos/internal/game"
	"github.com/abrezinsky/snapchaos/internal/logger"
	"github.com/abrezinsky/snapchaos/internal/models"
)

const (
	sendBufferSize = 256
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
	// frameOverhead covers the envelope around a photo payload
	frameOverhead = 64 << 10
	// photoSlack lets frames up to this multiple of the photo limit reach
	// the room, which rejects oversized photos with an ack. Larger frames
	// close the connection.
	photoSlack = 2
)

// Rooms is the part of the registry the hub needs
type Rooms interface {
	Create() (*game.Room, error)
	Join(code, playerID, name string, wantHost bool) (*game.Room, models.RoomSnapshot, error)
	Find(code string) (*game.Room, error)
	Countdown(now time.Time)
}

// Options tunes the hub
type Options struct {
	// AllowedOrigins limits which browser origins may connect. Empty allows all.
	AllowedOrigins  []string
	MaxPhotoBytes   int
	EventsPerSecond float64
	EventBurst      int
}

// Hub maintains the set of active clients and which room each one is in
type Hub struct {
	log      logger.Logger
	rooms    Rooms
	opts     Options
	upgrader websocket.Upgrader

	mutex   sync.RWMutex
	clients map[*Client]bool
	members map[string]map[*Client]bool // room code -> clients
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, rooms Rooms, opts Options) *Hub {
	if opts.EventsPerSecond <= 0 {
		opts.EventsPerSecond = 20
	}
	if opts.EventBurst <= 0 {
		opts.EventBurst = 40
	}
	if opts.MaxPhotoBytes <= 0 {
		opts.MaxPhotoBytes = game.DefaultSettings().MaxPhotoBytes
	}

	h := &Hub{
		log:     log.With("component", "hub"),
		rooms:   rooms,
		opts:    opts,
		clients: make(map[*Client]bool),
		members: make(map[string]map[*Client]bool),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin accepts requests without an Origin header (native clients)
// and browser origins on the allow-list.
func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		a, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if strings.EqualFold(a.Scheme, u.Scheme) && strings.EqualFold(a.Host, u.Host) {
			return true
		}
	}
	return false
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade error", "error", err, "origin", r.Header.Get("Origin"))
		return
	}
	conn.SetReadLimit(photoSlack*int64(h.opts.MaxPhotoBytes) + frameOverhead)

	client := &Client{
		hub:     h,
		conn:    conn,
		id:      uuid.NewString(),
		send:    make(chan models.WSMessage, sendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.opts.EventsPerSecond), h.opts.EventBurst),
	}
	h.register(client)

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *Client) {
	h.mutex.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.Debug("Client connected", "client", c.id, "total_clients", total)
	h.sendTo(c, models.WSMessage{Type: models.TypeWelcome, Payload: models.Welcome{ID: c.id}})
}

// unregister drops c and removes its player from the room it was in
func (h *Hub) unregister(c *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, c)
	code := h.detachLocked(c)
	close(c.send)
	total := len(h.clients)
	h.mutex.Unlock()

	h.log.Debug("Client disconnected", "client", c.id, "total_clients", total)
	h.leaveRoom(c, code)
}

// attach moves c into code's broadcast group and returns the room it left
func (h *Hub) attach(c *Client, code string) string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c.room == code {
		return ""
	}
	prev := h.detachLocked(c)
	group, ok := h.members[code]
	if !ok {
		group = make(map[*Client]bool)
		h.members[code] = group
	}
	group[c] = true
	c.room = code
	return prev
}

// detach removes c from code's broadcast group if it is in it
func (h *Hub) detach(c *Client, code string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c.room == code {
		h.detachLocked(c)
	}
}

func (h *Hub) detachLocked(c *Client) string {
	code := c.room
	if code == "" {
		return ""
	}
	if group, ok := h.members[code]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.members, code)
		}
	}
	c.room = ""
	return code
}

func (h *Hub) leaveRoom(c *Client, code string) {
	if code == "" {
		return
	}
	room, err := h.rooms.Find(code)
	if err != nil {
		return
	}
	room.Leave(c.id)
}

// BroadcastToRoom implements game.Broadcaster. It never blocks: a client
// whose buffer is full is disconnected.
func (h *Hub) BroadcastToRoom(code string, msg models.WSMessage) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for c := range h.members[code] {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("Client send buffer full, disconnecting", "client", c.id, "room", code)
			c.kick()
		}
	}
}

// sendTo queues msg for a single client
func (h *Hub) sendTo(c *Client, msg models.WSMessage) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.log.Warn("Client send buffer full, disconnecting", "client", c.id)
		c.kick()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// StartCountdown ticks round countdowns until ctx is cancelled
func (h *Hub) StartCountdown(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Round countdown stopped")
			return
		case now := <-ticker.C:
			h.rooms.Countdown(now)
		}
	}
}
