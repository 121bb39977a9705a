package handlers

import (
	"net/http"

	"github.com/abrezinsky/snapchaos/internal/game"
)

// RoomStore is the registry view the HTTP surface needs
type RoomStore interface {
	Find(code string) (*game.Room, error)
	Len() int
	Players() int
}

// WebSocketHub upgrades player connections
type WebSocketHub interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
	ClientCount() int
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
	Error(msg string, args ...any)
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Rooms RoomStore
	Hub   WebSocketHub
	Log   HTTPLogger
	// BaseURL prefixes join links encoded in QR codes
	BaseURL string
}

// New creates a new Handlers instance with all dependencies
func New(rooms RoomStore, hub WebSocketHub, log HTTPLogger, baseURL string) *Handlers {
	return &Handlers{
		Rooms:   rooms,
		Hub:     hub,
		Log:     log,
		BaseURL: baseURL,
	}
}
