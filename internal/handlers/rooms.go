package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/snapchaos/internal/models"
)

const (
	defaultQRSize = 320
	minQRSize     = 128
	maxQRSize     = 1024
)

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Players     int    `json:"players"`
	Connections int    `json:"connections"`
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "SnapChaos server is running")
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, HealthResponse{
		Status:      "ok",
		Rooms:       h.Rooms.Len(),
		Players:     h.Rooms.Players(),
		Connections: h.Hub.ClientCount(),
	})
}

// roomCodeParam extracts and validates the {code} URL parameter
func roomCodeParam(r *http.Request) (string, error) {
	code := models.NormalizeCode(chi.URLParam(r, "code"))
	if err := models.ValidateCode(code); err != nil {
		return "", err
	}
	return code, nil
}

func (h *Handlers) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code, err := roomCodeParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	room, err := h.Rooms.Find(code)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, room.Snapshot())
}

// JoinURL returns the link a player follows to join code
func (h *Handlers) JoinURL(code string) string {
	return fmt.Sprintf("%s/room/%s", strings.TrimSuffix(h.BaseURL, "/"), code)
}

func (h *Handlers) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	code, err := roomCodeParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if _, err := h.Rooms.Find(code); err != nil {
		respondError(w, err)
		return
	}

	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		size, err = strconv.Atoi(s)
		if err != nil || size < minQRSize || size > maxQRSize {
			respondError(w, BadRequest(fmt.Sprintf("size must be between %d and %d", minQRSize, maxQRSize)))
			return
		}
	}

	png, err := qrcode.Encode(h.JoinURL(code), qrcode.Medium, size)
	if err != nil {
		if h.Log != nil {
			h.Log.Error("Failed to encode QR code", "code", code, "error", err)
		}
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
