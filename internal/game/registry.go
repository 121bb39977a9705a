package game

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/abrezinsky/snapchaos/internal/errors"
	"github.com/abrezinsky/snapchaos/internal/logger"
	"github.com/abrezinsky/snapchaos/internal/models"
)

// joinAttempts bounds retries when the reaper closes a room mid-join
const joinAttempts = 3

// Registry owns every live room. Lock order is registry before room.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	log        logger.Logger
	base       logger.Logger
	settings   Settings
	prompts    *Prompts
	out        Broadcaster
	randReader io.Reader // for testing: defaults to crypto/rand.Reader
	now        func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(log logger.Logger, settings Settings) *Registry {
	if settings.Majority == nil {
		settings.Majority = DefaultSettings().Majority
	}
	return &Registry{
		rooms:      make(map[string]*Room),
		log:        log.With("component", "registry"),
		base:       log,
		settings:   settings,
		prompts:    NewPrompts(nil),
		out:        nopBroadcaster{},
		randReader: rand.Reader,
		now:        time.Now,
	}
}

// SetBroadcaster sets where room broadcasts go. Rooms created earlier keep
// the previous broadcaster, so call this before serving.
func (g *Registry) SetBroadcaster(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.out = b
}

// SetRandReader sets a custom random reader (for testing)
func (g *Registry) SetRandReader(reader io.Reader) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.randReader = reader
}

// SetClock replaces the time source used by new rooms (for testing)
func (g *Registry) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// SetPrompts replaces the prompt source used by new rooms
func (g *Registry) SetPrompts(p *Prompts) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = p
}

// Create makes an empty room under a fresh code, retrying on collision
func (g *Registry) Create() (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < g.settings.CodeAttempts; attempt++ {
		code, err := generateCode(g.randReader, g.settings.CodeAlphabet, g.settings.CodeLength)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "generating room code")
		}
		if _, taken := g.rooms[code]; taken {
			g.log.Debug("Room code collision", "code", code, "attempt", attempt+1)
			continue
		}
		return g.addLocked(code), nil
	}
	return nil, errors.Internalf("no free room code after %d attempts", g.settings.CodeAttempts)
}

// Ensure returns the room for code, creating it if needed
func (g *Registry) Ensure(code string) (*Room, error) {
	code = models.NormalizeCode(code)
	if err := models.ValidateCode(code); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[code]; ok {
		return room, nil
	}
	return g.addLocked(code), nil
}

// Find returns the room for code or a RoomNotFound error
func (g *Registry) Find(code string) (*Room, error) {
	code = models.NormalizeCode(code)

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]
	if !ok {
		return nil, errors.RoomNotFound()
	}
	return room, nil
}

// Join ensures the room for code exists and adds playerID to it
func (g *Registry) Join(code, playerID, name string, wantHost bool) (*Room, models.RoomSnapshot, error) {
	for attempt := 0; attempt < joinAttempts; attempt++ {
		room, err := g.Ensure(code)
		if err != nil {
			return nil, models.RoomSnapshot{}, err
		}
		snap, err := room.Join(playerID, name, wantHost)
		if stderrors.Is(err, errRoomClosed) {
			continue
		}
		if err != nil {
			return nil, models.RoomSnapshot{}, err
		}
		return room, snap, nil
	}
	return nil, models.RoomSnapshot{}, errors.Internalf("room %s closed during join", code)
}

// Sweep removes rooms that have been empty for at least the grace period
// and returns their codes.
func (g *Registry) Sweep(now time.Time) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var swept []string
	for code, room := range g.rooms {
		if room.closeIfIdle(now, g.settings.EmptyRoomGrace) {
			delete(g.rooms, code)
			swept = append(swept, code)
		}
	}
	sort.Strings(swept)
	return swept
}

// RunReaper sweeps empty rooms every interval until ctx is cancelled
func (g *Registry) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("Room reaper stopped")
			return
		case <-ticker.C:
			g.mu.Lock()
			now := g.now()
			g.mu.Unlock()
			if swept := g.Sweep(now); len(swept) > 0 {
				g.log.Info("Reaped empty rooms", "codes", swept, "remaining", g.Len())
			}
		}
	}
}

// Countdown ticks every room with a round in progress
func (g *Registry) Countdown(now time.Time) {
	for _, room := range g.list() {
		room.Countdown(now)
	}
}

// Len returns the number of live rooms
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Players returns the number of players across all rooms
func (g *Registry) Players() int {
	total := 0
	for _, room := range g.list() {
		total += room.PlayerCount()
	}
	return total
}

func (g *Registry) list() []*Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (g *Registry) addLocked(code string) *Room {
	room := newRoom(code, g.settings, g.prompts, g.out, g.base, g.now)
	g.rooms[code] = room
	g.log.Info("Room created", "code", code, "rooms", len(g.rooms))
	return room
}
