// Package game holds live rooms: the registry of codes, each room's phase
// machine and the bookkeeping of the round in progress.
package game

import (
	"time"

	"github.com/abrezinsky/snapchaos/internal/models"
	"github.com/abrezinsky/snapchaos/internal/scoring"
)

// Settings tunes rooms and rounds
type Settings struct {
	CodeLength   int
	CodeAlphabet string
	CodeAttempts int

	DefaultRoundSeconds int
	MaxRoundSeconds     int
	MaxPhotoBytes       int
	MinPlayers          int

	// EmptyRoomGrace is how long a room may sit with no players before Sweep removes it.
	EmptyRoomGrace time.Duration

	Majority scoring.MajorityFunc
}

// DefaultSettings returns the settings used by a stock server
func DefaultSettings() Settings {
	return Settings{
		CodeLength:          4,
		CodeAlphabet:        "23456789ABCDEFGHJKMNPQRSTUVWXYZ",
		CodeAttempts:        64,
		DefaultRoundSeconds: 30,
		MaxRoundSeconds:     600,
		MaxPhotoBytes:       2 << 20,
		MinPlayers:          1,
		EmptyRoomGrace:      2 * time.Minute,
		Majority:            scoring.DefaultMajority,
	}
}

// Broadcaster delivers a message to every connection joined to a room.
// Implementations must not block and must not call back into the room.
type Broadcaster interface {
	BroadcastToRoom(code string, msg models.WSMessage)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToRoom(string, models.WSMessage) {}
