package models

import "time"

// Phase is the state of a room's game loop
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
	PhaseReveal  Phase = "reveal"
)

// Mode selects the prompt pool for a round
type Mode string

const (
	ModePromptShowdown Mode = "prompt_showdown"
	ModeHotPotato      Mode = "hot_potato"
)

// DefaultMode is used when start_round omits a mode
const DefaultMode = ModePromptShowdown

// Modes lists every supported mode in display order
var Modes = []Mode{ModePromptShowdown, ModeHotPotato}

// Outbound message types
const (
	TypeWelcome          = "welcome"
	TypeAck              = "ack"
	TypeRoomUpdate       = "room_update"
	TypeGameStarted      = "game_started"
	TypeRoundStarted     = "round_started"
	TypeSubmissionUpdate = "submission_update"
	TypeVoteUpdate       = "vote_update"
	TypeRejectionUpdate  = "rejection_update"
	TypeRoundResults     = "round_results"
	TypeCountdown        = "countdown"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Welcome is sent once per connection right after the upgrade
type Welcome struct {
	ID string `json:"id"`
}

// PlayerView is a player as seen by every member of the room
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Host  bool   `json:"host"`
}

// RoomSnapshot is the full roster and phase of a room
type RoomSnapshot struct {
	Code        string       `json:"code"`
	HostID      string       `json:"hostId,omitempty"`
	Players     []PlayerView `json:"players"`
	Phase       Phase        `json:"phase"`
	Mode        Mode         `json:"mode,omitempty"`
	Round       int          `json:"round"`
	Prompt      string       `json:"prompt,omitempty"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Submissions int          `json:"submissions"`
}

// GameStarted is broadcast when the host starts the legacy single-round flow
type GameStarted struct {
	Code  string `json:"code"`
	Phase Phase  `json:"phase"`
}

// RoundStarted announces a new round and its advisory deadline
type RoundStarted struct {
	Round       int       `json:"round"`
	Mode        Mode      `json:"mode"`
	Prompt      string    `json:"prompt"`
	Deadline    time.Time `json:"deadline"`
	DurationSec int       `json:"durationSec"`
}

// SubmissionUpdate carries the number of photos in, never the photos
type SubmissionUpdate struct {
	Count int `json:"count"`
}

// VoteUpdate carries the number of votes cast
type VoteUpdate struct {
	Votes int `json:"votes"`
}

// RejectionUpdate carries the lazy-flag count for one target
type RejectionUpdate struct {
	TargetID string `json:"targetId"`
	Count    int    `json:"count"`
}

// Countdown is an informational tick while a round is running
type Countdown struct {
	Round            int `json:"round"`
	SecondsRemaining int `json:"secondsRemaining"`
}

// SubmissionView is a revealed submission with its submitter
type SubmissionView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Payload  string `json:"payload"`
}

// ScoreDelta is one player's score change for a round
type ScoreDelta struct {
	PlayerID      string `json:"playerId"`
	Participation int    `json:"participation"`
	Rejection     int    `json:"rejection"`
	Bonus         int    `json:"bonus"`
	Total         int    `json:"total"`
}

// RoundResults is broadcast when the host ends a round
type RoundResults struct {
	Round       int              `json:"round"`
	Mode        Mode             `json:"mode,omitempty"`
	Prompt      string           `json:"prompt"`
	Submissions []SubmissionView `json:"submissions"`
	Votes       map[string]int   `json:"votes"`
	MaxVotes    int              `json:"maxVotes"`
	Winners     []string         `json:"winners"`
	Rejected    []string         `json:"rejected"`
	Deltas      []ScoreDelta     `json:"deltas"`
	Scores      []PlayerView     `json:"scores"`
}
