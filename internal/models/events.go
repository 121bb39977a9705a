package models

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/abrezinsky/snapchaos/internal/errors"
)

// Inbound event names
const (
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventClaimHost    = "claim_host"
	EventStartGame    = "start_game"
	EventStartRound   = "start_round"
	EventSubmitPhoto  = "submit_photo"
	EventVoteBest     = "vote_best"
	EventFlagLazy     = "flag_lazy"
	EventEndRound     = "end_round"
	EventLeaveRoom    = "leave_room"
	EventGetRoomState = "get_room_state"
)

const (
	MaxCodeLength = 16
	MaxNameLength = 32
)

// Inbound is the envelope of every client frame. A non-zero ID asks for an ack.
type Inbound struct {
	Event string          `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AckError is the failure half of an acknowledgment
type AckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Ack answers exactly one inbound event. Either OK is true or Error is set.
type Ack struct {
	ID    int64         `json:"id"`
	OK    bool          `json:"ok"`
	Code  string        `json:"code,omitempty"`
	Phase Phase         `json:"phase,omitempty"`
	Room  *RoomSnapshot `json:"room,omitempty"`
	Error *AckError     `json:"error,omitempty"`
}

// NewErrorAck builds a failed acknowledgment from an application error
func NewErrorAck(id int64, err error) Ack {
	kind := errors.KindOf(err)
	msg := err.Error()
	if kind == errors.ErrInternal {
		msg = "internal error"
	}
	return Ack{ID: id, Error: &AckError{Code: kind.Code(), Message: msg}}
}

// NormalizeCode trims and upper-cases a room code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode checks a normalized room code
func ValidateCode(code string) error {
	if code == "" {
		return errors.InvalidPayload("code is required")
	}
	if len(code) > MaxCodeLength {
		return errors.InvalidPayloadf("code must be at most %d characters", MaxCodeLength)
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return errors.InvalidPayload("code may contain only letters and digits")
		}
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", errors.InvalidPayloadf("name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}

// ParseMode accepts a wire mode or its display name ("Hot Potato").
// An empty string selects DefaultMode.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return DefaultMode, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.InvalidPayloadf("unknown mode %q", s)
}

// CreateRoomRequest is the payload of create_room
type CreateRoomRequest struct {
	Name string `json:"name"`
}

func (r *CreateRoomRequest) Validate() error {
	name, err := normalizeName(r.Name)
	if err != nil {
		return err
	}
	r.Name = name
	return nil
}

// JoinRoomRequest is the payload of join_room
type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Host bool   `json:"host,omitempty"`
}

func (r *JoinRoomRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	if err := ValidateCode(r.Code); err != nil {
		return err
	}
	name, err := normalizeName(r.Name)
	if err != nil {
		return err
	}
	r.Name = name
	return nil
}

// RoomRequest is the payload of events that only address a room:
// claim_host, start_game, end_round, leave_room and get_room_state.
type RoomRequest struct {
	Code string `json:"code"`
}

func (r *RoomRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	return ValidateCode(r.Code)
}

// StartRoundRequest is the payload of start_round
type StartRoundRequest struct {
	Code        string `json:"code"`
	Mode        string `json:"mode"`
	DurationSec *int   `json:"durationSec,omitempty"`

	// ParsedMode is filled by Validate
	ParsedMode Mode `json:"-"`
}

func (r *StartRoundRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	if err := ValidateCode(r.Code); err != nil {
		return err
	}
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return err
	}
	r.ParsedMode = mode
	if r.DurationSec != nil && *r.DurationSec <= 0 {
		return errors.InvalidPayload("durationSec must be positive")
	}
	return nil
}

// SubmitPhotoRequest is the payload of submit_photo
type SubmitPhotoRequest struct {
	Code    string `json:"code"`
	Payload string `json:"payload"`
}

func (r *SubmitPhotoRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	if err := ValidateCode(r.Code); err != nil {
		return err
	}
	if r.Payload == "" {
		return errors.InvalidPayload("payload is required")
	}
	return nil
}

// TargetRequest is the payload of vote_best and flag_lazy
type TargetRequest struct {
	Code     string `json:"code"`
	TargetID string `json:"targetId"`
}

func (r *TargetRequest) Validate() error {
	r.Code = NormalizeCode(r.Code)
	if err := ValidateCode(r.Code); err != nil {
		return err
	}
	r.TargetID = strings.TrimSpace(r.TargetID)
	if r.TargetID == "" {
		return errors.InvalidPayload("targetId is required")
	}
	return nil
}
