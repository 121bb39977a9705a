package websocket

import (
	"encoding/json"

	"github.com/abrezinsky/snapchaos/internal/errors"
	"github.com/abrezinsky/snapchaos/internal/models"
)

type validator interface {
	Validate() error
}

// decode unmarshals an event's data into v and validates it
func decode(data json.RawMessage, v validator) error {
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidPayload("malformed event data")
	}
	return v.Validate()
}

// dispatch applies one inbound event for c. The returned ack carries only
// the success fields; handle fills in the id and ok flag.
func (h *Hub) dispatch(c *Client, in models.Inbound) (models.Ack, error) {
	switch in.Event {
	case models.EventCreateRoom:
		var req models.CreateRoomRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		room, err := h.rooms.Create()
		if err != nil {
			return models.Ack{}, err
		}
		snap, err := h.join(c, room.Code(), req.Name, true)
		if err != nil {
			return models.Ack{}, err
		}
		return models.Ack{Code: snap.Code, Room: &snap}, nil

	case models.EventJoinRoom:
		var req models.JoinRoomRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		snap, err := h.join(c, req.Code, req.Name, req.Host)
		if err != nil {
			return models.Ack{}, err
		}
		return models.Ack{Code: snap.Code, Room: &snap}, nil

	case models.EventStartRound:
		var req models.StartRoundRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		room, err := h.rooms.Find(req.Code)
		if err != nil {
			return models.Ack{}, err
		}
		_, err = room.StartRound(c.id, req.ParsedMode, req.DurationSec)
		return models.Ack{}, err

	case models.EventSubmitPhoto:
		var req models.SubmitPhotoRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		room, err := h.rooms.Find(req.Code)
		if err != nil {
			return models.Ack{}, err
		}
		_, err = room.SubmitPhoto(c.id, req.Payload)
		return models.Ack{}, err

	case models.EventVoteBest, models.EventFlagLazy:
		var req models.TargetRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		room, err := h.rooms.Find(req.Code)
		if err != nil {
			return models.Ack{}, err
		}
		if in.Event == models.EventVoteBest {
			_, err = room.VoteBest(c.id, req.TargetID)
		} else {
			_, err = room.FlagLazy(c.id, req.TargetID)
		}
		return models.Ack{}, err

	case models.EventClaimHost, models.EventStartGame, models.EventEndRound,
		models.EventLeaveRoom, models.EventGetRoomState:
		var req models.RoomRequest
		if err := decode(in.Data, &req); err != nil {
			return models.Ack{}, err
		}
		room, err := h.rooms.Find(req.Code)
		if err != nil {
			return models.Ack{}, err
		}
		return h.roomEvent(c, in.Event, room)

	default:
		return models.Ack{}, errors.InvalidPayloadf("unknown event %q", in.Event)
	}
}

type roomHandle interface {
	Code() string
	ClaimHost(id string) error
	StartGame(id string) (models.Phase, error)
	EndRound(id string) (models.RoundResults, error)
	Leave(id string) bool
	Snapshot() models.RoomSnapshot
}

func (h *Hub) roomEvent(c *Client, event string, room roomHandle) (models.Ack, error) {
	switch event {
	case models.EventClaimHost:
		return models.Ack{}, room.ClaimHost(c.id)

	case models.EventStartGame:
		phase, err := room.StartGame(c.id)
		return models.Ack{Phase: phase}, err

	case models.EventEndRound:
		_, err := room.EndRound(c.id)
		return models.Ack{}, err

	case models.EventLeaveRoom:
		h.detach(c, room.Code())
		room.Leave(c.id)
		return models.Ack{}, nil

	default: // get_room_state
		snap := room.Snapshot()
		return models.Ack{Room: &snap}, nil
	}
}

// join attaches c to code's broadcast group before adding the player, so
// the joiner receives its own room_update. A previous room is left first.
func (h *Hub) join(c *Client, code, name string, wantHost bool) (models.RoomSnapshot, error) {
	code = models.NormalizeCode(code)
	if prev := h.attach(c, code); prev != "" {
		h.leaveRoom(c, prev)
	}

	_, snap, err := h.rooms.Join(code, c.id, name, wantHost)
	if err != nil {
		h.detach(c, code)
		return models.RoomSnapshot{}, err
	}
	return snap, nil
}
