package game

import (
	stderrors "errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/abrezinsky/snapchaos/internal/errors"
	"github.com/abrezinsky/snapchaos/internal/logger"
	"github.com/abrezinsky/snapchaos/internal/models"
	"github.com/abrezinsky/snapchaos/internal/scoring"
)

const (
	defaultHostName  = "Host"
	defaultGuestName = "Guest"
)

// errRoomClosed is returned by Join when the reaper removed the room
// between lookup and join. Registry.Join retries on a fresh room.
var errRoomClosed = stderrors.New("room closed")

type player struct {
	id    string
	name  string
	score int
	seq   uint64 // join order, used for host failover and display
}

// Room is one game session. All methods are safe for concurrent use; each
// call holds the room lock for its whole mutation and emits its broadcasts
// before releasing it, so clients observe broadcasts in mutation order.
type Room struct {
	mu sync.Mutex

	code     string
	settings Settings
	prompts  *Prompts
	out      Broadcaster
	log      logger.Logger
	now      func() time.Time

	hostID     string
	players    map[string]*player
	joinSeq    uint64
	phase      models.Phase
	mode       models.Mode
	round      int
	current    *round
	lastPrompt string

	emptySince time.Time
	closed     bool
}

func newRoom(code string, settings Settings, prompts *Prompts, out Broadcaster, log logger.Logger, now func() time.Time) *Room {
	return &Room{
		code:       code,
		settings:   settings,
		prompts:    prompts,
		out:        out,
		log:        log.With("component", "room", "room", code),
		now:        now,
		players:    make(map[string]*player),
		phase:      models.PhaseLobby,
		emptySince: now(),
	}
}

// Code returns the room's immutable code
func (r *Room) Code() string {
	return r.code
}

// Join adds id to the roster, or renames it if already present. The first
// player in a room without a host becomes host. wantHost only picks the
// default name; it never takes the role from a sitting host.
func (r *Room) Join(id, name string, wantHost bool) (models.RoomSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return models.RoomSnapshot{}, errRoomClosed
	}

	p, ok := r.players[id]
	if !ok {
		if name == "" {
			name = defaultGuestName
			if wantHost && r.hostID == "" {
				name = defaultHostName
			}
		}
		r.joinSeq++
		p = &player{id: id, name: name, seq: r.joinSeq}
		r.players[id] = p
		r.emptySince = time.Time{}
		r.log.Info("Player joined", "player", id, "name", name, "players", len(r.players))
	} else if name != "" {
		p.name = name
	}

	if r.hostID == "" {
		r.hostID = id
		r.log.Info("Host assigned", "host", id)
	}

	snap := r.snapshotLocked()
	r.broadcastLocked(models.TypeRoomUpdate, snap)
	return snap, nil
}

// ClaimHost makes id the host if the room has none. Claiming a role
// already held is a no-op success.
func (r *Room) ClaimHost(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayerLocked(id); err != nil {
		return err
	}
	if r.hostID == id {
		return nil
	}
	if r.hostID != "" {
		return errors.NotAuthorized("room already has a host")
	}

	r.hostID = id
	r.log.Info("Host claimed", "host", id)
	r.broadcastLocked(models.TypeRoomUpdate, r.snapshotLocked())
	return nil
}

// StartGame moves the room from lobby to playing and opens an untimed round
// without a prompt. The round counter is not advanced; a later StartRound
// replaces the untimed round.
func (r *Room) StartGame(id string) (models.Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHostLocked(id); err != nil {
		return "", err
	}
	if r.phase != models.PhaseLobby {
		return "", errors.WrongPhasef("game is already %s", r.phase)
	}
	if len(r.players) < r.settings.MinPlayers {
		return "", errors.WrongPhasef("need at least %d players to start", r.settings.MinPlayers)
	}

	if r.mode == "" {
		r.mode = models.DefaultMode
	}
	r.current = newRound(r.round, r.mode, "", r.now(), 0)
	r.phase = models.PhasePlaying
	r.log.Info("Game started", "players", len(r.players))

	r.broadcastLocked(models.TypeGameStarted, models.GameStarted{Code: r.code, Phase: r.phase})
	r.broadcastLocked(models.TypeRoomUpdate, r.snapshotLocked())
	return r.phase, nil
}

// StartRound opens a new round. durationSec nil uses the default duration.
func (r *Room) StartRound(id string, mode models.Mode, durationSec *int) (models.RoundStarted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHostLocked(id); err != nil {
		return models.RoundStarted{}, err
	}
	if r.current != nil && !r.current.untimed() {
		return models.RoundStarted{}, errors.WrongPhase("a round is already in progress")
	}

	seconds := r.settings.DefaultRoundSeconds
	if durationSec != nil {
		seconds = *durationSec
	}
	if seconds <= 0 || seconds > r.settings.MaxRoundSeconds {
		return models.RoundStarted{}, errors.InvalidPayloadf("durationSec must be between 1 and %d", r.settings.MaxRoundSeconds)
	}
	if mode == "" {
		mode = models.DefaultMode
	}

	r.round++
	prompt := r.prompts.Pick(mode, r.lastPrompt)
	r.lastPrompt = prompt
	r.current = newRound(r.round, mode, prompt, r.now(), time.Duration(seconds)*time.Second)
	r.mode = mode
	r.phase = models.PhasePlaying

	started := models.RoundStarted{
		Round:       r.round,
		Mode:        mode,
		Prompt:      prompt,
		Deadline:    r.current.deadline,
		DurationSec: seconds,
	}
	r.log.Info("Round started", "round", r.round, "mode", mode, "duration_sec", seconds)

	r.broadcastLocked(models.TypeRoundStarted, started)
	r.broadcastLocked(models.TypeRoomUpdate, r.snapshotLocked())
	return started, nil
}

// SubmitPhoto stores id's photo for the current round, replacing any
// earlier one, and returns the number of submissions.
func (r *Room) SubmitPhoto(id, payload string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayerLocked(id); err != nil {
		return 0, err
	}
	if r.current == nil {
		return 0, errors.WrongPhase("no round in progress")
	}
	if len(payload) > r.settings.MaxPhotoBytes {
		return 0, errors.InvalidPayloadf("photo exceeds %d bytes", r.settings.MaxPhotoBytes)
	}

	count := r.current.submit(id, r.players[id].name, payload)
	r.log.Debug("Photo submitted", "player", id, "submissions", count)

	r.broadcastLocked(models.TypeSubmissionUpdate, models.SubmissionUpdate{Count: count})
	return count, nil
}

// VoteBest records voter's pick for best photo, overwriting an earlier pick
func (r *Room) VoteBest(voter, target string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBallotLocked(voter, target); err != nil {
		return 0, err
	}

	votes := r.current.vote(voter, target)
	r.broadcastLocked(models.TypeVoteUpdate, models.VoteUpdate{Votes: votes})
	return votes, nil
}

// FlagLazy adds voter to target's lazy-flag set
func (r *Room) FlagLazy(voter, target string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBallotLocked(voter, target); err != nil {
		return 0, err
	}

	count := r.current.flag(voter, target)
	r.broadcastLocked(models.TypeRejectionUpdate, models.RejectionUpdate{TargetID: target, Count: count})
	return count, nil
}

// EndRound scores the current round, broadcasts the results and returns
// the room to the lobby.
func (r *Room) EndRound(id string) (models.RoundResults, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHostLocked(id); err != nil {
		return models.RoundResults{}, err
	}
	if r.current == nil {
		return models.RoundResults{}, errors.WrongPhase("no round in progress")
	}

	r.phase = models.PhaseReveal
	cur := r.current

	roster := r.rosterLocked()
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.id
	}

	res := scoring.Score(cur.scoringInput(ids), r.settings.Majority)
	deltas := make([]models.ScoreDelta, 0, len(res.Deltas))
	for _, d := range res.Deltas {
		if p, ok := r.players[d.PlayerID]; ok {
			p.score += d.Total()
		}
		deltas = append(deltas, models.ScoreDelta{
			PlayerID:      d.PlayerID,
			Participation: d.Participation,
			Rejection:     d.Rejection,
			Bonus:         d.Bonus,
			Total:         d.Total(),
		})
	}

	results := models.RoundResults{
		Round:       cur.number,
		Mode:        cur.mode,
		Prompt:      cur.prompt,
		Submissions: cur.submissionViews(),
		Votes:       res.Tally,
		MaxVotes:    res.MaxVotes,
		Winners:     res.Winners,
		Rejected:    res.Rejected,
		Deltas:      deltas,
		Scores:      r.playerViewsLocked(),
	}
	r.log.Info("Round ended", "round", cur.number, "submissions", len(cur.order), "winners", res.Winners)
	r.broadcastLocked(models.TypeRoundResults, results)

	r.current = nil
	r.phase = models.PhaseLobby
	r.broadcastLocked(models.TypeRoomUpdate, r.snapshotLocked())
	return results, nil
}

// Leave removes id from the roster. Votes and photos id already cast in
// the current round stay. Returns false if id was not in the room.
func (r *Room) Leave(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	r.log.Info("Player left", "player", id, "players", len(r.players))

	if r.hostID == id {
		r.hostID = ""
		if next := r.nextHostLocked(); next != nil {
			r.hostID = next.id
			r.log.Info("Host reassigned", "host", next.id)
		}
	}
	if len(r.players) == 0 {
		r.emptySince = r.now()
	}

	r.broadcastLocked(models.TypeRoomUpdate, r.snapshotLocked())
	return true
}

// Snapshot returns the current roster and phase
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// PlayerCount returns the number of players on the roster
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Countdown broadcasts the seconds left before the advisory deadline.
// Zero is sent once when the deadline passes; the round stays open.
func (r *Room) Countdown(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil || r.current.untimed() || r.current.countdownDone {
		return
	}
	secs := int(math.Ceil(r.current.deadline.Sub(now).Seconds()))
	if secs <= 0 {
		secs = 0
		r.current.countdownDone = true
	}
	r.broadcastLocked(models.TypeCountdown, models.Countdown{Round: r.current.number, SecondsRemaining: secs})
}

// closeIfIdle marks the room closed if it has been empty for at least grace
func (r *Room) closeIfIdle(now time.Time, grace time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return true
	}
	if len(r.players) > 0 || now.Sub(r.emptySince) < grace {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) requirePlayerLocked(id string) error {
	if r.closed {
		return errors.RoomNotFound()
	}
	if _, ok := r.players[id]; !ok {
		return errors.NotAuthorized("join the room first")
	}
	return nil
}

func (r *Room) requireHostLocked(id string) error {
	if r.closed {
		return errors.RoomNotFound()
	}
	if r.hostID != id {
		return errors.NotHost()
	}
	return nil
}

func (r *Room) requireBallotLocked(voter, target string) error {
	if err := r.requirePlayerLocked(voter); err != nil {
		return err
	}
	if r.current == nil {
		return errors.WrongPhase("no round in progress")
	}
	if _, ok := r.players[target]; !ok && !r.current.hasSubmission(target) {
		return errors.InvalidPayload("unknown target")
	}
	return nil
}

// rosterLocked returns the players in join order
func (r *Room) rosterLocked() []*player {
	roster := make([]*player, 0, len(r.players))
	for _, p := range r.players {
		roster = append(roster, p)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].seq < roster[j].seq })
	return roster
}

// nextHostLocked picks the earliest-joined remaining player
func (r *Room) nextHostLocked() *player {
	var next *player
	for _, p := range r.players {
		if next == nil || p.seq < next.seq {
			next = p
		}
	}
	return next
}

func (r *Room) playerViewsLocked() []models.PlayerView {
	roster := r.rosterLocked()
	views := make([]models.PlayerView, 0, len(roster))
	for _, p := range roster {
		views = append(views, models.PlayerView{ID: p.id, Name: p.name, Score: p.score, Host: p.id == r.hostID})
	}
	return views
}

func (r *Room) snapshotLocked() models.RoomSnapshot {
	snap := models.RoomSnapshot{
		Code:    r.code,
		HostID:  r.hostID,
		Players: r.playerViewsLocked(),
		Phase:   r.phase,
		Mode:    r.mode,
		Round:   r.round,
	}
	if r.current != nil {
		snap.Prompt = r.current.prompt
		if !r.current.untimed() {
			deadline := r.current.deadline
			snap.Deadline = &deadline
		}
		snap.Submissions = len(r.current.submissions)
	}
	return snap
}

func (r *Room) broadcastLocked(msgType string, payload interface{}) {
	r.out.BroadcastToRoom(r.code, models.WSMessage{Type: msgType, Payload: payload})
}
