package game

import (
	"time"

	"github.com/abrezinsky/snapchaos/internal/models"
	"github.com/abrezinsky/snapchaos/internal/scoring"
)

type submission struct {
	playerID string
	name     string
	payload  string
}

// round is the sub-state of one prompt-submit-vote cycle. It is owned by
// its Room and only touched with the room lock held.
type round struct {
	number   int
	mode     models.Mode
	prompt   string
	started  time.Time
	deadline time.Time

	submissions map[string]*submission
	order       []string // submitters in first-submission order

	votes      map[string]string
	rejections map[string]map[string]struct{}

	countdownDone bool
}

// newRound opens a round. d <= 0 gives an untimed round with no deadline.
func newRound(number int, mode models.Mode, prompt string, started time.Time, d time.Duration) *round {
	r := &round{
		number:      number,
		mode:        mode,
		prompt:      prompt,
		started:     started,
		submissions: make(map[string]*submission),
		votes:       make(map[string]string),
		rejections:  make(map[string]map[string]struct{}),
	}
	if d > 0 {
		r.deadline = started.Add(d)
	}
	return r
}

func (r *round) untimed() bool {
	return r.deadline.IsZero()
}

// submit stores or replaces playerID's photo and returns the submission count
func (r *round) submit(playerID, name, payload string) int {
	if s, ok := r.submissions[playerID]; ok {
		s.payload = payload
		s.name = name
		return len(r.submissions)
	}
	r.submissions[playerID] = &submission{playerID: playerID, name: name, payload: payload}
	r.order = append(r.order, playerID)
	return len(r.submissions)
}

// vote records or overwrites voter's choice and returns the number of votes cast
func (r *round) vote(voter, target string) int {
	r.votes[voter] = target
	return len(r.votes)
}

// flag adds voter to target's rejection set and returns its size
func (r *round) flag(voter, target string) int {
	set, ok := r.rejections[target]
	if !ok {
		set = make(map[string]struct{})
		r.rejections[target] = set
	}
	set[voter] = struct{}{}
	return len(set)
}

func (r *round) hasSubmission(playerID string) bool {
	_, ok := r.submissions[playerID]
	return ok
}

func (r *round) scoringInput(roster []string) scoring.Input {
	return scoring.Input{
		Roster:     roster,
		Submitters: append([]string(nil), r.order...),
		Votes:      r.votes,
		Rejections: r.rejections,
	}
}

func (r *round) submissionViews() []models.SubmissionView {
	views := make([]models.SubmissionView, 0, len(r.order))
	for _, id := range r.order {
		s := r.submissions[id]
		views = append(views, models.SubmissionView{PlayerID: s.playerID, Name: s.name, Payload: s.payload})
	}
	return views
}
