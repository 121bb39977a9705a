// Package scoring computes per-round score deltas. It holds no state and
// never looks at the clock, so the same input always yields the same result.
package scoring

import "sort"

// Point values applied at round end
const (
	SubmittedPoints = 1
	MissedPenalty   = -2
	RejectedPenalty = -2
	BestPhotoBonus  = 2
)

// MajorityFunc returns how many distinct lazy flags penalize a target
// in a room of playerCount players.
type MajorityFunc func(playerCount int) int

// DefaultMajority is floor(n/2)+1. A one-player room has a majority of 1.
func DefaultMajority(playerCount int) int {
	return playerCount/2 + 1
}

// Input is the frozen state of a round at the moment it ends
type Input struct {
	// Roster is the current player list in display order.
	Roster []string
	// Submitters may include players who have since left.
	Submitters []string
	// Votes maps voter to chosen target.
	Votes map[string]string
	// Rejections maps target to the voters who flagged it.
	Rejections map[string]map[string]struct{}
}

// Delta is the breakdown of one player's score change
type Delta struct {
	PlayerID      string
	Participation int
	Rejection     int
	Bonus         int
}

// Total returns the summed delta
func (d Delta) Total() int {
	return d.Participation + d.Rejection + d.Bonus
}

// Result is the outcome of a round
type Result struct {
	// Deltas holds one entry per roster player, in roster order.
	Deltas   []Delta
	Tally    map[string]int
	MaxVotes int
	// Winners are every target whose tally equals MaxVotes, sorted.
	// Targets who have left still appear here but gain nothing.
	Winners []string
	// Rejected are the targets that reached the majority, sorted.
	Rejected []string
	Majority int
}

// DeltaFor returns the delta for id and whether id was on the roster
func (r Result) DeltaFor(id string) (Delta, bool) {
	for _, d := range r.Deltas {
		if d.PlayerID == id {
			return d, true
		}
	}
	return Delta{}, false
}

// Score applies the round rules to in. A nil majority uses DefaultMajority.
func Score(in Input, majority MajorityFunc) Result {
	if majority == nil {
		majority = DefaultMajority
	}

	res := Result{
		Tally:    make(map[string]int),
		Majority: majority(len(in.Roster)),
		Winners:  []string{},
		Rejected: []string{},
	}

	submitted := make(map[string]bool, len(in.Submitters))
	for _, id := range in.Submitters {
		submitted[id] = true
	}

	for _, target := range in.Votes {
		res.Tally[target]++
	}
	for _, n := range res.Tally {
		if n > res.MaxVotes {
			res.MaxVotes = n
		}
	}

	winners := make(map[string]bool)
	if res.MaxVotes > 0 {
		for target, n := range res.Tally {
			if n == res.MaxVotes {
				winners[target] = true
				res.Winners = append(res.Winners, target)
			}
		}
	}
	sort.Strings(res.Winners)

	rejected := make(map[string]bool)
	for target, voters := range in.Rejections {
		if len(voters) >= res.Majority {
			rejected[target] = true
			res.Rejected = append(res.Rejected, target)
		}
	}
	sort.Strings(res.Rejected)

	res.Deltas = make([]Delta, 0, len(in.Roster))
	for _, id := range in.Roster {
		d := Delta{PlayerID: id, Participation: MissedPenalty}
		if submitted[id] {
			d.Participation = SubmittedPoints
		}
		if rejected[id] {
			d.Rejection = RejectedPenalty
		}
		if winners[id] {
			d.Bonus = BestPhotoBonus
		}
		res.Deltas = append(res.Deltas, d)
	}
	return res
}
