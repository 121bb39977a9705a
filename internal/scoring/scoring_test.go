package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(voters ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(voters))
	for _, v := range voters {
		set[v] = struct{}{}
	}
	return set
}

func totals(res Result) map[string]int {
	out := make(map[string]int, len(res.Deltas))
	for _, d := range res.Deltas {
		out[d.PlayerID] = d.Total()
	}
	return out
}

func TestScore_FourPlayerScenario(t *testing.T) {
	in := Input{
		Roster:     []string{"A", "B", "C", "D"},
		Submitters: []string{"A", "C"},
		Votes:      map[string]string{"B": "A", "C": "A"},
	}

	res := Score(in, nil)

	assert.Equal(t, map[string]int{"A": 3, "B": -2, "C": 1, "D": -2}, totals(res))
	assert.Equal(t, 2, res.MaxVotes)
	assert.Equal(t, []string{"A"}, res.Winners)
	assert.Equal(t, map[string]int{"A": 2}, res.Tally)
	assert.Empty(t, res.Rejected)

	a, ok := res.DeltaFor("A")
	require.True(t, ok)
	assert.Equal(t, Delta{PlayerID: "A", Participation: 1, Bonus: 2}, a)
}

func TestScore_MajorityRejection(t *testing.T) {
	roster := []string{"W", "X", "Y", "Z"}
	everyone := []string{"W", "X", "Y", "Z"}

	t.Run("two of four is not a majority", func(t *testing.T) {
		res := Score(Input{
			Roster:     roster,
			Submitters: everyone,
			Rejections: map[string]map[string]struct{}{"X": flags("W", "Y")},
		}, nil)

		assert.Equal(t, 3, res.Majority)
		assert.Equal(t, 1, totals(res)["X"])
		assert.Empty(t, res.Rejected)
	})

	t.Run("three of four penalizes", func(t *testing.T) {
		res := Score(Input{
			Roster:     roster,
			Submitters: everyone,
			Rejections: map[string]map[string]struct{}{"X": flags("W", "Y", "Z")},
		}, nil)

		assert.Equal(t, []string{"X"}, res.Rejected)
		assert.Equal(t, 1-2, totals(res)["X"])
		assert.Equal(t, 1, totals(res)["W"])
	})

	t.Run("penalty stacks with missed submission", func(t *testing.T) {
		res := Score(Input{
			Roster:     roster,
			Submitters: []string{"W", "Y", "Z"},
			Rejections: map[string]map[string]struct{}{"X": flags("W", "Y", "Z")},
		}, nil)

		assert.Equal(t, -4, totals(res)["X"])
	})
}

func TestScore_ZeroSubmissions(t *testing.T) {
	for _, roster := range [][]string{{"solo"}, {"a", "b"}, {"a", "b", "c", "d", "e"}} {
		res := Score(Input{Roster: roster}, nil)

		assert.Equal(t, 0, res.MaxVotes)
		assert.Empty(t, res.Winners)
		assert.NotNil(t, res.Winners, "winners serialize as an empty list")
		for id, total := range totals(res) {
			assert.Equal(t, -2, total, "player %s", id)
		}
	}
}

func TestScore_SinglePlayerMajorityIsOne(t *testing.T) {
	res := Score(Input{
		Roster:     []string{"solo"},
		Submitters: []string{"solo"},
		Rejections: map[string]map[string]struct{}{"solo": flags("solo")},
	}, nil)

	assert.Equal(t, 1, res.Majority)
	assert.Equal(t, []string{"solo"}, res.Rejected)
	assert.Equal(t, -1, totals(res)["solo"])
}

func TestScore_TiesAllWin(t *testing.T) {
	res := Score(Input{
		Roster:     []string{"a", "b", "c", "d"},
		Submitters: []string{"a", "b", "c", "d"},
		Votes:      map[string]string{"a": "b", "b": "a", "c": "a", "d": "b"},
	}, nil)

	assert.Equal(t, 2, res.MaxVotes)
	assert.Equal(t, []string{"a", "b"}, res.Winners)
	assert.Equal(t, map[string]int{"a": 3, "b": 3, "c": 1, "d": 1}, totals(res))
}

func TestScore_DepartedPlayersAreInert(t *testing.T) {
	// "gone" submitted, voted and was voted for, then left before round end.
	res := Score(Input{
		Roster:     []string{"a", "b"},
		Submitters: []string{"a", "gone"},
		Votes:      map[string]string{"gone": "a", "a": "gone", "b": "gone"},
		Rejections: map[string]map[string]struct{}{"gone": flags("a", "b")},
	}, nil)

	_, ok := res.DeltaFor("gone")
	assert.False(t, ok)
	assert.Len(t, res.Deltas, 2)
	assert.Equal(t, []string{"gone"}, res.Winners)
	assert.Equal(t, []string{"gone"}, res.Rejected)
	// the departed voter's ballot still counts toward the tally
	assert.Equal(t, 1, res.Tally["a"])
	assert.Equal(t, map[string]int{"a": 1, "b": -2}, totals(res))
}

func TestScore_CustomMajority(t *testing.T) {
	unanimous := func(n int) int { return n }

	res := Score(Input{
		Roster:     []string{"a", "b", "c"},
		Submitters: []string{"a", "b", "c"},
		Rejections: map[string]map[string]struct{}{"c": flags("a", "b")},
	}, unanimous)

	assert.Equal(t, 3, res.Majority)
	assert.Empty(t, res.Rejected)
}

func TestScore_DeltasFollowRosterOrder(t *testing.T) {
	res := Score(Input{Roster: []string{"z", "m", "a"}}, nil)

	ids := make([]string, 0, len(res.Deltas))
	for _, d := range res.Deltas {
		ids = append(ids, d.PlayerID)
	}
	assert.Equal(t, []string{"z", "m", "a"}, ids)
}

func TestDefaultMajority(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 8: 5}
	for n, want := range cases {
		assert.Equal(t, want, DefaultMajority(n), "players=%d", n)
	}
}
