package game

import (
	"math/rand/v2"

	"github.com/abrezinsky/snapchaos/internal/models"
)

var defaultPrompts = map[models.Mode][]string{
	models.ModePromptShowdown: {
		"Something that should not be in a fridge",
		"Your best impression of a houseplant",
		"The most dramatic shoe in the room",
		"A selfie with something older than you",
		"Recreate a famous painting with what you have",
		"The ugliest mug you can find",
		"Something that looks like a face",
		"Your most suspicious expression",
		"An object that tells a secret about you",
		"The tiniest thing you own",
	},
	models.ModeHotPotato: {
		"Grab the nearest red object. Go!",
		"Something round within arm's reach",
		"Anything with a button on it",
		"A spoon. Any spoon. Now.",
		"The closest thing that makes a noise",
		"Something soft you can hold in one hand",
		"A piece of paper with writing on it",
		"Anything that is currently charging",
	},
}

// Prompts draws round prompts per mode
type Prompts struct {
	pools map[models.Mode][]string
	intn  func(n int) int
}

// NewPrompts returns a prompt source. A nil pools uses the built-in lists.
func NewPrompts(pools map[models.Mode][]string) *Prompts {
	if pools == nil {
		pools = defaultPrompts
	}
	return &Prompts{pools: pools, intn: rand.IntN}
}

// Pick returns a prompt for mode that differs from previous whenever the pool allows it
func (p *Prompts) Pick(mode models.Mode, previous string) string {
	pool := p.pools[mode]
	if len(pool) == 0 {
		pool = p.pools[models.DefaultMode]
	}
	if len(pool) == 0 {
		return ""
	}
	if len(pool) == 1 {
		return pool[0]
	}

	candidates := make([]string, 0, len(pool))
	for _, prompt := range pool {
		if prompt != previous {
			candidates = append(candidates, prompt)
		}
	}
	if len(candidates) == 0 {
		return pool[0]
	}
	return candidates[p.intn(len(candidates))]
}
