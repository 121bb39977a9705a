package game

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrezinsky/snapchaos/internal/models"
)

func TestPrompts_NeverRepeatsPrevious(t *testing.T) {
	p := NewPrompts(nil)

	prev := ""
	for i := 0; i < 200; i++ {
		next := p.Pick(models.ModeHotPotato, prev)
		require.NotEmpty(t, next)
		assert.NotEqual(t, prev, next)
		prev = next
	}
}

func TestPrompts_Fallbacks(t *testing.T) {
	p := NewPrompts(map[models.Mode][]string{
		models.ModePromptShowdown: {"only one"},
	})

	assert.Equal(t, "only one", p.Pick(models.ModePromptShowdown, "only one"))
	assert.Equal(t, "only one", p.Pick(models.ModeHotPotato, ""), "unknown pools fall back to the default mode")

	empty := NewPrompts(map[models.Mode][]string{})
	assert.Equal(t, "", empty.Pick(models.ModeHotPotato, ""))
}

func TestPrompts_EveryModeHasAPool(t *testing.T) {
	for _, m := range models.Modes {
		assert.GreaterOrEqual(t, len(defaultPrompts[m]), 2, "mode %s", m)
	}
}

func TestGenerateCode(t *testing.T) {
	// 255 is above the unbiased limit for a 31 character alphabet and is skipped
	code, err := generateCode(bytes.NewReader([]byte{255, 0, 30, 255, 31, 1, 0, 0}), "23456789ABCDEFGHJKMNPQRSTUVWXYZ", 4)
	require.NoError(t, err)
	assert.Equal(t, "2Z23", code)

	_, err = generateCode(bytes.NewReader(nil), "AB", 4)
	assert.Error(t, err)

	_, err = generateCode(bytes.NewReader([]byte{0}), "A", 1)
	assert.Error(t, err)
}
