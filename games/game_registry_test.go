package games

import (
	"path/filepath"
	"testing"

	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	gr := NewDefaultRegistry(filepath.Join(t.TempDir(), "none.lua"), 60, nil)

	assert.Equal(t, []string{"classic", "hybrid", "touch"}, gr.GetGameList())
	assert.Equal(t, 3, gr.GetGameCount())

	game, ok := gr.GetGame(tetris.VariantTouch)
	require.True(t, ok)
	assert.Equal(t, "Ninetris Touch", game.GetName())
	assert.Equal(t, 4, game.GetDifficulty())

	_, ok = gr.GetGame("breakout")
	assert.False(t, ok)
}

func TestRegistryHidesUnavailableGames(t *testing.T) {
	gr := NewDefaultRegistry("", 0, nil)

	assert.Empty(t, gr.GetGameList())
	_, ok := gr.GetGame(tetris.VariantClassic)
	assert.False(t, ok)
}

func TestLookupVariant(t *testing.T) {
	v, ok := LookupVariant(tetris.VariantHybrid)
	require.True(t, ok)
	assert.Equal(t, 5, v.Difficulty)

	_, ok = LookupVariant("Classic")
	assert.False(t, ok)
}

func TestVariantsWithRules(t *testing.T) {
	variants := VariantsWithRules(filepath.Join(t.TempDir(), "none.lua"))

	want := map[string]string{
		tetris.VariantClassic: "immediate",
		tetris.VariantTouch:   "delayed",
		tetris.VariantHybrid:  "delayed",
	}
	require.Len(t, variants, len(want))
	for _, v := range variants {
		assert.Equal(t, want[v.Name], v.LockPolicy, v.Name)
	}
	// The package-level list keeps its zero lock policies.
	assert.Empty(t, Variants[0].LockPolicy)
}
