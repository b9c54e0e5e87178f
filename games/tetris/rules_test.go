package tetris

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.lua")
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))
	return path
}

func TestDefaultRules(t *testing.T) {
	classic := DefaultRules(VariantClassic)
	assert.Equal(t, LockImmediate, classic.LockPolicy)
	assert.Equal(t, BoardHeight, classic.Rows)
	assert.Equal(t, BoardWidth, classic.Cols)
	assert.Equal(t, SpawnY, classic.SpawnRow)

	assert.Equal(t, LockDelayed, DefaultRules(VariantTouch).LockPolicy)
	assert.Equal(t, LockDelayed, DefaultRules(VariantHybrid).LockPolicy)
	assert.Equal(t, 450*time.Millisecond, DefaultRules(VariantHybrid).LockDelay)
}

func TestLoadRulesOverrides(t *testing.T) {
	path := writeRules(t, `
return {
  board = { rows = 16 },
  gravity = { base_ms = 1000, step_ms = 50 },
  lock_delay_ms = 300,
  variants = {
    classic = { lock_policy = "delayed", lock_delay_ms = 200 },
    hybrid = { lock_policy = "never" },
  },
}
`)

	classic := LoadRules(path, VariantClassic)
	assert.Equal(t, 16, classic.Rows)
	assert.Equal(t, BoardWidth, classic.Cols)
	assert.Equal(t, time.Second, classic.BaseInterval)
	assert.Equal(t, 80*time.Millisecond, classic.MinInterval)
	assert.Equal(t, 50*time.Millisecond, classic.IntervalStep)
	assert.Equal(t, LockDelayed, classic.LockPolicy)
	assert.Equal(t, 200*time.Millisecond, classic.LockDelay)

	touch := LoadRules(path, VariantTouch)
	assert.Equal(t, LockDelayed, touch.LockPolicy)
	assert.Equal(t, 300*time.Millisecond, touch.LockDelay)

	hybrid := LoadRules(path, VariantHybrid)
	assert.Equal(t, LockDelayed, hybrid.LockPolicy, "unknown policy keeps the default")
}

func TestLoadRulesFallsBack(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.lua")},
		{"syntax error", writeRules(t, "return {")},
		{"not a table", writeRules(t, "return 5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, DefaultRules(VariantTouch), LoadRules(tt.path, VariantTouch))
		})
	}
}

func TestLoadRulesRejectsBadBoard(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"negative rows", "return { board = { rows = -1, cols = 9 } }"},
		{"zero rows", "return { board = { rows = 0 } }"},
		{"too narrow", "return { board = { cols = 3 } }"},
		{"variant override", "return { variants = { classic = { board = { rows = -5 } } } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := LoadRules(writeRules(t, tt.script), VariantClassic)
			assert.Equal(t, BoardHeight, rules.Rows)
			assert.Equal(t, BoardWidth, rules.Cols)

			s := NewSession(rules, 1)
			s.Start()
			assert.Equal(t, Running, s.State())
		})
	}
}

func TestLoadRulesKeepsOtherKeysWithBadBoard(t *testing.T) {
	path := writeRules(t, "return { board = { rows = -1 }, lock_delay_ms = 250 }")

	rules := LoadRules(path, VariantTouch)
	assert.Equal(t, BoardHeight, rules.Rows)
	assert.Equal(t, 250*time.Millisecond, rules.LockDelay)
}

func TestShippedRulesMatchDefaults(t *testing.T) {
	for _, variant := range []string{VariantClassic, VariantTouch, VariantHybrid} {
		assert.Equal(t, DefaultRules(variant), LoadRules("rules.lua", variant), variant)
	}
}
