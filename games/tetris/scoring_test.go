package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLineClearScore(t *testing.T) {
	tests := []struct {
		rows, level, want int
	}{
		{0, 1, 0},
		{1, 1, 100},
		{2, 1, 300},
		{3, 1, 500},
		{4, 1, 800},
		{1, 3, 300},
		{4, 5, 4000},
		{1, 0, 100},
		{5, 1, 0},
		{-1, 1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LineClearScore(tt.rows, tt.level), "rows=%d level=%d", tt.rows, tt.level)
	}
}

func TestLevelForLines(t *testing.T) {
	for lines := 0; lines < 200; lines++ {
		assert.Equal(t, 1+lines/10, LevelForLines(lines))
	}
	assert.Equal(t, 1, LevelForLines(9))
	assert.Equal(t, 2, LevelForLines(10))
}

func TestGravityInterval(t *testing.T) {
	r := DefaultRules(VariantClassic)

	tests := []struct {
		level int
		want  time.Duration
	}{
		{1, 800 * time.Millisecond},
		{2, 740 * time.Millisecond},
		{5, 560 * time.Millisecond},
		{13, 80 * time.Millisecond},
		{14, 80 * time.Millisecond},
		{40, 80 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.GravityInterval(tt.level), "level %d", tt.level)
	}
}
