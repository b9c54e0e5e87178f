package ui

import (
	"strings"
	"testing"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
)

func testMenu() *Menu {
	return NewMenu("Pick a variant", []MenuItem{
		{Label: "Classic", Value: "classic"},
		{Label: "Touch", Value: "touch"},
		{Label: "Hybrid", Value: "hybrid"},
	})
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		name      string
		keys      []keyboard.Key
		chars     []rune
		wantValue string
		wantDone  bool
		wantIndex int
	}{
		{"down once", []keyboard.Key{keyboard.KeyArrowDown}, []rune{0}, "", false, 1},
		{"up wraps to bottom", []keyboard.Key{keyboard.KeyArrowUp}, []rune{0}, "", false, 2},
		{"down wraps to top", []keyboard.Key{keyboard.KeyArrowDown, keyboard.KeyArrowDown, keyboard.KeyArrowDown}, []rune{0, 0, 0}, "", false, 0},
		{"vim keys", []keyboard.Key{0, 0, 0}, []rune{'j', 'j', 'k'}, "", false, 1},
		{"enter selects", []keyboard.Key{keyboard.KeyArrowDown, keyboard.KeyEnter}, []rune{0, 0}, "touch", true, 1},
		{"q exits", []keyboard.Key{0}, []rune{'q'}, "exit", true, 0},
		{"escape exits", []keyboard.Key{keyboard.KeyEsc}, []rune{0}, "exit", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testMenu()
			var value string
			var done bool
			for i, key := range tt.keys {
				value, done = m.handleKey(tt.chars[i], key)
			}
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantDone, done)
			assert.Equal(t, tt.wantIndex, m.Selected)
		})
	}
}

func TestFrame(t *testing.T) {
	m := testMenu()
	m.Selected = 2
	frame := m.Frame()

	lines := strings.Split(strings.TrimRight(frame, "\n"), "\n")
	assert.Len(t, lines, 3+len(m.Items)+1)
	assert.Contains(t, lines[1], "Pick a variant")
	assert.Contains(t, lines[5], "► Hybrid")
	assert.NotContains(t, lines[3], "►")
}

func TestCenterTextTruncates(t *testing.T) {
	m := NewMenu("x", nil)
	m.Width = 10

	assert.Equal(t, "  abc   ", m.centerText("abc", 10))
	assert.Equal(t, "abcdefgh", m.centerText("abcdefghijk", 10))
}

func TestShowWithoutItems(t *testing.T) {
	assert.Equal(t, "exit", NewMenu("empty", nil).Show())
}
