package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(b *Bag, n int) []PieceType {
	out := make([]PieceType, n)
	for i := range out {
		out[i] = b.Next()
	}
	return out
}

func TestBagGroupsArePermutations(t *testing.T) {
	seq := draw(NewBag(1), 70)

	for g := 0; g < len(seq); g += 7 {
		seen := map[PieceType]int{}
		for _, pt := range seq[g : g+7] {
			seen[pt]++
		}
		assert.Len(t, seen, 7, "group starting at %d", g)
		for pt, n := range seen {
			assert.Equal(t, 1, n, "%s in group starting at %d", pt, g)
		}
	}
}

func TestBagRepeatDistanceIsBounded(t *testing.T) {
	seq := draw(NewBag(99), 200)

	// Any 13 consecutive pieces contain every type.
	for start := 0; start+13 <= len(seq); start++ {
		seen := map[PieceType]bool{}
		for _, pt := range seq[start : start+13] {
			seen[pt] = true
		}
		assert.Len(t, seen, 7, "window starting at %d", start)
	}
}

func TestBagIsDeterministic(t *testing.T) {
	assert.Equal(t, draw(NewBag(7), 30), draw(NewBag(7), 30))
	assert.NotEqual(t, draw(NewBag(7), 30), draw(NewBag(8), 30))
}

func TestBagPeekAndLen(t *testing.T) {
	b := NewBag(3)
	assert.Equal(t, 0, b.Len())

	head := b.Peek()
	assert.Equal(t, 7, b.Len())
	assert.Equal(t, head, b.Next())
	assert.Equal(t, 6, b.Len())

	b.Next()
	assert.Equal(t, 12, b.Len(), "refilled below seven before drawing")
}
