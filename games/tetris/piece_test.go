package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPieceSpawnPosition(t *testing.T) {
	for _, pt := range AllTypes {
		p := NewPiece(pt, BoardWidth)
		assert.Equal(t, 2, p.X, pt.String())
		assert.Equal(t, -2, p.Y, pt.String())
		assert.Equal(t, pt.SpawnShape(), p.Shape)
	}
}

func TestRotationKeepsFourCells(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)

	for _, pt := range AllTypes {
		t.Run(pt.String(), func(t *testing.T) {
			p := NewPiece(pt, BoardWidth).Moved(0, 8)
			for i := 0; i < 4; i++ {
				rotated, ok := g.Rotate(p)
				if !assert.True(t, ok) {
					return
				}
				cells := map[Offset]bool{}
				for _, c := range rotated.Cells() {
					cells[c] = true
				}
				assert.Len(t, cells, 4)
				assert.True(t, g.Fits(rotated))
				p = rotated
			}
		})
	}
}

func TestRotateIVertical(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)
	p := NewPiece(I, BoardWidth).Moved(0, 8)

	rotated, ok := g.Rotate(p)

	assert.True(t, ok)
	assert.Equal(t, p.X, rotated.X)
	assert.Equal(t, p.Y, rotated.Y)
	assert.Equal(t, Shape{{0, 2}, {0, 1}, {0, 0}, {0, -1}}, rotated.Shape)
}

func TestRotateKicksOffLeftWall(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)
	p := Piece{Type: T, X: 0, Y: 5, Shape: T.SpawnShape()}

	rotated, ok := g.Rotate(p)

	assert.True(t, ok)
	assert.Equal(t, 1, rotated.X, "kicked one column right")
	assert.Equal(t, 5, rotated.Y)
}

func TestRotateKicksUp(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)
	fillRow(g, 19, Z)
	p := NewPiece(I, BoardWidth).Moved(0, 19) // horizontal on row 18
	assert.True(t, g.Fits(p))

	rotated, ok := g.Rotate(p)

	assert.True(t, ok)
	assert.Equal(t, 2, rotated.X)
	assert.Equal(t, 16, rotated.Y, "no sideways kick clears the floor")
	assert.True(t, g.Fits(rotated))
}

func TestRotateRejectedLeavesPieceUnchanged(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)
	fillRow(g, 19, Z)
	fillRow(g, 15, Z)
	p := NewPiece(I, BoardWidth).Moved(0, 19) // horizontal on row 18
	assert.True(t, g.Fits(p))

	rotated, ok := g.Rotate(p)

	assert.False(t, ok)
	assert.Equal(t, p, rotated)
}

func TestRotateOStaysSquare(t *testing.T) {
	g := NewGrid(BoardHeight, BoardWidth)
	p := NewPiece(O, BoardWidth).Moved(0, 8)

	rotated, ok := g.Rotate(p)
	assert.True(t, ok)

	minX, minY := 99, 99
	for _, c := range rotated.Cells() {
		minX = min(minX, c.X)
		minY = min(minY, c.Y)
	}
	want := map[Offset]bool{
		{minX, minY}: true, {minX + 1, minY}: true,
		{minX, minY + 1}: true, {minX + 1, minY + 1}: true,
	}
	for _, c := range rotated.Cells() {
		assert.True(t, want[c], "cell %v outside 2x2 square", c)
	}
	// The generic turn shifts the square two columns left.
	assert.Equal(t, 1, minX)
}

func TestParsePieceType(t *testing.T) {
	for _, pt := range AllTypes {
		got, ok := ParsePieceType(pt.String())
		assert.True(t, ok)
		assert.Equal(t, pt, got)
	}
	_, ok := ParsePieceType("X")
	assert.False(t, ok)
	assert.Equal(t, "", None.Color())
	assert.Equal(t, "#fbbf24", O.Color())
}
