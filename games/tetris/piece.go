package tetris

// PieceType identifies one of the seven tetrominoes. The zero value marks an
// empty grid cell.
type PieceType uint8

const (
	None PieceType = iota
	I
	J
	L
	O
	S
	T
	Z
)

// AllTypes lists the seven playable pieces in bag order before shuffling.
var AllTypes = [7]PieceType{I, J, L, O, S, T, Z}

// Offset is a cell position inside a piece's 4x4 frame.
type Offset struct {
	X, Y int
}

// Shape is the four cells of a piece relative to its origin.
type Shape [4]Offset

var shapes = map[PieceType]Shape{
	I: {{0, 1}, {1, 1}, {2, 1}, {3, 1}},
	J: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
	L: {{2, 0}, {0, 1}, {1, 1}, {2, 1}},
	O: {{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	S: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
	T: {{1, 0}, {0, 1}, {1, 1}, {2, 1}},
	Z: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
}

var pieceColors = map[PieceType]string{
	I: "#60a5fa",
	J: "#a78bfa",
	L: "#f59e0b",
	O: "#fbbf24",
	S: "#34d399",
	T: "#f472b6",
	Z: "#ef4444",
}

var pieceNames = map[PieceType]string{
	I: "I", J: "J", L: "L", O: "O", S: "S", T: "T", Z: "Z",
}

// String returns the single-letter name, or "" for None.
func (p PieceType) String() string {
	return pieceNames[p]
}

// Color returns the display color token for the piece, or "" for None.
func (p PieceType) Color() string {
	return pieceColors[p]
}

// SpawnShape returns the unrotated shape of a piece type.
func (p PieceType) SpawnShape() Shape {
	return shapes[p]
}

// ParsePieceType is the inverse of String.
func ParsePieceType(s string) (PieceType, bool) {
	for t, name := range pieceNames {
		if name == s {
			return t, true
		}
	}
	return None, false
}

// Piece is the falling tetromino. It is a value: moves and rotations build a
// candidate Piece which replaces the current one only once it is known to fit.
type Piece struct {
	Type  PieceType
	X, Y  int
	Shape Shape
}

// SpawnY is the origin row for new pieces, two rows above the visible board.
const SpawnY = -2

// NewPiece places a fresh piece of type t centred for a board cols wide.
func NewPiece(t PieceType, cols int) Piece {
	return Piece{
		Type:  t,
		X:     (cols - 4) / 2,
		Y:     SpawnY,
		Shape: t.SpawnShape(),
	}
}

// Cells returns the absolute board positions occupied by the piece.
func (p Piece) Cells() [4]Offset {
	var cells [4]Offset
	for i, o := range p.Shape {
		cells[i] = Offset{X: p.X + o.X, Y: p.Y + o.Y}
	}
	return cells
}

// Moved returns a copy of p shifted by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// rotateShape turns a shape clockwise inside the 4x4 frame and re-centres it.
// The same map is used for every piece type, O included.
func rotateShape(s Shape) Shape {
	var out Shape
	for i, o := range s {
		out[i] = Offset{X: o.Y - 1, Y: 3 - o.X - 1}
	}
	return out
}

// wallKicks are tried in order after a rotation. Only sideways nudges and one
// row up are attempted.
var wallKicks = [...]Offset{
	{0, 0},
	{1, 0},
	{-1, 0},
	{2, 0},
	{-2, 0},
	{0, -1},
}
