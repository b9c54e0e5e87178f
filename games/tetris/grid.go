package tetris

const (
	BoardWidth  = 9
	BoardHeight = 20
)

// Grid holds the locked cells of the board, indexed [row][col]. Its dimensions
// never change after creation.
type Grid struct {
	rows, cols int
	cells      [][]PieceType
}

// NewGrid creates an empty grid.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{rows: rows, cols: cols, cells: make([][]PieceType, rows)}
	for i := range g.cells {
		g.cells[i] = make([]PieceType, cols)
	}
	return g
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// At returns the cell at (row, col). Out of range positions read as None.
func (g *Grid) At(row, col int) PieceType {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return None
	}
	return g.cells[row][col]
}

// Set writes a cell. Out of range positions are ignored.
func (g *Grid) Set(row, col int, t PieceType) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return
	}
	g.cells[row][col] = t
}

// Occupied counts the non-empty cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c != None {
				n++
			}
		}
	}
	return n
}

// WouldCollide reports whether shape, placed at p's origin shifted by
// (dx, dy), hits a wall, the floor or a locked cell. Cells above the board
// only collide with the side walls.
func (g *Grid) WouldCollide(p Piece, dx, dy int, shape Shape) bool {
	for _, o := range shape {
		x := p.X + dx + o.X
		y := p.Y + dy + o.Y

		if x < 0 || x >= g.cols || y >= g.rows {
			return true
		}
		if y >= 0 && g.cells[y][x] != None {
			return true
		}
	}
	return false
}

// Fits is WouldCollide for the piece exactly where it is.
func (g *Grid) Fits(p Piece) bool {
	return !g.WouldCollide(p, 0, 0, p.Shape)
}

// Rotate turns p clockwise and resolves wall kicks. The rotated piece is
// returned with ok set when one of the kicks fits; otherwise p comes back
// unchanged.
func (g *Grid) Rotate(p Piece) (Piece, bool) {
	rotated := rotateShape(p.Shape)
	for _, k := range wallKicks {
		if !g.WouldCollide(p, k.X, k.Y, rotated) {
			return Piece{Type: p.Type, X: p.X + k.X, Y: p.Y + k.Y, Shape: rotated}, true
		}
	}
	return p, false
}

// DropDistance returns how many rows p can fall before it rests.
func (g *Grid) DropDistance(p Piece) int {
	dy := 0
	for !g.WouldCollide(p, 0, dy+1, p.Shape) {
		dy++
	}
	return dy
}

// Grounded reports whether p cannot move down.
func (g *Grid) Grounded(p Piece) bool {
	return g.WouldCollide(p, 0, 1, p.Shape)
}

// Lock writes the piece into the grid. Cells above the board are not written;
// the return value reports whether any were found.
func (g *Grid) Lock(p Piece) (aboveTop bool) {
	for _, c := range p.Cells() {
		if c.Y < 0 {
			aboveTop = true
			continue
		}
		g.Set(c.Y, c.X, p.Type)
	}
	return aboveTop
}

func (g *Grid) rowFull(y int) bool {
	for _, c := range g.cells[y] {
		if c == None {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, shifts the rows above it down and
// returns how many were removed.
func (g *Grid) ClearFullRows() int {
	cleared := 0
	for y := g.rows - 1; y >= 0; y-- {
		if !g.rowFull(y) {
			continue
		}

		// Remove row y and insert an empty row on top
		copy(g.cells[1:y+1], g.cells[0:y])
		g.cells[0] = make([]PieceType, g.cols)
		y++ // Check same line again
		cleared++
	}
	return cleared
}

// Colors returns a copy of the grid as color tokens, "" for empty cells.
func (g *Grid) Colors() [][]string {
	out := make([][]string, g.rows)
	for y, row := range g.cells {
		out[y] = make([]string, g.cols)
		for x, c := range row {
			out[y][x] = c.Color()
		}
	}
	return out
}
