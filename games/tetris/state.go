package tetris

// Cell is a colored board position in a GameState.
type Cell struct {
	X     int    `json:"x" yaml:"x"`
	Y     int    `json:"y" yaml:"y"`
	Color string `json:"color" yaml:"color"`
}

// GameState represents the data sent to the client for rendering.
type GameState struct {
	Board     [][]string `json:"board"`
	Falling   []Cell     `json:"falling"`
	Ghost     []Cell     `json:"ghost"`
	GhostY    int        `json:"ghostY"`
	NextPiece string     `json:"nextPiece"`
	NextShape []Cell     `json:"nextShape"`
	Score     int        `json:"score"`
	Lines     int        `json:"lines"`
	Level     int        `json:"level"`
	State     string     `json:"state"`
	GameOver  bool       `json:"gameOver"`
	Reason    string     `json:"reason,omitempty"`
}

// Snapshot returns the current state of the game for rendering and JSON serialization.
func (s *Session) Snapshot() GameState {
	st := GameState{
		Board:    s.grid.Colors(),
		Score:    s.score,
		Lines:    s.lines,
		Level:    s.level,
		State:    s.state.String(),
		GameOver: s.state == GameOver,
		Reason:   s.ended.String(),
	}

	if p, ok := s.Falling(); ok {
		color := p.Type.Color()
		for _, c := range p.Cells() {
			st.Falling = append(st.Falling, Cell{X: c.X, Y: c.Y, Color: color})
		}
		ghostY, _ := s.GhostY()
		st.GhostY = ghostY
		for _, c := range p.Moved(0, ghostY-p.Y).Cells() {
			st.Ghost = append(st.Ghost, Cell{X: c.X, Y: c.Y, Color: color})
		}
	}

	if next := s.NextType(); next != None {
		st.NextPiece = next.String()
		for _, o := range next.SpawnShape() {
			st.NextShape = append(st.NextShape, Cell{X: o.X, Y: o.Y, Color: next.Color()})
		}
	}
	return st
}
