package tetris

import "time"

// RunState is the lifecycle state of a Session.
type RunState int

const (
	Idle RunState = iota
	Running
	Paused
	GameOver
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case GameOver:
		return "game_over"
	}
	return "unknown"
}

// EndReason tells how a game finished.
type EndReason int

const (
	NotEnded EndReason = iota
	// BlockOut: a freshly spawned piece overlapped locked cells.
	BlockOut
	// LockOut: a piece locked with cells still above the board.
	LockOut
)

func (r EndReason) String() string {
	switch r {
	case BlockOut:
		return "block_out"
	case LockOut:
		return "lock_out"
	}
	return ""
}

// Session is one game of ninetris. It is not safe for concurrent use: the host
// calls Tick and the command methods from a single goroutine.
type Session struct {
	rules Rules
	seed  int64

	grid    *Grid
	bag     *Bag
	falling *Piece

	score int
	lines int
	level int
	state RunState
	ended EndReason
	timer lockTimer

	starts  int64
	frame   uint64
	journal *Journal
}

// NewSession creates an idle session. The seed fixes the piece sequence of
// every game started on it.
func NewSession(rules Rules, seed int64) *Session {
	s := &Session{
		rules: rules,
		seed:  seed,
		grid:  NewGrid(rules.Rows, rules.Cols),
		level: 1,
		timer: lockTimer{policy: rules.LockPolicy, lockDelay: rules.LockDelay},
	}
	s.bag = NewBag(seed)
	return s
}

// Record makes the session append every command it receives to j.
func (s *Session) Record(j *Journal) {
	s.journal = j
}

func (s *Session) record(c Command) {
	if s.journal != nil {
		s.journal.add(s.frame, c)
	}
}

// Start resets the board and counters and begins a new game. It works from
// every state.
func (s *Session) Start() {
	s.record(CmdStart)

	s.grid = NewGrid(s.rules.Rows, s.rules.Cols)
	s.bag = NewBag(s.seed + s.starts)
	s.starts++
	s.score, s.lines, s.level = 0, 0, 1
	s.ended = NotEnded
	s.falling = nil
	s.timer.reset()
	s.state = Running
	s.spawn()
}

// Pause suspends a running game.
func (s *Session) Pause() bool {
	if s.state != Running {
		return false
	}
	s.record(CmdPause)
	s.state = Paused
	return true
}

// Resume continues a paused game.
func (s *Session) Resume() bool {
	if s.state != Paused {
		return false
	}
	s.record(CmdResume)
	s.state = Running
	return true
}

// TogglePause flips between running and paused.
func (s *Session) TogglePause() bool {
	if s.state == Paused {
		return s.Resume()
	}
	return s.Pause()
}

func (s *Session) active() bool {
	return s.state == Running && s.falling != nil
}

// shift moves the falling piece if the target position is free.
func (s *Session) shift(dx, dy int) bool {
	if s.grid.WouldCollide(*s.falling, dx, dy, s.falling.Shape) {
		return false
	}
	moved := s.falling.Moved(dx, dy)
	s.falling = &moved
	return true
}

// MoveLeft moves the falling piece one column left.
func (s *Session) MoveLeft() bool {
	return s.move(CmdLeft, -1)
}

// MoveRight moves the falling piece one column right.
func (s *Session) MoveRight() bool {
	return s.move(CmdRight, 1)
}

func (s *Session) move(c Command, dx int) bool {
	if !s.active() {
		return false
	}
	s.record(c)
	if !s.shift(dx, 0) {
		return false
	}
	s.timer.touched(s.grid.Grounded(*s.falling))
	return true
}

// Rotate turns the falling piece clockwise, trying the wall kicks in order.
func (s *Session) Rotate() bool {
	if !s.active() {
		return false
	}
	s.record(CmdRotate)
	rotated, ok := s.grid.Rotate(*s.falling)
	if !ok {
		return false
	}
	s.falling = &rotated
	s.timer.touched(s.grid.Grounded(rotated))
	return true
}

// SoftDrop moves the falling piece down one row for one point. A blocked soft
// drop does nothing; locking is left to the timer.
func (s *Session) SoftDrop() bool {
	if !s.active() {
		return false
	}
	s.record(CmdSoftDrop)
	if !s.shift(0, 1) {
		return false
	}
	s.score += SoftDropPoints
	return true
}

// HardDrop drops the falling piece to rest, two points per row, and locks it.
func (s *Session) HardDrop() bool {
	if !s.active() {
		return false
	}
	s.record(CmdHardDrop)
	rows := s.grid.DropDistance(*s.falling)
	dropped := s.falling.Moved(0, rows)
	s.falling = &dropped
	s.score += HardDropPoints * rows
	s.lock()
	return true
}

// Tick advances gravity and the lock timer by dt. At most one descent or lock
// happens per tick.
func (s *Session) Tick(dt time.Duration) {
	if s.state != Running || s.falling == nil {
		return
	}
	s.frame++

	interval := s.rules.GravityInterval(s.level)
	switch s.timer.step(dt, interval, s.grid.Grounded(*s.falling)) {
	case actDescend:
		s.shift(0, 1)
	case actLock:
		s.lock()
	}
}

// spawn takes the next piece from the bag. A piece that does not fit where it
// appears ends the game.
func (s *Session) spawn() {
	p := NewPiece(s.bag.Next(), s.grid.Cols())
	p.Y = s.rules.SpawnRow
	s.timer.reset()
	if !s.grid.Fits(p) {
		s.end(BlockOut)
		return
	}
	s.falling = &p
}

// lock writes the falling piece into the grid, scores any cleared rows and
// spawns the next piece.
func (s *Session) lock() {
	p := *s.falling
	s.falling = nil

	if aboveTop := s.grid.Lock(p); aboveTop {
		s.end(LockOut)
		return
	}

	cleared := s.grid.ClearFullRows()
	s.score += LineClearScore(cleared, s.level)
	s.lines += cleared
	s.level = LevelForLines(s.lines)

	s.spawn()
}

func (s *Session) end(reason EndReason) {
	s.state = GameOver
	s.ended = reason
	s.falling = nil
}

// State returns the lifecycle state.
func (s *Session) State() RunState { return s.state }

// EndReason reports why the last game ended, or NotEnded.
func (s *Session) EndReason() EndReason { return s.ended }

// IsGameOver checks if the game has ended.
func (s *Session) IsGameOver() bool { return s.state == GameOver }

// Score returns the current score.
func (s *Session) Score() int { return s.score }

// Lines returns the number of cleared lines.
func (s *Session) Lines() int { return s.lines }

// Level returns the current level.
func (s *Session) Level() int { return s.level }

// Seed returns the seed the session was created with.
func (s *Session) Seed() int64 { return s.seed }

// Frame returns the number of ticks processed while running.
func (s *Session) Frame() uint64 { return s.frame }

// Rules returns the rules the session plays by.
func (s *Session) Rules() Rules { return s.rules }

// Grid exposes the locked cells for renderers. Callers must not modify it.
func (s *Session) Grid() *Grid { return s.grid }

// Falling returns the falling piece, if any.
func (s *Session) Falling() (Piece, bool) {
	if s.falling == nil {
		return Piece{}, false
	}
	return *s.falling, true
}

// GhostY returns the origin row the falling piece would land on. ok is false
// when nothing is falling.
func (s *Session) GhostY() (y int, ok bool) {
	if s.falling == nil {
		return 0, false
	}
	return s.falling.Y + s.grid.DropDistance(*s.falling), true
}

// NextType returns the piece that will spawn next, or None before the first
// game has started.
func (s *Session) NextType() PieceType {
	if s.state == Idle {
		return None
	}
	return s.bag.Peek()
}

// GravityInterval returns the current time between automatic drops.
func (s *Session) GravityInterval() time.Duration {
	return s.rules.GravityInterval(s.level)
}
