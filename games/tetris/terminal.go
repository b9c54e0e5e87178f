package tetris

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/isaacjstriker/ninetris/internal/types"
)

// Archive stores finished playthroughs.
type Archive interface {
	SavePlaythrough(ctx context.Context, p *Playthrough) error
}

// Game plays one variant in the terminal. It implements types.Game.
type Game struct {
	variant     string
	description string
	difficulty  int
	rules       Rules
	tickRate    int
	archive     Archive
}

// NewGame creates a terminal game for variant. archive may be nil, in which
// case playthroughs are not saved.
func NewGame(variant, description string, difficulty int, rules Rules, tickRate int, archive Archive) *Game {
	return &Game{
		variant:     variant,
		description: description,
		difficulty:  difficulty,
		rules:       rules,
		tickRate:    tickRate,
		archive:     archive,
	}
}

func (g *Game) GetName() string {
	return "Ninetris " + strings.ToUpper(g.variant[:1]) + g.variant[1:]
}

func (g *Game) GetDescription() string {
	return g.description
}

func (g *Game) GetDifficulty() int {
	return g.difficulty
}

func (g *Game) IsAvailable() bool {
	return g.tickRate > 0
}

// Play runs a session against the keyboard until the game ends, the player
// quits or ctx is cancelled.
func (g *Game) Play(ctx context.Context, player types.Player) *types.GameResult {
	keys, err := keyboard.GetKeys(16)
	if err != nil {
		fmt.Println("Failed to open keyboard:", err)
		return nil
	}
	defer keyboard.Close()

	session := NewSession(g.rules, time.Now().UnixNano())
	playthrough := NewPlaythrough(session, g.variant, g.tickRate)
	playthrough.UserID = player.UserID
	session.Start()

	step := playthrough.Step()
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	started := time.Now()
	fmt.Print(render(session.Snapshot(), g.GetName()))

loop:
	for {
		select {
		case <-ctx.Done():
			break loop

		case ev := <-keys:
			if ev.Err != nil {
				log.Printf("[WARN] keyboard error: %v", ev.Err)
				continue
			}
			cmd, quit := keyCommand(ev.Rune, ev.Key)
			if quit {
				break loop
			}
			if cmd != "" && session.Apply(cmd) {
				fmt.Print(render(session.Snapshot(), g.GetName()))
			}

		case <-ticker.C:
			session.Tick(step)
			fmt.Print(render(session.Snapshot(), g.GetName()))
			if session.IsGameOver() {
				break loop
			}
		}
	}

	playthrough.Finish(session)
	if session.IsGameOver() {
		fmt.Printf("\nGame over (%s). Hits the ceiling = lose.\n", session.EndReason())
	}

	if g.archive != nil && !player.IsGuest() {
		if err := g.archive.SavePlaythrough(ctx, playthrough); err != nil {
			fmt.Printf("⚠️  Warning: Could not save playthrough: %v\n", err)
		} else {
			fmt.Printf("✅ Playthrough %s saved.\n", playthrough.ID)
		}
	}

	return &types.GameResult{
		GameName: g.GetName(),
		Score:    session.Score(),
		Duration: time.Since(started).Seconds(),
		Metadata: map[string]interface{}{
			"lines":          session.Lines(),
			"level":          session.Level(),
			"reason":         session.EndReason().String(),
			"playthrough_id": playthrough.ID,
		},
	}
}

// keyCommand maps a key press to a command. quit is set for Q and Esc.
func keyCommand(char rune, key keyboard.Key) (cmd Command, quit bool) {
	switch {
	case char == 'q' || char == 'Q' || key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
		return "", true
	case char == 'a' || char == 'A' || key == keyboard.KeyArrowLeft:
		return CmdLeft, false
	case char == 'd' || char == 'D' || key == keyboard.KeyArrowRight:
		return CmdRight, false
	case char == 's' || char == 'S' || key == keyboard.KeyArrowDown:
		return CmdSoftDrop, false
	case char == 'w' || char == 'W' || key == keyboard.KeyArrowUp:
		return CmdRotate, false
	case key == keyboard.KeySpace:
		return CmdHardDrop, false
	case char == 'p' || char == 'P':
		return CmdTogglePause, false
	}
	return "", false
}

var ansiColors = map[string]string{
	I.Color(): "\033[46m  \033[0m", // Cyan
	J.Color(): "\033[45m  \033[0m", // Magenta
	L.Color(): "\033[47m  \033[0m", // White
	O.Color(): "\033[43m  \033[0m", // Yellow
	S.Color(): "\033[42m  \033[0m", // Green
	T.Color(): "\033[44m  \033[0m", // Blue
	Z.Color(): "\033[41m  \033[0m", // Red
}

var asciiColors = map[string]string{
	I.Color(): "##", J.Color(): "@@", L.Color(): "**", O.Color(): "%%",
	S.Color(): "&&", T.Color(): "++", Z.Color(): "==",
}

func supportsColor() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

func cellString(color string, ghost, colored bool) string {
	switch {
	case color != "" && colored:
		return ansiColors[color]
	case color != "":
		return asciiColors[color]
	case ghost:
		return "░░"
	case colored:
		return "  "
	}
	return ".."
}

// render draws the whole frame as one string so the terminal never shows a
// half-drawn board.
func render(st GameState, title string) string {
	colored := supportsColor()
	rows := len(st.Board)
	cols := 0
	if rows > 0 {
		cols = len(st.Board[0])
	}

	display := make([][]string, rows)
	for y := range display {
		display[y] = make([]string, cols)
		for x := range display[y] {
			display[y][x] = cellString(st.Board[y][x], false, colored)
		}
	}
	for _, c := range st.Ghost {
		if c.Y >= 0 && c.Y < rows && st.Board[c.Y][c.X] == "" {
			display[c.Y][c.X] = cellString("", true, colored)
		}
	}
	for _, c := range st.Falling {
		if c.Y >= 0 && c.Y < rows {
			display[c.Y][c.X] = cellString(c.Color, false, colored)
		}
	}

	var b strings.Builder
	b.WriteString("\033[2J\033[H")
	fmt.Fprintf(&b, "%s | Score: %d | Lines: %d | Level: %d | Next: %s\r\n",
		strings.ToUpper(title), st.Score, st.Lines, st.Level, st.NextPiece)
	b.WriteString("╔" + strings.Repeat("═", cols*2) + "╗\r\n")
	for _, row := range display {
		b.WriteString("║")
		for _, cell := range row {
			b.WriteString(cell)
		}
		b.WriteString("║\r\n")
	}
	b.WriteString("╚" + strings.Repeat("═", cols*2) + "╝\r\n")

	switch st.State {
	case Paused.String():
		b.WriteString("PAUSED - press P to resume\r\n")
	case GameOver.String():
		b.WriteString("GAME OVER\r\n")
	}
	b.WriteString("Controls: A/D=Move, S=Down, W=Rotate, Space=Drop, P=Pause, Q=Quit\r\n")
	return b.String()
}
