package database

import (
	"context"
	"fmt"
	"time"

	"github.com/isaacjstriker/ninetris/games/tetris"
)

// demoScript is played column by column to produce a short sample game.
var demoScript = []tetris.Command{
	tetris.CmdLeft, tetris.CmdLeft, tetris.CmdHardDrop,
	tetris.CmdRight, tetris.CmdRight, tetris.CmdHardDrop,
	tetris.CmdRotate, tetris.CmdHardDrop,
	tetris.CmdLeft, tetris.CmdRotate, tetris.CmdSoftDrop, tetris.CmdHardDrop,
}

// CreateTestData creates a demo user with one recorded playthrough for local
// development. It does nothing when users already exist.
func (db *DB) CreateTestData(ctx context.Context) error {
	var userCount int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&userCount)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}

	if userCount > 0 {
		return nil // Data already exists
	}

	// The hash never verifies, so the demo account cannot be logged into.
	user, err := db.CreateUser(ctx, "demo", "demo@example.com", "!")
	if err != nil {
		return fmt.Errorf("failed to create test user demo: %w", err)
	}

	p := DemoPlaythrough(42, 60)
	p.UserID = user.ID
	if err := db.SavePlaythrough(ctx, p); err != nil {
		return fmt.Errorf("failed to save demo playthrough: %w", err)
	}
	return nil
}

// DemoPlaythrough plays demoScript with one command every ten frames until
// the game ends or the script runs out.
func DemoPlaythrough(seed int64, tickRate int) *tetris.Playthrough {
	session := tetris.NewSession(tetris.DefaultRules(tetris.VariantClassic), seed)
	p := tetris.NewPlaythrough(session, tetris.VariantClassic, tickRate)
	session.Start()

	step := time.Second / time.Duration(tickRate)
	for _, cmd := range demoScript {
		for i := 0; i < 10; i++ {
			session.Tick(step)
		}
		session.Apply(cmd)
		if session.IsGameOver() {
			break
		}
	}
	p.Finish(session)
	return p
}
