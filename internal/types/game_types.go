package types

import "context"

// GameResult represents the outcome of a single game
type GameResult struct {
	GameName string                 `json:"game_name"`
	Score    int                    `json:"score"`
	Duration float64                `json:"duration"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Player identifies who is at the keyboard. A zero UserID is a guest.
type Player struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// IsGuest reports whether the player is not logged in.
func (p Player) IsGuest() bool {
	return p.UserID == 0
}

// Game interface that all playable variants implement
type Game interface {
	// GetName returns the display name of the game
	GetName() string

	// GetDescription returns a brief description
	GetDescription() string

	// Play runs the game until it ends or ctx is cancelled and returns the result
	Play(ctx context.Context, player Player) *GameResult

	// GetDifficulty returns relative difficulty (1-10)
	GetDifficulty() int

	// IsAvailable checks if game can be played
	IsAvailable() bool
}
