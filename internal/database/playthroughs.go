package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isaacjstriker/ninetris/games/tetris"
)

// PlaythroughSummary is a playthrough without its input journal.
type PlaythroughSummary struct {
	ID       string    `json:"id"`
	Username string    `json:"username,omitempty"`
	Variant  string    `json:"variant"`
	Score    int       `json:"score"`
	Lines    int       `json:"lines"`
	Level    int       `json:"level"`
	Reason   string    `json:"reason"`
	EndedAt  time.Time `json:"ended_at"`
}

// SavePlaythrough stores a finished playthrough. The full record, journal
// included, is kept as JSON next to the summary columns.
func (db *DB) SavePlaythrough(ctx context.Context, p *tetris.Playthrough) error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("invalid playthrough id %q: %w", p.ID, err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal playthrough: %w", err)
	}

	var userID interface{}
	if p.UserID != 0 {
		userID = p.UserID
	}

	query := `
		INSERT INTO playthroughs (id, user_id, variant, score, cleared_lines, game_level, reason, data, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.conn.ExecContext(ctx, db.rebind(query),
		p.ID, userID, p.Variant, p.Score, p.Lines, p.Level, p.Reason, string(data),
		p.StartedAt.UTC(), p.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save playthrough: %w", err)
	}
	return nil
}

// GetPlaythrough loads a playthrough with its journal.
func (db *DB) GetPlaythrough(ctx context.Context, id string) (*tetris.Playthrough, error) {
	var data string
	err := db.conn.QueryRowContext(ctx, db.rebind("SELECT data FROM playthroughs WHERE id = ?"), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("playthrough %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playthrough: %w", err)
	}

	var p tetris.Playthrough
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal playthrough: %w", err)
	}
	return &p, nil
}

// GetRecentPlaythroughs lists the most recently finished games, newest first.
func (db *DB) GetRecentPlaythroughs(ctx context.Context, limit int) ([]PlaythroughSummary, error) {
	query := `
		SELECT p.id, COALESCE(u.username, ''), p.variant, p.score, p.cleared_lines, p.game_level, p.reason, p.ended_at
		FROM playthroughs p
		LEFT JOIN users u ON u.id = p.user_id
		ORDER BY p.ended_at DESC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, db.rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent playthroughs: %w", err)
	}
	defer rows.Close()

	entries := []PlaythroughSummary{}
	for rows.Next() {
		var e PlaythroughSummary
		if err := rows.Scan(&e.ID, &e.Username, &e.Variant, &e.Score, &e.Lines, &e.Level, &e.Reason, &e.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playthrough: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playthroughs: %w", err)
	}
	return entries, nil
}
