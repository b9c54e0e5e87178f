package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver for hosted deployments
	_ "github.com/lib/pq"            // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"  // Keep SQLite driver for local development
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DB struct {
	conn   *sql.DB
	dbType string // "postgres", "mysql" or "sqlite3"
}

type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// driverFor picks the database/sql driver and DSN for a DATABASE_URL.
func driverFor(dbURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://"):
		return "postgres", dbURL, nil

	case strings.HasPrefix(dbURL, "mysql://"):
		cfg, err := mysql.ParseDSN(strings.TrimPrefix(dbURL, "mysql://"))
		if err != nil {
			return "", "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		cfg.ParseTime = true
		return "mysql", cfg.FormatDSN(), nil

	case strings.HasPrefix(dbURL, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dbURL, "sqlite://"), nil

	case strings.HasPrefix(dbURL, "file:") || strings.HasSuffix(dbURL, ".db") || dbURL == ":memory:":
		return "sqlite3", dbURL, nil
	}
	return "", "", fmt.Errorf("unsupported database type for URL")
}

// Connect establishes a connection to the database named by dbURL.
func Connect(dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	driverName, dsn, err := driverFor(dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driverName == "sqlite3" {
		// A single connection keeps :memory: databases alive and serializes writers.
		conn.SetMaxOpenConns(1)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn, dbType: driverName}, nil
}

// Type returns the driver name in use.
func (db *DB) Type() string {
	return db.dbType
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateTables creates the necessary database tables
func (db *DB) CreateTables(ctx context.Context) error {
	var queries []string

	switch db.dbType {
	case "postgres":
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				last_login TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS playthroughs (
				id VARCHAR(36) PRIMARY KEY,
				user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
				variant VARCHAR(20) NOT NULL,
				score INTEGER NOT NULL,
				cleared_lines INTEGER NOT NULL,
				game_level INTEGER NOT NULL,
				reason VARCHAR(20) NOT NULL,
				data JSONB NOT NULL,
				started_at TIMESTAMP NOT NULL,
				ended_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_playthroughs_ended ON playthroughs(ended_at DESC)`,
		}
	case "mysql":
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_login DATETIME NULL
			)`,
			`CREATE TABLE IF NOT EXISTS playthroughs (
				id VARCHAR(36) PRIMARY KEY,
				user_id INT,
				variant VARCHAR(20) NOT NULL,
				score INT NOT NULL,
				cleared_lines INT NOT NULL,
				game_level INT NOT NULL,
				reason VARCHAR(20) NOT NULL,
				data JSON NOT NULL,
				started_at DATETIME NOT NULL,
				ended_at DATETIME NOT NULL,
				INDEX idx_playthroughs_ended (ended_at),
				FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
			)`,
		}
	default:
		// SQLite table creation (for local development)
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_login DATETIME
			)`,
			`CREATE TABLE IF NOT EXISTS playthroughs (
				id TEXT PRIMARY KEY,
				user_id INTEGER,
				variant TEXT NOT NULL,
				score INTEGER NOT NULL,
				cleared_lines INTEGER NOT NULL,
				game_level INTEGER NOT NULL,
				reason TEXT NOT NULL,
				data TEXT NOT NULL,
				started_at DATETIME NOT NULL,
				ended_at DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users (id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_playthroughs_ended ON playthroughs(ended_at DESC)`,
		}
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// CreateUser creates a new user in the database
func (db *DB) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	var id int64

	if db.dbType == "postgres" {
		err := db.conn.QueryRowContext(ctx,
			"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id",
			username, email, passwordHash,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		result, err := db.conn.ExecContext(ctx,
			"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
			username, email, passwordHash,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get user ID: %w", err)
		}
	}

	return &User{
		ID:        int(id),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}, nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, string, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, last_login
		FROM users WHERE username = ?
	`

	var user User
	var passwordHash string
	var lastLogin sql.NullTime
	err := db.conn.QueryRowContext(ctx, db.rebind(query), username).Scan(
		&user.ID, &user.Username, &user.Email, &passwordHash,
		&user.CreatedAt, &lastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return &user, passwordHash, nil
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(ctx context.Context, userID int) error {
	_, err := db.conn.ExecContext(ctx, db.rebind("UPDATE users SET last_login = ? WHERE id = ?"), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
