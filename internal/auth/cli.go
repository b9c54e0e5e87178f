package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/isaacjstriker/ninetris/internal/database"
	"github.com/isaacjstriker/ninetris/internal/types"
	"github.com/isaacjstriker/ninetris/ui"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CLIAuth handles authentication through the CLI
type CLIAuth struct {
	db      *database.DB
	session *SessionManager
}

// NewCLIAuth creates a CLI authentication handler storing its session in sessionFile.
func NewCLIAuth(db *database.DB, sessionFile string) *CLIAuth {
	return &CLIAuth{
		db:      db,
		session: NewSessionManager(sessionFile),
	}
}

func (auth *CLIAuth) GetSession() *SessionManager {
	return auth.session
}

// Player returns the logged-in player, or a guest.
func (auth *CLIAuth) Player() types.Player {
	s := auth.session.GetCurrentSession()
	if s == nil {
		return types.Player{Username: "guest"}
	}
	return types.Player{UserID: s.UserID, Username: s.Username}
}

// Login prompts for credentials and stores a session on success.
func (auth *CLIAuth) Login(ctx context.Context) error {
	fmt.Println("\nLogin to Your Account")
	fmt.Println("=====================")

	username, err := ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}

	password, err := ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	user, passwordHash, err := auth.db.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !CheckPassword(password, passwordHash) {
		return ErrInvalidCredentials
	}

	if err := auth.db.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("[WARN] %v", err)
	}
	if err := auth.session.SaveSession(user.ID, user.Username, user.Email); err != nil {
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Username)
	return nil
}

// Register prompts for a new account, creates it and logs it in.
func (auth *CLIAuth) Register(ctx context.Context) error {
	fmt.Println("\nCreate New Account")
	fmt.Println("==================")

	username, err := ReadInput("Username (3-50 characters): ")
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}

	email, err := ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	password, err := ReadPassword("Password (8+ characters): ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	confirmPassword, err := ReadPassword("Confirm Password: ")
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if password != confirmPassword {
		return errors.New("passwords do not match")
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := auth.db.CreateUser(ctx, username, email, passwordHash)
	if err != nil {
		return fmt.Errorf("%w (username or email might already be taken)", err)
	}

	if err := auth.session.SaveSession(user.ID, user.Username, user.Email); err != nil {
		return err
	}

	fmt.Printf("Account created successfully! Welcome, %s!\n", user.Username)
	return nil
}

// Logout clears the stored session.
func (auth *CLIAuth) Logout() error {
	var username string
	if s := auth.session.GetCurrentSession(); s != nil {
		username = s.Username
	}

	if err := auth.session.ClearSession(); err != nil {
		return err
	}

	if username != "" {
		fmt.Printf("Goodbye, %s! You have been logged out.\n", username)
	} else {
		fmt.Println("You have been logged out.")
	}
	return nil
}

// RequireAuth offers a login before play. It returns false when the player
// chooses to continue as a guest, whose playthroughs are not archived.
func (auth *CLIAuth) RequireAuth(ctx context.Context) bool {
	if auth.session.IsLoggedIn() {
		return true
	}

	items := []ui.MenuItem{
		{Label: "Login Now", Value: "login"},
		{Label: "Create Account", Value: "register"},
		{Label: "Continue as Guest (playthrough not saved)", Value: "guest"},
	}

	menu := ui.NewMenu("Authentication", items)
	var err error
	switch menu.Show() {
	case "login":
		err = auth.Login(ctx)
	case "register":
		err = auth.Register(ctx)
	default:
		return false
	}
	if err != nil {
		fmt.Printf("%v\n", err)
	}
	return auth.session.IsLoggedIn()
}
