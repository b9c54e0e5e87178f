package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/isaacjstriker/ninetris/games"
	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/api"
	"github.com/isaacjstriker/ninetris/internal/auth"
	"github.com/isaacjstriker/ninetris/internal/config"
	"github.com/isaacjstriker/ninetris/internal/database"
	"github.com/isaacjstriker/ninetris/ui"
)

const usage = `Usage: ninetris <command> [args]

Commands:
  play [variant]        play in the terminal (classic, touch, hybrid)
  serve                 run the HTTP and WebSocket server
  replay <file.yaml>    replay an exported playthrough and verify its score
  export <id> <file>    export an archived playthrough as YAML
  variants              list the variants and their lock policies
  register              create an account
  login                 log in so playthroughs are archived
  logout                forget the stored login
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "variants":
		for _, v := range games.VariantsWithRules(cfg.RulesFile) {
			fmt.Printf("%-8s lock=%-9s difficulty=%d  %s\n", v.Name, v.LockPolicy, v.Difficulty, v.Description)
		}
		return nil

	case "replay":
		if len(args) != 1 {
			return fmt.Errorf("replay needs a playthrough file")
		}
		return replayFile(args[0])
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	switch cmd {
	case "play":
		return play(ctx, cfg, db, args)

	case "serve":
		server := api.NewAPIServer(cfg.ListenAddr(), db, cfg)
		return server.Start(ctx)

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("export needs a playthrough id and an output file")
		}
		return exportPlaythrough(ctx, db, args[0], args[1])

	case "register":
		return auth.NewCLIAuth(db, cfg.SessionFile).Register(ctx)

	case "login":
		return auth.NewCLIAuth(db, cfg.SessionFile).Login(ctx)

	case "logout":
		return auth.NewCLIAuth(db, cfg.SessionFile).Logout()
	}

	fmt.Print(usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.CreateTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if cfg.Debug {
		if err := db.CreateTestData(ctx); err != nil {
			log.Printf("[WARN] Failed to create test data: %v", err)
		}
	}
	return db, nil
}

func play(ctx context.Context, cfg *config.Config, db *database.DB, args []string) error {
	if !cfg.Debug {
		log.SetOutput(discardUnlessWarn{})
	}
	registry := games.NewDefaultRegistry(cfg.RulesFile, cfg.TickRate, db)

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		var items []ui.MenuItem
		for _, n := range registry.GetGameList() {
			v, _ := games.LookupVariant(n)
			items = append(items, ui.MenuItem{Label: fmt.Sprintf("%s - %s", n, v.Description), Value: n})
		}
		name = ui.NewMenu(cfg.AppName, items).Show()
		if name == "exit" || name == "" {
			return nil
		}
	}

	game, ok := registry.GetGame(name)
	if !ok {
		return fmt.Errorf("unknown variant %q (try: %s)", name, strings.Join(registry.GetGameList(), ", "))
	}

	cli := auth.NewCLIAuth(db, cfg.SessionFile)
	cli.RequireAuth(ctx)

	result := game.Play(ctx, cli.Player())
	if result == nil {
		return fmt.Errorf("game could not start")
	}
	fmt.Printf("\nFinal score: %d (lines %v, level %v) in %.0fs\n",
		result.Score, result.Metadata["lines"], result.Metadata["level"], result.Duration)
	return nil
}

func replayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read playthrough: %w", err)
	}
	p, err := tetris.UnmarshalPlaythroughYAML(data)
	if err != nil {
		return err
	}

	s, err := tetris.Replay(p)
	if err != nil {
		return err
	}
	fmt.Printf("Playthrough %s (%s, seed %d): %d inputs over %d frames\n",
		p.ID, p.Variant, p.Seed, len(p.Inputs), p.Frames)
	fmt.Printf("Replayed: score %d, lines %d, level %d, %s\n", s.Score(), s.Lines(), s.Level(), s.State())

	if err := p.Verify(); err != nil {
		return err
	}
	fmt.Println("Replay matches the recorded result.")
	return nil
}

func exportPlaythrough(ctx context.Context, db *database.DB, id, path string) error {
	p, err := db.GetPlaythrough(ctx, id)
	if err != nil {
		return err
	}
	data, err := tetris.MarshalPlaythroughYAML(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Exported playthrough %s to %s\n", id, path)
	return nil
}

// discardUnlessWarn drops [INFO] and [DEBUG] lines so they do not scribble
// over the terminal board.
type discardUnlessWarn struct{}

func (discardUnlessWarn) Write(p []byte) (int, error) {
	line := string(p)
	if strings.Contains(line, "[INFO]") || strings.Contains(line, "[DEBUG]") {
		return len(p), nil
	}
	return os.Stderr.Write(p)
}
