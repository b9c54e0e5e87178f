package games

import (
	"sort"

	"github.com/isaacjstriker/ninetris/games/tetris"
	"github.com/isaacjstriker/ninetris/internal/types"
)

// Variant describes one way of hosting the engine.
type Variant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	LockPolicy  string `json:"lock_policy"`
}

// Variants lists the hosting variants. The rules file may override their lock
// policies; the values here describe the defaults.
var Variants = []Variant{
	{
		Name:        tetris.VariantClassic,
		Description: "Keyboard play. Pieces lock the moment gravity finds them grounded.",
		Difficulty:  6,
	},
	{
		Name:        tetris.VariantTouch,
		Description: "Gesture play with a lock delay grace period after landing.",
		Difficulty:  4,
	},
	{
		Name:        tetris.VariantHybrid,
		Description: "Keyboard and on-screen buttons with lock delay.",
		Difficulty:  5,
	},
}

// GameRegistry manages all available games
type GameRegistry struct {
	games map[string]types.Game
}

// NewGameRegistry creates a new game registry
func NewGameRegistry() *GameRegistry {
	return &GameRegistry{
		games: make(map[string]types.Game),
	}
}

// NewDefaultRegistry registers a terminal game for every variant, using rules
// from rulesFile.
func NewDefaultRegistry(rulesFile string, tickRate int, archive tetris.Archive) *GameRegistry {
	gr := NewGameRegistry()
	for _, v := range Variants {
		rules := tetris.LoadRules(rulesFile, v.Name)
		gr.RegisterGame(v.Name, tetris.NewGame(v.Name, v.Description, v.Difficulty, rules, tickRate, archive))
	}
	return gr
}

// RegisterGame adds a game to the registry
func (gr *GameRegistry) RegisterGame(name string, game types.Game) {
	gr.games[name] = game
}

// GetGame returns the game registered under name if it can be played.
func (gr *GameRegistry) GetGame(name string) (types.Game, bool) {
	game, ok := gr.games[name]
	if !ok || !game.IsAvailable() {
		return nil, false
	}
	return game, true
}

// GetGameList returns the names of available games, sorted.
func (gr *GameRegistry) GetGameList() []string {
	var names []string
	for name, game := range gr.games {
		if game.IsAvailable() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// GetGameCount returns number of available games
func (gr *GameRegistry) GetGameCount() int {
	return len(gr.GetGameList())
}

// LookupVariant finds a variant by name.
func LookupVariant(name string) (Variant, bool) {
	for _, v := range Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantsWithRules returns Variants with the lock policy each one ends up
// with after loading rulesFile.
func VariantsWithRules(rulesFile string) []Variant {
	out := make([]Variant, len(Variants))
	for i, v := range Variants {
		v.LockPolicy = tetris.LoadRules(rulesFile, v.Name).LockPolicy.String()
		out[i] = v
	}
	return out
}
