package tetris

import (
	"log"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Variant names for the three ways the engine is hosted.
const (
	VariantClassic = "classic"
	VariantTouch   = "touch"
	VariantHybrid  = "hybrid"
)

// DefaultRulesFile is read by LoadRules when no path is configured.
const DefaultRulesFile = "games/tetris/rules.lua"

// Rules holds the tunables of a session.
type Rules struct {
	Rows, Cols   int
	BaseInterval time.Duration
	MinInterval  time.Duration
	IntervalStep time.Duration
	LockPolicy   LockPolicy
	LockDelay    time.Duration
	// SpawnRow is the origin row of new pieces. Pieces spawned above the
	// board cannot block out.
	SpawnRow int
}

// DefaultRules returns the built-in rules for a variant. The keyboard-only
// classic variant locks immediately; the touch-oriented ones use lock delay.
func DefaultRules(variant string) Rules {
	r := Rules{
		Rows:         BoardHeight,
		Cols:         BoardWidth,
		BaseInterval: 800 * time.Millisecond,
		MinInterval:  80 * time.Millisecond,
		IntervalStep: 60 * time.Millisecond,
		LockPolicy:   LockImmediate,
		LockDelay:    450 * time.Millisecond,
		SpawnRow:     SpawnY,
	}
	if variant == VariantTouch || variant == VariantHybrid {
		r.LockPolicy = LockDelayed
	}
	return r
}

// LoadRules reads the rules for variant from a Lua script returning a table
// shaped like rules.lua. Anything missing or unreadable keeps its default.
func LoadRules(path, variant string) Rules {
	rules := DefaultRules(variant)
	if path == "" {
		path = DefaultRulesFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("[INFO] %s not found, using default rules", path)
		return rules
	}

	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		log.Printf("[WARN] Error loading %s: %v. Using default rules.", path, err)
		return rules
	}

	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		log.Printf("[WARN] %s did not return a table, using default rules", path)
		return rules
	}
	applyRulesTable(&rules, tbl)

	if variants, ok := tbl.RawGetString("variants").(*lua.LTable); ok {
		if v, ok := variants.RawGetString(variant).(*lua.LTable); ok {
			applyRulesTable(&rules, v)
		}
	}

	if rules.Rows <= 0 || rules.Cols < 4 {
		def := DefaultRules(variant)
		log.Printf("[WARN] %s: invalid board %dx%d, using %dx%d", path, rules.Rows, rules.Cols, def.Rows, def.Cols)
		rules.Rows, rules.Cols = def.Rows, def.Cols
	}
	return rules
}

// applyRulesTable overlays the keys present in tbl onto r.
func applyRulesTable(r *Rules, tbl *lua.LTable) {
	if board, ok := tbl.RawGetString("board").(*lua.LTable); ok {
		r.Rows = getLuaInt(board, "rows", r.Rows)
		r.Cols = getLuaInt(board, "cols", r.Cols)
	}
	if gravity, ok := tbl.RawGetString("gravity").(*lua.LTable); ok {
		r.BaseInterval = getLuaMillis(gravity, "base_ms", r.BaseInterval)
		r.MinInterval = getLuaMillis(gravity, "min_ms", r.MinInterval)
		r.IntervalStep = getLuaMillis(gravity, "step_ms", r.IntervalStep)
	}
	r.LockDelay = getLuaMillis(tbl, "lock_delay_ms", r.LockDelay)
	r.SpawnRow = getLuaInt(tbl, "spawn_row", r.SpawnRow)

	if s, ok := tbl.RawGetString("lock_policy").(lua.LString); ok {
		if p, err := ParseLockPolicy(string(s)); err == nil {
			r.LockPolicy = p
		} else {
			log.Printf("[WARN] %v, keeping %s", err, r.LockPolicy)
		}
	}
}

// Helper functions to safely get values from a Lua table
func getLuaInt(tbl *lua.LTable, key string, fallback int) int {
	val := tbl.RawGetString(key)
	if num, ok := val.(lua.LNumber); ok {
		return int(num)
	}
	return fallback
}

func getLuaMillis(tbl *lua.LTable, key string, fallback time.Duration) time.Duration {
	val := tbl.RawGetString(key)
	if num, ok := val.(lua.LNumber); ok {
		return time.Duration(float64(num) * float64(time.Millisecond))
	}
	return fallback
}
