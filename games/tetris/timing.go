package tetris

import (
	"fmt"
	"time"
)

// LockPolicy selects how a grounded piece becomes part of the grid.
type LockPolicy int

const (
	// LockImmediate locks a piece the first time gravity finds it blocked.
	LockImmediate LockPolicy = iota
	// LockDelayed gives a grounded piece a grace period that restarts on every
	// successful move or rotation.
	LockDelayed
)

func (p LockPolicy) String() string {
	switch p {
	case LockImmediate:
		return "immediate"
	case LockDelayed:
		return "delayed"
	}
	return fmt.Sprintf("LockPolicy(%d)", int(p))
}

// ParseLockPolicy accepts the names produced by String.
func ParseLockPolicy(s string) (LockPolicy, error) {
	switch s {
	case "immediate":
		return LockImmediate, nil
	case "delayed":
		return LockDelayed, nil
	}
	return LockImmediate, fmt.Errorf("unknown lock policy %q", s)
}

type tickAction int

const (
	actNone tickAction = iota
	actDescend
	actLock
)

// lockTimer accumulates gravity and lock-delay time for the falling piece.
type lockTimer struct {
	policy    LockPolicy
	lockDelay time.Duration

	gravity time.Duration
	grace   time.Duration
}

func (t *lockTimer) reset() {
	t.gravity = 0
	t.grace = 0
}

// touched restarts the grace period after a successful move or rotation.
func (t *lockTimer) touched(grounded bool) {
	if t.policy == LockDelayed && grounded {
		t.grace = 0
	}
}

// step advances the timers by dt and decides what the tick does to the piece.
func (t *lockTimer) step(dt, interval time.Duration, grounded bool) tickAction {
	t.gravity += dt

	if t.policy == LockImmediate {
		if t.gravity > interval {
			t.gravity = 0
			if grounded {
				return actLock
			}
			return actDescend
		}
		return actNone
	}

	if grounded {
		t.grace += dt
		if t.grace > t.lockDelay {
			t.reset()
			return actLock
		}
	} else {
		t.grace = 0
	}

	if t.gravity > interval {
		t.gravity = 0
		if !grounded {
			return actDescend
		}
	}
	return actNone
}
