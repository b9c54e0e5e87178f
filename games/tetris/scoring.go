package tetris

import "time"

// lineScores is indexed by the number of rows cleared by a single lock.
var lineScores = [5]int{0, 100, 300, 500, 800}

const (
	SoftDropPoints = 1
	HardDropPoints = 2
	LinesPerLevel  = 10
)

// LineClearScore returns the points for clearing n rows at the given level.
func LineClearScore(n, level int) int {
	if n < 0 || n >= len(lineScores) {
		return 0
	}
	return lineScores[n] * max(1, level)
}

// LevelForLines derives the level from the total number of cleared lines.
func LevelForLines(lines int) int {
	return 1 + lines/LinesPerLevel
}

// GravityInterval is the time between automatic one-row drops at a level.
func (r Rules) GravityInterval(level int) time.Duration {
	interval := r.BaseInterval - time.Duration(level-1)*r.IntervalStep
	if interval < r.MinInterval {
		interval = r.MinInterval
	}
	return interval
}
