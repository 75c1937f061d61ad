package services

import "math"

// Level is one step of the fixed progression table.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int64  `json:"min_points"`
}

// Levels is ordered by MinPoints ascending and starts at zero.
var Levels = []Level{
	{Level: 1, Name: "Principiante", MinPoints: 0},
	{Level: 2, Name: "Constante", MinPoints: 100},
	{Level: 3, Name: "Comprometido", MinPoints: 300},
	{Level: 4, Name: "Atleta", MinPoints: 700},
	{Level: 5, Name: "Leyenda", MinPoints: 1500},
}

// MaxLevel is the highest reachable level.
var MaxLevel = Levels[len(Levels)-1].Level

// ChallengeMinLevel gates access to daily and weekly challenges.
const ChallengeMinLevel = 3

type LevelInfo struct {
	Level              int    `json:"level"`
	Name               string `json:"name"`
	MinPoints          int64  `json:"min_points"`
	TotalPoints        int64  `json:"total_points"`
	ProgressToNext     int    `json:"progress_to_next"` // percent, 0..100
	NextLevelThreshold *int64 `json:"next_level_threshold,omitempty"`
}

func levelIndex(total int64) int {
	for i := len(Levels) - 1; i >= 0; i-- {
		if total >= Levels[i].MinPoints {
			return i
		}
	}
	return 0
}

// LevelForPoints resolves the level for a point total. Negative totals sit at level 1.
func LevelForPoints(total int64) LevelInfo {
	idx := levelIndex(total)
	cur := Levels[idx]
	info := LevelInfo{
		Level:       cur.Level,
		Name:        cur.Name,
		MinPoints:   cur.MinPoints,
		TotalPoints: total,
	}
	if idx == len(Levels)-1 {
		info.ProgressToNext = 100
		return info
	}

	next := Levels[idx+1]
	span := float64(next.MinPoints - cur.MinPoints)
	pct := int(math.Round(100 * float64(total-cur.MinPoints) / span))
	info.ProgressToNext = min(max(pct, 0), 100)
	threshold := next.MinPoints
	info.NextLevelThreshold = &threshold
	return info
}

// ActivityContext selects which level bonus applies.
type ActivityContext string

const (
	ContextGeneric      ActivityContext = "generic"
	ContextClass        ActivityContext = "class"
	ContextBoostedClass ActivityContext = "boosted_class"
	ContextRoutine      ActivityContext = "routine"
)

var activityContexts = []ActivityContext{ContextGeneric, ContextClass, ContextBoostedClass, ContextRoutine}

// MultiplierFor returns 1 + the level bonus for an activity context.
// The multiplier is informational; ledger amounts are never scaled by it.
func MultiplierFor(level int, ctx ActivityContext) float64 {
	switch {
	case level >= 5:
		return 1.30
	case level == 4:
		return 1.20
	case level == 3 && ctx == ContextRoutine:
		return 1.10
	case level == 2 && ctx == ContextBoostedClass:
		return 1.05
	}
	return 1.0
}

func MultipliersFor(level int) map[ActivityContext]float64 {
	out := make(map[ActivityContext]float64, len(activityContexts))
	for _, ctx := range activityContexts {
		out[ctx] = MultiplierFor(level, ctx)
	}
	return out
}
