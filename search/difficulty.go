package search

import (
	"time"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// Difficulty bundles the search budget and heuristic configuration for
// one bot. It controls how much work the bot does, never move quality
// directly.
type Difficulty struct {
	Name string

	// Search budget: the loop stops on whichever cap fires first. Time is
	// checked only between full iterations.
	Iterations int
	TimeBudget time.Duration

	RolloutDepth int
	Exploration  float64

	// ConfidenceThreshold is the memory confidence a belief needs before
	// the snapshot treats the position as known.
	ConfidenceThreshold float64

	Tunables engine.Tunables
}

// Easy returns a shallow, fast profile.
func Easy() Difficulty {
	return Difficulty{
		Name:                "easy",
		Iterations:          200,
		TimeBudget:          50 * time.Millisecond,
		RolloutDepth:        10,
		Exploration:         1.6,
		ConfidenceThreshold: 0.9,
		Tunables:            engine.DefaultTunables(),
	}
}

// Medium returns the default profile.
func Medium() Difficulty {
	return Difficulty{
		Name:                "medium",
		Iterations:          1000,
		TimeBudget:          250 * time.Millisecond,
		RolloutDepth:        20,
		Exploration:         1.414,
		ConfidenceThreshold: 0.7,
		Tunables:            engine.DefaultTunables(),
	}
}

// Hard returns the deepest profile.
func Hard() Difficulty {
	return Difficulty{
		Name:                "hard",
		Iterations:          5000,
		TimeBudget:          time.Second,
		RolloutDepth:        30,
		Exploration:         1.2,
		ConfidenceThreshold: 0.5,
		Tunables:            engine.DefaultTunables(),
	}
}

// ByName resolves a named preset, defaulting to Medium.
func ByName(name string) Difficulty {
	switch name {
	case "easy":
		return Easy()
	case "hard":
		return Hard()
	default:
		return Medium()
	}
}
