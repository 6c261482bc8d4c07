package agent

import (
	"strings"

	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/engine"
)

// NumFeatures is the length of the observation vector.
const NumFeatures = 11

// Feature indices. The order only has to be stable so keys hash the same
// way across runs and saved tables.
const (
	FeatDangerLeft = iota
	FeatDangerStraight
	FeatDangerRight
	FeatFacingLeft
	FeatFacingRight
	FeatFacingUp
	FeatFacingDown
	FeatFoodLeft
	FeatFoodRight
	FeatFoodUp
	FeatFoodDown
)

// Features is the binary observation of one board state.
type Features [NumFeatures]bool

// Observe builds the feature vector for a snake with the given head, body
// and facing. Danger flags apply the engine's death rule to one
// hypothetical step relative to facing. Food flags are independent, so two
// may be set at once.
func Observe(g *engine.Grid, head, food core.Coord, body engine.Snake, facing core.Direction) Features {
	var f Features

	f[FeatDangerLeft] = g.Collides(body, head.Step(facing.TurnLeft()))
	f[FeatDangerStraight] = g.Collides(body, head.Step(facing))
	f[FeatDangerRight] = g.Collides(body, head.Step(facing.TurnRight()))

	f[FeatFacingLeft] = facing == core.DirLeft
	f[FeatFacingRight] = facing == core.DirRight
	f[FeatFacingUp] = facing == core.DirUp
	f[FeatFacingDown] = facing == core.DirDown

	f[FeatFoodLeft] = food.X < head.X
	f[FeatFoodRight] = food.X > head.X
	f[FeatFoodUp] = food.Y < head.Y
	f[FeatFoodDown] = food.Y > head.Y

	return f
}

// Key concatenates the features into a table key.
func (f Features) Key() StateKey {
	var sb strings.Builder
	sb.Grow(NumFeatures)
	for _, on := range f {
		if on {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return StateKey(sb.String())
}

// Encode is Observe followed by Key.
func Encode(g *engine.Grid, head, food core.Coord, body engine.Snake, facing core.Direction) StateKey {
	return Observe(g, head, food, body, facing).Key()
}
