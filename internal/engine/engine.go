// Package engine implements the grid simulation: snake movement, wall and
// self collision, growth and food placement. It holds no episode state; the
// caller owns the snake and food and commits whatever Step returns.
package engine

import (
	"math/rand"

	"github.com/vovakirdan/neonsnake/internal/core"
)

// DefaultSize is the side length of the default square board.
const DefaultSize = 20

// DefaultFoodAttempts bounds rejection sampling in PlaceFood.
const DefaultFoodAttempts = 100

// Snake is the ordered body, head at index 0.
type Snake []core.Coord

// Head returns the first segment.
func (s Snake) Head() core.Coord {
	return s[0]
}

// Occupies reports whether any segment sits on c.
func (s Snake) Occupies(c core.Coord) bool {
	for _, seg := range s {
		if seg == c {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the body.
func (s Snake) Clone() Snake {
	out := make(Snake, len(s))
	copy(out, s)
	return out
}

// Outcome is the result of one simulated move.
type Outcome struct {
	Snake Snake
	Died  bool
	Ate   bool
}

// Grid is a square board of side Size.
type Grid struct {
	size         int
	foodAttempts int
	rng          *rand.Rand
}

// New creates a grid of the given side length. The rng drives food placement.
func New(size int, rng *rand.Rand) *Grid {
	if size <= 0 {
		size = DefaultSize
	}
	return &Grid{
		size:         size,
		foodAttempts: DefaultFoodAttempts,
		rng:          rng,
	}
}

// SetFoodAttempts overrides the rejection-sampling budget of PlaceFood.
func (g *Grid) SetFoodAttempts(n int) {
	if n > 0 {
		g.foodAttempts = n
	}
}

// Size returns the side length.
func (g *Grid) Size() int {
	return g.size
}

// Center returns the middle cell, used as the spawn point.
func (g *Grid) Center() core.Coord {
	return core.Coord{X: g.size / 2, Y: g.size / 2}
}

// InBounds reports whether c lies on the board.
func (g *Grid) InBounds(c core.Coord) bool {
	return c.InSquare(g.size)
}

// Collides applies the death rule to a single cell: off the board, or on any
// segment of the current body. The tail counts even though it would move.
func (g *Grid) Collides(snake Snake, c core.Coord) bool {
	return !g.InBounds(c) || snake.Occupies(c)
}

// Step moves the snake one cell in dir.
// On death the previous snake is returned untouched.
func (g *Grid) Step(snake Snake, dir core.Direction, food core.Coord) Outcome {
	if len(snake) == 0 {
		panic("engine: step on empty snake")
	}

	newHead := snake.Head().Step(dir)

	// Check wall and self collision against the pre-move body
	if g.Collides(snake, newHead) {
		return Outcome{Snake: snake, Died: true}
	}

	// Move snake: add new head
	next := make(Snake, 0, len(snake)+1)
	next = append(next, newHead)
	next = append(next, snake...)

	if newHead == food {
		return Outcome{Snake: next, Ate: true}
	}

	// Remove tail
	return Outcome{Snake: next[:len(next)-1]}
}

// PlaceFood picks a uniformly random free cell. After the attempt budget is
// spent it falls back to (0,0) so placement always terminates.
func (g *Grid) PlaceFood(snake Snake) core.Coord {
	for range g.foodAttempts {
		c := core.Coord{X: g.rng.Intn(g.size), Y: g.rng.Intn(g.size)}
		if !snake.Occupies(c) {
			return c
		}
	}
	return core.Coord{}
}
