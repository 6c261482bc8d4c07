// Package agent implements a tabular Q-learning player for the snake grid.
//
// Each tick the agent encodes the board into an 11-feature state key,
// picks a move epsilon-greedily over its value table, simulates the move on
// the engine, scores it, and applies a one-step Bellman update to the value
// of the (state, move) pair it just took.
package agent

import (
	"math/rand"

	"github.com/vovakirdan/neonsnake/internal/core"
	"github.com/vovakirdan/neonsnake/internal/engine"
)

// Rewards holds the per-tick reward schedule.
type Rewards struct {
	Death  float64 // terminal penalty
	Food   float64 // eating
	Closer float64 // Manhattan distance to food strictly decreased
	Away   float64 // anything else
}

// Reward scores one move from the head-to-food distances before and after it.
func (r Rewards) Reward(oldDist, newDist int, died, ate bool) float64 {
	switch {
	case died:
		return r.Death
	case ate:
		return r.Food
	case newDist < oldDist:
		return r.Closer
	default:
		return r.Away
	}
}

// Params are the learning hyperparameters.
type Params struct {
	Alpha         float64 // learning rate
	Gamma         float64 // discount
	EpsilonStart  float64 // exploration rate with a fresh table
	EpsilonResume float64 // exploration rate when a saved table was loaded
	EpsilonDecay  float64 // multiplier applied after each death
	EpsilonFloor  float64 // decay stops once epsilon is at or below this
	Rewards       Rewards
}

// DefaultParams returns the standard hyperparameters.
func DefaultParams() Params {
	return Params{
		Alpha:         0.1,
		Gamma:         0.9,
		EpsilonStart:  1.0,
		EpsilonResume: 0.1,
		EpsilonDecay:  0.995,
		EpsilonFloor:  0.01,
		Rewards: Rewards{
			Death:  -100,
			Food:   10,
			Closer: 1,
			Away:   -2,
		},
	}
}

// Agent is an epsilon-greedy Q-learner. It is not safe for concurrent use;
// the controller drives it from a single tick loop.
type Agent struct {
	params  Params
	table   *Table
	rng     *rand.Rand
	epsilon float64
}

// New creates an agent. A nil table starts fresh with full exploration;
// a loaded table resumes with EpsilonResume.
func New(params Params, table *Table, rng *rand.Rand) *Agent {
	a := &Agent{
		params: params,
		table:  table,
		rng:    rng,
	}
	if table == nil {
		a.table = NewTable()
		a.epsilon = params.EpsilonStart
	} else {
		a.epsilon = params.EpsilonResume
	}
	return a
}

// Table returns the live value table.
func (a *Agent) Table() *Table {
	return a.table
}

// Params returns the hyperparameters.
func (a *Agent) Params() Params {
	return a.params
}

// Epsilon returns the current exploration rate.
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// SetEpsilon overrides the exploration rate, clamped to [0,1].
func (a *Agent) SetEpsilon(eps float64) {
	switch {
	case eps < 0:
		eps = 0
	case eps > 1:
		eps = 1
	}
	a.epsilon = eps
}

// DecayEpsilon applies one step of the exploration schedule.
// Once epsilon is at or below the floor it no longer changes.
func (a *Agent) DecayEpsilon() {
	if a.epsilon > a.params.EpsilonFloor {
		a.epsilon *= a.params.EpsilonDecay
	}
}

// ValidMoves lists every heading except the reversal of facing, in
// clockwise order.
func ValidMoves(facing core.Direction) []core.Direction {
	moves := make([]core.Direction, 0, len(core.Directions)-1)
	for _, d := range core.Directions {
		if d != facing.Opposite() {
			moves = append(moves, d)
		}
	}
	return moves
}

// ChooseAction picks a move for key among valid. With probability epsilon the
// pick is uniform; otherwise it is the highest-valued move, with ties broken
// uniformly at random by reservoir sampling over the tied moves.
func (a *Agent) ChooseAction(key StateKey, valid []core.Direction) core.Direction {
	if len(valid) == 0 {
		panic("agent: no valid moves")
	}

	if a.rng.Float64() < a.epsilon {
		return valid[a.rng.Intn(len(valid))]
	}

	best := valid[0]
	bestValue := a.table.Get(key, best)
	ties := 1
	for _, d := range valid[1:] {
		v := a.table.Get(key, d)
		switch {
		case v > bestValue:
			best, bestValue, ties = d, v, 1
		case v == bestValue:
			ties++
			if a.rng.Intn(ties) == 0 {
				best = d
			}
		}
	}
	return best
}

// Update applies the one-step Q-learning rule to (stateOld, action) and
// returns the new value. Terminal transitions have no future value.
func (a *Agent) Update(stateOld StateKey, action core.Direction, reward float64, stateNew StateKey, died bool) float64 {
	oldQ := a.table.Get(stateOld, action)

	maxFutureQ := 0.0
	if !died {
		maxFutureQ = a.table.MaxValue(stateNew)
	}

	newQ := oldQ + a.params.Alpha*(reward+a.params.Gamma*maxFutureQ-oldQ)
	a.table.Set(stateOld, action, newQ)
	return newQ
}

// Transition records one full agent cycle.
type Transition struct {
	StateOld StateKey
	StateNew StateKey
	Action   core.Direction
	Reward   float64
	Outcome  engine.Outcome
}

// Act runs encode -> choose -> simulate -> reward -> update for one tick.
// It does not commit anything: the caller owns the snake and food and
// applies Outcome. On death stateNew is encoded from the unmodified body.
func (a *Agent) Act(g *engine.Grid, snake engine.Snake, facing core.Direction, food core.Coord) Transition {
	head := snake.Head()
	stateOld := Encode(g, head, food, snake, facing)

	action := a.ChooseAction(stateOld, ValidMoves(facing))
	out := g.Step(snake, action, food)

	newHead := out.Snake.Head()
	reward := a.params.Rewards.Reward(head.Manhattan(food), newHead.Manhattan(food), out.Died, out.Ate)

	newFacing := action
	if out.Died {
		newFacing = facing
	}
	stateNew := Encode(g, newHead, food, out.Snake, newFacing)

	a.Update(stateOld, action, reward, stateNew, out.Died)

	return Transition{
		StateOld: stateOld,
		StateNew: stateNew,
		Action:   action,
		Reward:   reward,
		Outcome:  out,
	}
}
