// Package commentary provides post-game commentary backends: a local phrase
// table, a remote HTTP client, and an HTTP handler that serves either one.
package commentary

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Score thresholds for the phrase pools.
const (
	MediumScore = 5
	HighScore   = 15
)

var (
	lowPhrases = []string{
		"Glitch in the matrix? That was terrible.",
		"My grandmother processes faster than you.",
		"Insert coin... oh wait, you have no skill.",
		"System error: User competence not found.",
		"Try opening your eyes next time.",
	}
	mediumPhrases = []string{
		"Acceptable. For a biological entity.",
		"System optimization required. Keep practicing.",
		"Not completely embarrassing.",
		"You survived. Barely.",
		"Mediocrity achieved. Congratulations.",
	}
	highPhrases = []string{
		"System overload! High score detected.",
		"You are worthy of the neon realm.",
		"Don't let the pixels go to your head.",
		"Impressive efficiency.",
		"You have synced with the machine.",
	}
)

// Pool returns the phrase pool for a score.
func Pool(score int) []string {
	switch {
	case score < MediumScore:
		return lowPhrases
	case score < HighScore:
		return mediumPhrases
	default:
		return highPhrases
	}
}

// Phrases picks a random line from the pool matching the score.
// Safe for concurrent use.
type Phrases struct {
	mu      sync.Mutex
	rng     *rand.Rand
	latency time.Duration
}

// NewPhrases creates a phrase-table backend. latency simulates a thinking
// delay before each answer.
func NewPhrases(seed int64, latency time.Duration) *Phrases {
	return &Phrases{
		rng:     rand.New(rand.NewSource(seed)),
		latency: latency,
	}
}

// Summarize implements registry.Commentator.
func (p *Phrases) Summarize(ctx context.Context, score int) (string, error) {
	if p.latency > 0 {
		timer := time.NewTimer(p.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	pool := Pool(score)

	p.mu.Lock()
	i := p.rng.Intn(len(pool))
	p.mu.Unlock()

	return pool[i], nil
}
