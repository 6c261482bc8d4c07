// Package registry provides a global registry for commentary backends.
// Backends register themselves in init() functions, allowing the CLI and
// TUI to select one by name from configuration without hardcoded
// dependencies.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Commentator produces a short post-game remark for a final score.
// Implementations may block (network, simulated latency) and may fail;
// callers degrade failures to a fallback string.
type Commentator interface {
	Summarize(ctx context.Context, score int) (string, error)
}

// Options carries backend construction settings from configuration.
type Options struct {
	URL     string        // remote endpoint
	Timeout time.Duration // remote call timeout
	Latency time.Duration // simulated delay for local backends
	Seed    int64         // seed for random phrase selection
}

// BackendInfo contains metadata about a registered backend.
type BackendInfo struct {
	Name        string
	Description string
}

// Factory creates a backend instance.
type Factory func(opts Options) (Commentator, error)

type entry struct {
	factory     Factory
	description string
}

var (
	backends = make(map[string]entry)
	mu       sync.RWMutex
)

// Register adds a backend factory to the registry.
// Panics if a backend with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("registry: backend %q already registered", name))
	}

	backends[name] = entry{factory: f, description: description}
}

// List returns information about all registered backends, sorted by name.
func List() []BackendInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]BackendInfo, 0, len(backends))
	for name, e := range backends {
		result = append(result, BackendInfo{
			Name:        name,
			Description: e.description,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a backend by name.
// Returns an error if the name is not registered or the factory fails.
func Create(name string, opts Options) (Commentator, error) {
	mu.RLock()
	e, ok := backends[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown commentary backend %q", name)
	}

	c, err := e.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: create %q: %w", name, err)
	}
	return c, nil
}

// Exists checks if a backend with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := backends[name]
	return ok
}
