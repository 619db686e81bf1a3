// Package registry provides a global registry for autopilot driver factories.
// Drivers register themselves in init() functions, allowing the CLI to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

// Options carries everything a factory may need to build a driver.
// Each driver reads only the fields relevant to it.
type Options struct {
	Bounds        core.Bounds
	Start         core.Position
	Direction     core.Direction
	Seed          int64
	InitialLength int

	URL     string        // Base URL of a remote game
	Timeout time.Duration // Per-request timeout for remote drivers

	Logger *log.Logger
}

// DriverInfo contains metadata about a registered driver.
type DriverInfo struct {
	ID    string
	Title string
}

// Factory creates a new driver.
type Factory func(opts Options) (autopilot.Driver, error)

type entry struct {
	title   string
	factory Factory
}

var (
	drivers = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a driver factory to the registry.
// Typically called from a driver package's init() function.
// Panics if a driver with the same ID is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := drivers[id]; exists {
		panic(fmt.Sprintf("registry: driver %q already registered", id))
	}
	drivers[id] = entry{title: title, factory: f}
}

// List returns information about all registered drivers, sorted by ID.
func List() []DriverInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]DriverInfo, 0, len(drivers))
	for id, e := range drivers {
		result = append(result, DriverInfo{ID: id, Title: e.title})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a driver by its ID.
// Returns an error if the ID is not registered or the factory fails.
func Create(id string, opts Options) (autopilot.Driver, error) {
	mu.RLock()
	e, ok := drivers[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown driver %q", id)
	}

	d, err := e.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: cannot create driver %q: %w", id, err)
	}
	return d, nil
}

// Exists checks if a driver with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := drivers[id]
	return ok
}
