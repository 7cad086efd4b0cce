package contour

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
)

// ErrUnknownSource is returned by NewSource for an unregistered name.
var ErrUnknownSource = errors.New("contour: unknown source")

// DefaultSource names the contour source used when none is configured.
const DefaultSource = "trace"

// Source extracts the external boundaries of the foreground regions of a
// binary mask. Implementations must not retain or modify the mask.
type Source interface {
	Extract(mask *image.Gray) ([]Contour, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Source{
		DefaultSource: func() Source { return Tracer{} },
	}
)

// Register makes a contour source available by name. Sources built behind
// build tags register themselves from init.
func Register(name string, factory func() Source) {
	registryMu.Lock()
	registry[name] = factory
	registryMu.Unlock()
}

// NewSource returns the named contour source. An empty name selects
// DefaultSource.
func NewSource(name string) (Source, error) {
	if name == "" {
		name = DefaultSource
	}
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownSource, name, Sources())
	}
	return factory(), nil
}

// Sources lists the registered source names in sorted order.
func Sources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
