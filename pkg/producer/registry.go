package producer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrUnknownProducer is returned when an override names a producer that is not registered.
var ErrUnknownProducer = errors.New("unknown producer")

// Factory builds a producer with the given emission probability.
type Factory func(probability float64) (Producer, error)

type registration struct {
	probability float64
	factory     Factory
}

// Registry maps scenario names to their default probability and constructor.
type Registry struct {
	entries map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
	}
}

// Register adds a scenario. Registering the same name twice replaces the earlier entry.
func (r *Registry) Register(name string, defaultProbability float64, factory Factory) {
	r.entries[name] = registration{
		probability: defaultProbability,
		factory:     factory,
	}
}

// Names returns the registered scenario names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates every producer whose name matches the doublestar pattern,
// applying probability overrides. Overrides for unregistered names and
// invalid probabilities fail before any producer runs.
func (r *Registry) Build(pattern string, overrides map[string]float64) ([]Producer, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid producer pattern %q", pattern)
	}

	for name := range overrides {
		if _, ok := r.entries[name]; !ok {
			return nil, fmt.Errorf("override %q: %w", name, ErrUnknownProducer)
		}
	}

	var producers []Producer
	for _, name := range r.Names() {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, fmt.Errorf("match producer %q: %w", name, err)
		}
		if !ok {
			continue
		}

		entry := r.entries[name]
		probability := entry.probability
		if p, ok := overrides[name]; ok {
			probability = p
		}

		p, err := entry.factory(probability)
		if err != nil {
			return nil, fmt.Errorf("build producer %q: %w", name, err)
		}
		producers = append(producers, p)
	}

	if len(producers) == 0 {
		return nil, fmt.Errorf("no producers match %q: %w", pattern, ErrUnknownProducer)
	}
	return producers, nil
}
