// Package producer defines the contract for probability-gated generators of
// labeled traffic samples.
package producer

import (
	"errors"
	"fmt"
	"math"

	"github.com/krzko/tracegen/pkg/fixture"
)

// ErrInvalidProbability is returned when an emission probability is NaN or
// outside [0, 1].
var ErrInvalidProbability = errors.New("emission probability must be within [0, 1]")

// Rand is the source of emission draws.
type Rand interface {
	Float64() float64
}

// Producer realizes one scenario as labeled samples.
type Producer interface {
	// Name identifies the scenario, e.g. "ecommerce/get_product_xss".
	Name() string
	// Probability is the chance a single Attempt emits a sample.
	Probability() float64
	// ShouldEmit performs one emission draw.
	ShouldEmit() bool
	// GetDataPoint builds one fully formed sample.
	GetDataPoint() (fixture.Sample, error)
}

// Result is the outcome of an Attempt. A zero Result means no sample was emitted.
type Result struct {
	Sample  fixture.Sample
	Emitted bool
}

// Skipped is the Result of an attempt whose draw did not pass the threshold.
func Skipped() Result {
	return Result{}
}

// Emitted wraps a sample in a Result.
func Emitted(s fixture.Sample) Result {
	return Result{Sample: s, Emitted: true}
}

// Attempt rolls the producer's emission probability and, on success, builds
// a sample. Skipping is not an error; errors only come from GetDataPoint.
func Attempt(p Producer) (Result, error) {
	if !p.ShouldEmit() {
		return Skipped(), nil
	}
	s, err := p.GetDataPoint()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", p.Name(), err)
	}
	return Emitted(s), nil
}

// ValidateProbability reports whether p is a usable emission probability.
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%v: %w", p, ErrInvalidProbability)
	}
	return nil
}

// Base carries the name and emission policy shared by every scenario.
// Scenario types embed it and add GetDataPoint.
type Base struct {
	name        string
	probability float64
	rand        Rand
}

// NewBase validates the probability and returns the shared producer state.
func NewBase(name string, probability float64, r Rand) (Base, error) {
	if err := ValidateProbability(probability); err != nil {
		return Base{}, fmt.Errorf("producer %s: %w", name, err)
	}
	return Base{
		name:        name,
		probability: probability,
		rand:        r,
	}, nil
}

func (b Base) Name() string {
	return b.name
}

func (b Base) Probability() float64 {
	return b.probability
}

// ShouldEmit draws u in [0, 1) and emits when u < probability, so 0 never
// emits and 1 always does.
func (b Base) ShouldEmit() bool {
	return b.rand.Float64() < b.probability
}
