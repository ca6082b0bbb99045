// Package sink persists generated samples.
package sink

import (
	"context"
	"errors"

	"github.com/krzko/tracegen/pkg/fixture"
)

// Record is a sample tagged with the producer that emitted it.
type Record struct {
	Producer string
	Sample   fixture.Sample
}

// Sink receives emitted samples. Implementations are safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// Multi writes every record to each sink in order.
type Multi []Sink

func (m Multi) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
