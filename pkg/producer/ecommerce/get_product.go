package ecommerce

import (
	"fmt"

	"github.com/krzko/tracegen/pkg/fixture"
	"github.com/krzko/tracegen/pkg/producer"
)

const (
	GetProductName        = "ecommerce/get_product"
	GetProductProbability = 0.9
)

// GetProduct is a benign product lookup used as the unlabeled baseline.
type GetProduct struct {
	producer.Base
	faker        Faker
	sources      []string
	destinations []string
}

func NewGetProduct(f Faker, probability float64) (*GetProduct, error) {
	base, err := producer.NewBase(GetProductName, probability, f)
	if err != nil {
		return nil, err
	}
	if err := fixture.ValidatePools(Sources, Destinations); err != nil {
		return nil, fmt.Errorf("producer %s: %w", GetProductName, err)
	}
	return &GetProduct{
		Base:         base,
		faker:        f,
		sources:      Sources,
		destinations: Destinations,
	}, nil
}

func (p *GetProduct) GetDataPoint() (fixture.Sample, error) {
	l, err := newLookup(p.faker)
	if err != nil {
		return fixture.Sample{}, err
	}
	resp, err := l.success()
	if err != nil {
		return fixture.Sample{}, err
	}
	return fixture.Sample{
		Request:  l.request(nil),
		Response: resp,
		Meta:     fixture.NewMeta(p.sources, p.destinations, p.faker),
	}, nil
}
