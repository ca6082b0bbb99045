package ecommerce

import (
	"fmt"

	"github.com/krzko/tracegen/pkg/fixture"
	"github.com/krzko/tracegen/pkg/producer"
)

const (
	GetProductXSSName        = "ecommerce/get_product_xss"
	GetProductXSSProbability = 0.1
)

// GetProductXSS models a reflected XSS payload sent to the product lookup
// endpoint and answered with a successful lookup.
type GetProductXSS struct {
	producer.Base
	faker        Faker
	sources      []string
	destinations []string
}

func NewGetProductXSS(f Faker, probability float64) (*GetProductXSS, error) {
	base, err := producer.NewBase(GetProductXSSName, probability, f)
	if err != nil {
		return nil, err
	}
	if err := fixture.ValidatePools(AttackSources, Destinations); err != nil {
		return nil, fmt.Errorf("producer %s: %w", GetProductXSSName, err)
	}
	return &GetProductXSS{
		Base:         base,
		faker:        f,
		sources:      AttackSources,
		destinations: Destinations,
	}, nil
}

func (p *GetProductXSS) GetDataPoint() (fixture.Sample, error) {
	l, err := newLookup(p.faker)
	if err != nil {
		return fixture.Sample{}, err
	}
	resp, err := l.success()
	if err != nil {
		return fixture.Sample{}, err
	}
	return fixture.Sample{
		Request:  l.request(xssParams()),
		Response: resp,
		Meta:     fixture.NewMeta(p.sources, p.destinations, p.faker),
	}, nil
}
