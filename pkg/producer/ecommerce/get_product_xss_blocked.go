package ecommerce

import (
	"fmt"

	"github.com/krzko/tracegen/pkg/fixture"
	"github.com/krzko/tracegen/pkg/producer"
)

const (
	GetProductXSSBlockedName        = "ecommerce/get_product_xss_blocked"
	GetProductXSSBlockedProbability = 0.05

	blockedReason = "Request blocked: malicious input detected"
)

// GetProductXSSBlocked sends the same payload as GetProductXSS but models a
// service that rejects it.
type GetProductXSSBlocked struct {
	producer.Base
	faker        Faker
	sources      []string
	destinations []string
}

func NewGetProductXSSBlocked(f Faker, probability float64) (*GetProductXSSBlocked, error) {
	base, err := producer.NewBase(GetProductXSSBlockedName, probability, f)
	if err != nil {
		return nil, err
	}
	if err := fixture.ValidatePools(AttackSources, Destinations); err != nil {
		return nil, fmt.Errorf("producer %s: %w", GetProductXSSBlockedName, err)
	}
	return &GetProductXSSBlocked{
		Base:         base,
		faker:        f,
		sources:      AttackSources,
		destinations: Destinations,
	}, nil
}

func (p *GetProductXSSBlocked) GetDataPoint() (fixture.Sample, error) {
	id, err := p.faker.UUID()
	if err != nil {
		return fixture.Sample{}, fmt.Errorf("product id: %w", err)
	}
	resp, err := blocked(blockedReason)
	if err != nil {
		return fixture.Sample{}, err
	}
	return fixture.Sample{
		Request:  lookup{product: Product{UUID: id}}.request(xssParams()),
		Response: resp,
		Meta:     fixture.NewMeta(p.sources, p.destinations, p.faker),
	}, nil
}
