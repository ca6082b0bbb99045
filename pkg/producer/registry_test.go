package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	reg := NewRegistry()
	for _, name := range []string{"ecommerce/get_product", "ecommerce/get_product_xss", "banking/login_sqli"} {
		name := name
		reg.Register(name, 0.5, func(p float64) (Producer, error) {
			base, err := NewBase(name, p, fixedRand(0))
			if err != nil {
				return nil, err
			}
			return &stubProducer{Base: base}, nil
		})
	}
	return reg
}

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{"banking/login_sqli", "ecommerce/get_product", "ecommerce/get_product_xss"}, testRegistry().Names())
}

func TestRegistry_BuildMatchesPattern(t *testing.T) {
	reg := testRegistry()

	all, err := reg.Build("**", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ecommerce, err := reg.Build("ecommerce/*", nil)
	require.NoError(t, err)
	require.Len(t, ecommerce, 2)
	assert.Equal(t, "ecommerce/get_product", ecommerce[0].Name())

	xss, err := reg.Build("**/*xss*", nil)
	require.NoError(t, err)
	require.Len(t, xss, 1)
	assert.Equal(t, "ecommerce/get_product_xss", xss[0].Name())
}

func TestRegistry_BuildAppliesOverrides(t *testing.T) {
	reg := testRegistry()

	producers, err := reg.Build("ecommerce/get_product_xss", map[string]float64{"ecommerce/get_product_xss": 1})
	require.NoError(t, err)
	require.Len(t, producers, 1)
	assert.Equal(t, 1.0, producers[0].Probability())
}

func TestRegistry_BuildFailsFast(t *testing.T) {
	reg := testRegistry()

	_, err := reg.Build("**", map[string]float64{"ecommerce/get_product": 1.5})
	assert.ErrorIs(t, err, ErrInvalidProbability)

	_, err = reg.Build("**", map[string]float64{"nope/missing": 0.5})
	assert.ErrorIs(t, err, ErrUnknownProducer)

	_, err = reg.Build("retail/*", nil)
	assert.ErrorIs(t, err, ErrUnknownProducer)

	_, err = reg.Build("[", nil)
	assert.Error(t, err)
}
