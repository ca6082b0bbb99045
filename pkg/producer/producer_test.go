package producer

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/krzko/tracegen/pkg/fixture"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type stubProducer struct {
	Base
	sample fixture.Sample
	err    error
	calls  int
}

func (s *stubProducer) GetDataPoint() (fixture.Sample, error) {
	s.calls++
	return s.sample, s.err
}

func newStub(t *testing.T, probability float64, r Rand) *stubProducer {
	t.Helper()
	base, err := NewBase("test/stub", probability, r)
	require.NoError(t, err)
	return &stubProducer{
		Base:   base,
		sample: fixture.Sample{Request: fixture.Request{Method: "GET"}},
	}
}

func TestNewBase_RejectsInvalidProbability(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NewBase("bad", p, fixedRand(0))
		assert.ErrorIs(t, err, ErrInvalidProbability, "probability %v", p)
	}

	for _, p := range []float64{0, 0.5, 1} {
		b, err := NewBase("ok", p, fixedRand(0))
		require.NoError(t, err)
		assert.Equal(t, p, b.Probability())
		assert.Equal(t, "ok", b.Name())
	}
}

func TestAttempt_Skipped(t *testing.T) {
	p := newStub(t, 0.3, fixedRand(0.3))

	res, err := Attempt(p)
	require.NoError(t, err)
	assert.False(t, res.Emitted)
	assert.Equal(t, 0, p.calls, "GetDataPoint must not run when skipped")
}

func TestAttempt_Emitted(t *testing.T) {
	p := newStub(t, 0.3, fixedRand(0.29))

	res, err := Attempt(p)
	require.NoError(t, err)
	assert.True(t, res.Emitted)
	assert.Equal(t, "GET", res.Sample.Request.Method)
	assert.Equal(t, 1, p.calls)
}

func TestAttempt_ProbabilityBounds(t *testing.T) {
	never := newStub(t, 0, fixedRand(0))
	res, err := Attempt(never)
	require.NoError(t, err)
	assert.False(t, res.Emitted)

	always := newStub(t, 1, fixedRand(0.999999))
	res, err = Attempt(always)
	require.NoError(t, err)
	assert.True(t, res.Emitted)
}

func TestAttempt_PropagatesGenerationError(t *testing.T) {
	boom := errors.New("locale exhausted")
	p := newStub(t, 1, fixedRand(0))
	p.err = boom

	res, err := Attempt(p)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test/stub")
	assert.False(t, res.Emitted)
}

type pcgRand struct{ r *rand.Rand }

func (p pcgRand) Float64() float64 { return p.r.Float64() }

// rateTolerance is six standard deviations of the empirical rate, floored at
// a few discrete hits for tiny p.
func rateTolerance(p float64, trials int) float64 {
	n := float64(trials)
	return math.Max(6*math.Sqrt(p*(1-p)/n), 8/n)
}

type scriptedRand struct {
	draws []float64
	i     int
}

func (s *scriptedRand) Float64() float64 {
	if s.i >= len(s.draws) {
		return 0.5
	}
	v := s.draws[s.i]
	s.i++
	return v
}

func TestAttempt_SingleHitAtTinyProbability(t *testing.T) {
	const trials = 4000
	const probability = 3.814697265625e-06

	base, err := NewBase("test/rate", probability, &scriptedRand{draws: []float64{0}})
	require.NoError(t, err)
	p := &stubProducer{Base: base}

	emitted := 0
	for i := 0; i < trials; i++ {
		res, err := Attempt(p)
		require.NoError(t, err)
		if res.Emitted {
			emitted++
		}
	}

	require.Equal(t, 1, emitted)
	rate := float64(emitted) / trials
	assert.LessOrEqual(t, math.Abs(rate-probability), rateTolerance(probability, trials))
}

func TestAttempt_EmissionRateConverges(t *testing.T) {
	const trials = 4000

	rapid.Check(t, func(rt *rapid.T) {
		probability := rapid.Float64Range(0, 1).Draw(rt, "probability")
		seed := rapid.Uint64().Draw(rt, "seed")

		base, err := NewBase("test/rate", probability, pcgRand{rand.New(rand.NewPCG(seed, seed+1))})
		if err != nil {
			rt.Fatalf("NewBase: %v", err)
		}
		p := &stubProducer{Base: base}

		emitted := 0
		for i := 0; i < trials; i++ {
			res, err := Attempt(p)
			if err != nil {
				rt.Fatalf("Attempt: %v", err)
			}
			if res.Emitted {
				emitted++
			}
		}

		rate := float64(emitted) / trials
		tolerance := rateTolerance(probability, trials)
		if math.Abs(rate-probability) > tolerance {
			rt.Fatalf("emission rate %.4f too far from %.4f (tolerance %.4f)", rate, probability, tolerance)
		}
	})
}
