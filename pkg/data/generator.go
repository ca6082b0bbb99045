package data

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// ErrInvalidWordCount is returned when a sentence is requested with fewer than one word.
var ErrInvalidWordCount = errors.New("word count must be positive")

var freeEmailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "proton.me"}

// SeedEpoch is the reference date for ages when a seed is set, so seeded
// output does not depend on the day it is generated.
var SeedEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generator provides fake entity fields and the random draws producers need.
// It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rand   *rand.Rand
	fakeMu sync.Mutex
	faker  *gofakeit.Faker
	now    func() time.Time
}

// NewGenerator creates a generator. A zero seed picks a time-based seed and
// dates are relative to the current time; any other value makes the output
// reproducible, with dates relative to SeedEpoch.
func NewGenerator(seed uint64) *Generator {
	now := func() time.Time { return SeedEpoch }
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		now = time.Now
	}
	return &Generator{
		rand:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker: gofakeit.New(seed),
		now:   now,
	}
}

// Float64 returns a uniform value in [0, 1).
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Float64()
}

// IntN returns a uniform value in [0, n).
func (g *Generator) IntN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.IntN(n)
}

func (g *Generator) fake(fn func(f *gofakeit.Faker) string) string {
	g.fakeMu.Lock()
	defer g.fakeMu.Unlock()
	return fn(g.faker)
}

// Read fills p from the seeded source so identifiers follow the seed.
func (g *Generator) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range p {
		p[i] = byte(g.rand.Uint32())
	}
	return len(p), nil
}

// UUID generates a random UUIDv4
func (g *Generator) UUID() (string, error) {
	id, err := uuid.NewRandomFromReader(g)
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return id.String(), nil
}

// FirstName generates a given name
func (g *Generator) FirstName() string {
	return g.fake((*gofakeit.Faker).FirstName)
}

// FreeEmail generates an address on a free webmail provider
func (g *Generator) FreeEmail() string {
	local := strings.ToLower(g.fake(func(f *gofakeit.Faker) string {
		return f.FirstName() + "." + f.LastName()
	}))
	local = strings.ReplaceAll(local, " ", "")
	return fmt.Sprintf("%s%d@%s", local, g.IntN(100), freeEmailDomains[g.IntN(len(freeEmailDomains))])
}

// Address generates a single-line postal address
func (g *Generator) Address() string {
	return g.fake(func(f *gofakeit.Faker) string {
		return f.Address().Address
	})
}

// PhoneNumber generates a ten digit phone number without formatting
func (g *Generator) PhoneNumber() string {
	return g.fake((*gofakeit.Faker).Phone)
}

// DateOfBirth generates a birth date for someone between 18 and 80 years old
func (g *Generator) DateOfBirth() time.Time {
	now := g.now().UTC()
	youngest := now.AddDate(-18, 0, 0)
	oldest := now.AddDate(-80, 0, 0)
	days := int(youngest.Sub(oldest).Hours() / 24)
	dob := youngest.AddDate(0, 0, -g.IntN(days+1))
	return time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
}

// Sentence generates filler text with exactly words words
func (g *Generator) Sentence(words int) (string, error) {
	if words < 1 {
		return "", fmt.Errorf("sentence of %d words: %w", words, ErrInvalidWordCount)
	}
	parts := make([]string, words)
	for i := range parts {
		word := strings.ToLower(strings.TrimSpace(g.fake((*gofakeit.Faker).Word)))
		if i := strings.IndexByte(word, ' '); i > 0 {
			word = word[:i]
		}
		parts[i] = word
	}
	parts[0] = capitalize(parts[0])
	return strings.Join(parts, " ") + ".", nil
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return strings.ToUpper(string(r)) + word[size:]
}

// ProductName generates a product title
func (g *Generator) ProductName() string {
	return g.fake((*gofakeit.Faker).ProductName)
}

// ProductDescription generates a product blurb
func (g *Generator) ProductDescription() string {
	return g.fake((*gofakeit.Faker).ProductDescription)
}

// ProductCategory generates a catalogue category
func (g *Generator) ProductCategory() string {
	return g.fake((*gofakeit.Faker).ProductCategory)
}

// Price generates a price between min and max rounded to cents. Swapped
// bounds are reordered.
func (g *Generator) Price(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	cents := int(min*100) + g.IntN(int((max-min)*100)+1)
	return float64(cents) / 100
}
