package fixture

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultEnvironment is stamped on every generated Meta.
	DefaultEnvironment = "production"
	// MetloSource identifies this generator as the origin of a trace.
	MetloSource = "tracegen"

	minSourcePort   = 1024
	maxSourcePort   = 65535
	destinationPort = 443
)

// JSONHeader is the content-type header attached to JSON responses.
var JSONHeader = Pair{Name: "Content-Type", Value: "application/json"}

// ErrEmptyPool is returned when a source or destination pool has no entries.
var ErrEmptyPool = errors.New("tag pool is empty")

// Rand is the randomness a Meta selection needs.
type Rand interface {
	IntN(n int) int
}

// ValidatePools reports whether both pools can be drawn from.
func ValidatePools(sources, destinations []string) error {
	if len(sources) == 0 {
		return fmt.Errorf("sources: %w", ErrEmptyPool)
	}
	if len(destinations) == 0 {
		return fmt.Errorf("destinations: %w", ErrEmptyPool)
	}
	return nil
}

// NewMeta picks a source and a destination from the given pools. Pools must
// be non-empty; callers validate them with ValidatePools at construction time.
func NewMeta(sources, destinations []string, r Rand) Meta {
	return Meta{
		Environment:     DefaultEnvironment,
		Incoming:        true,
		Source:          sources[r.IntN(len(sources))],
		SourcePort:      minSourcePort + r.IntN(maxSourcePort-minSourcePort+1),
		Destination:     destinations[r.IntN(len(destinations))],
		DestinationPort: destinationPort,
		MetloSource:     MetloSource,
	}
}

// FormatPhoneNumber renders a North American number as "(XXX) XXX-XXXX".
// Non-digit characters are ignored; a leading country code 1 is dropped.
// Inputs that do not reduce to ten digits are returned unchanged.
func FormatPhoneNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return raw
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}
