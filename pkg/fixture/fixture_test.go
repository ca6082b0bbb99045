package fixture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqRand struct {
	values []int
	i      int
}

func (s *seqRand) IntN(n int) int {
	v := s.values[s.i%len(s.values)] % n
	s.i++
	return v
}

func TestSample_WireShape(t *testing.T) {
	s := Sample{
		Request:  NewRequest("GET", "example.com", "/product/1", nil, nil, ""),
		Response: NewResponse(200, []Pair{JSONHeader}, `{"success":true}`),
		Meta:     NewMeta([]string{"10.0.0.1"}, []string{"10.0.0.2"}, &seqRand{values: []int{0}}),
	}

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	req := decoded["request"].(map[string]any)
	url := req["url"].(map[string]any)
	assert.Equal(t, "example.com", url["host"])
	assert.Equal(t, "/product/1", url["path"])
	assert.Equal(t, []any{}, url["parameters"], "parameters must serialize as an array")
	assert.Equal(t, []any{}, req["headers"], "headers must serialize as an array")
	assert.Equal(t, "GET", req["method"])
	assert.Equal(t, "", req["body"])

	resp := decoded["response"].(map[string]any)
	assert.EqualValues(t, 200, resp["status"])
	assert.Equal(t, `{"success":true}`, resp["body"])
	headers := resp["headers"].([]any)
	require.Len(t, headers, 1)
	assert.Equal(t, map[string]any{"name": "Content-Type", "value": "application/json"}, headers[0])

	meta := decoded["meta"].(map[string]any)
	assert.Equal(t, "10.0.0.1", meta["source"])
	assert.Equal(t, "10.0.0.2", meta["destination"])
	assert.Equal(t, true, meta["incoming"])
}

func TestNewMeta_DrawsFromPools(t *testing.T) {
	sources := []string{"a", "b", "c"}
	destinations := []string{"x", "y"}
	r := &seqRand{values: []int{2, 5, 1}}

	m := NewMeta(sources, destinations, r)

	assert.Equal(t, "c", m.Source)
	assert.Equal(t, "y", m.Destination)
	assert.GreaterOrEqual(t, m.SourcePort, minSourcePort)
	assert.LessOrEqual(t, m.SourcePort, maxSourcePort)
	assert.Equal(t, destinationPort, m.DestinationPort)
	assert.Equal(t, DefaultEnvironment, m.Environment)
	assert.Equal(t, MetloSource, m.MetloSource)
}

func TestValidatePools(t *testing.T) {
	assert.NoError(t, ValidatePools([]string{"a"}, []string{"b"}))
	assert.ErrorIs(t, ValidatePools(nil, []string{"b"}), ErrEmptyPool)
	assert.ErrorIs(t, ValidatePools([]string{"a"}, []string{}), ErrEmptyPool)
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6136459948", "(613) 645-9948"},
		{"16136459948", "(613) 645-9948"},
		{"613-645-9948", "(613) 645-9948"},
		{"12345", "12345"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneNumber(tt.in))
		})
	}
}
