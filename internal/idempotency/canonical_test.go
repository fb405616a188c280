package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	type destination struct {
		Chain   string `json:"chain"`
		Address string `json:"address"`
	}

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"sorted keys", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"arrays keep order", map[string]any{"l": []any{3, 1, 2}}, `{"l":[3,1,2]}`},
		{"no html escaping", map[string]any{"s": "<a&b>"}, `{"s":"<a&b>"}`},
		{"null and bools", map[string]any{"n": nil, "t": true, "f": false}, `{"f":false,"n":null,"t":true}`},
		{"floats", map[string]any{"x": 1.5, "y": 2.0, "z": 1e21}, `{"x":1.5,"y":2,"z":1e+21}`},
		{"struct normalised", map[string]any{"dest": destination{Chain: "base", Address: "0x1"}}, `{"dest":{"address":"0x1","chain":"base"}}`},
		{"typed slice", map[string]any{"ids": []string{"b", "a"}}, `{"ids":["b","a"]}`},
		{"utf16 order", map[string]any{"｡": 1, "\U0001F600": 2}, `{"😀":2,"｡":1}`},
		{"scalar", "plain", `"plain"`},
		{"line separator raw", map[string]any{"s": "a\u2028b"}, "{\"s\":\"a\u2028b\"}"},
		{"paragraph separator key", map[string]any{"k\u2029": 1}, "{\"k\u2029\":1}"},
		{"escaped backslash kept", map[string]any{"s": `x\u2028`}, `{"s":"x\\u2028"}`},
		{"control chars still escaped", map[string]any{"s": "a\nb\u0001"}, `{"s":"a\nb\u0001"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
