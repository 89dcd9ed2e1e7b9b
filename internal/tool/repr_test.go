package tool

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepr(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"empty map", map[string]any{}, "{}"},
		{"int", 10, "10"},
		{"integral float", 10.0, "10"},
		{"fraction", 2.5, "2.5"},
		{"negative float", -0.25, "-0.25"},
		{"large float", 1e20, "1e+20"},
		{"fraction above a million", 1234567.5, "1234567.5"},
		{"long fraction", 1500000.25, "1500000.25"},
		{"sixteen digit integer", 1e15, "1000000000000000"},
		{"integral above 2^53", float64(1<<53) + 2, "9007199254740994"},
		{"exponent threshold", 1e16, "1e+16"},
		{"small positional", 0.0001, "0.0001"},
		{"small exponent", 0.00001, "1e-05"},
		{"negative small exponent", -1.5e-7, "-1.5e-07"},
		{"nan", math.NaN(), "nan"},
		{"json number", json.Number("42"), "42"},
		{"bools", []any{true, false}, "[True, False]"},
		{"string", "hi", "'hi'"},
		{"single quote", "it's", `"it's"`},
		{"both quotes", `it's "x"`, `'it\'s "x"'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"newline", "a\nb", `'a\nb'`},
		{"control", "\x01", `'\x01'`},
		{"unicode", "héllo", "'héllo'"},
		{"sorted keys", map[string]any{"b": 1, "a": "x"}, "{'a': 'x', 'b': 1}"},
		{"nested", map[string]any{"m": map[string]any{"k": []any{1, "two"}}}, "{'m': {'k': [1, 'two']}}"},
		{"typed slice", []string{"a", "b"}, "['a', 'b']"},
		{"typed map", map[string]int{"z": 1, "y": 2}, "{'y': 2, 'z': 1}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Repr(tc.in))
		})
	}
}

func TestRepr_Deterministic(t *testing.T) {
	m := map[string]any{"c": 3, "a": 1, "b": 2, "d": map[string]any{"y": 1, "x": 2}}
	first := Repr(m)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Repr(m))
	}
}
