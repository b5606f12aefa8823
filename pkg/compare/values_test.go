package compare

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same strings", "0xabc", "0xabc", true},
		{"strings differ by case", "0xABC", "0xabc", false},
		{"number and numeric string", json.Number("1000"), "1000", true},
		{"decimal forms", json.Number("1.50"), "1.5", true},
		{"decimal strings compare exactly", "1.50", "1.5", false},
		{"big integers", json.Number("340282366920938463463374607431768211456"), "340282366920938463463374607431768211456", true},
		{"big integers differ", json.Number("340282366920938463463374607431768211456"), "340282366920938463463374607431768211457", false},
		{"bools", true, true, true},
		{"bool and number", true, json.Number("1"), true},
		{"both null", nil, nil, true},
		{"null and value", nil, "", false},
		{"non numeric string and number", "abc", json.Number("1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looseEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, looseEqual(tt.b, tt.a), "symmetric")
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", formatValue(nil))
	assert.Equal(t, "42", formatValue(json.Number("42")))
	assert.Equal(t, "false", formatValue(false))
	assert.Equal(t, "0.5", formatValue(0.5))
	assert.Equal(t, `{"a":1}`, formatValue(map[string]int{"a": 1}))
}

func TestParseErrorPolicy(t *testing.T) {
	p, err := ParseErrorPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, AbortOnError, p)

	p, err = ParseErrorPolicy("FLAG")
	assert.NoError(t, err)
	assert.Equal(t, FlagOnError, p)

	_, err = ParseErrorPolicy("retry")
	assert.Error(t, err)
}
