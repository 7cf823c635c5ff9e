package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{name: "int", value: 5, want: 5, ok: true},
		{name: "int8", value: int8(-3), want: -3, ok: true},
		{name: "int16", value: int16(300), want: 300, ok: true},
		{name: "uint", value: uint(7), want: 7, ok: true},
		{name: "uint8", value: uint8(8), want: 8, ok: true},
		{name: "uint64", value: uint64(5), want: 5, ok: true},
		{name: "uint64 max int", value: uint64(math.MaxInt64), want: math.MaxInt64, ok: true},
		{name: "uint64 overflow", value: uint64(math.MaxInt64) + 1},
		{name: "float32 whole", value: float32(12), want: 12, ok: true},
		{name: "float32 fraction", value: float32(1.5)},
		{name: "float64 whole", value: 40.0, want: 40, ok: true},
		{name: "float64 overflow", value: 1e300},
		{name: "float64 nan", value: math.NaN()},
		{name: "string", value: " 42 ", want: 42, ok: true},
		{name: "string fraction", value: "4.2"},
		{name: "bool", value: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat64_Unsigned(t *testing.T) {
	got, ok := ToFloat64(uint64(9))
	assert.True(t, ok)
	assert.Equal(t, 9.0, got)

	_, ok = ToFloat64("nine")
	assert.False(t, ok)
}
