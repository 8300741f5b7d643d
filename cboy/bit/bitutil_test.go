package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		high, low uint8
		expected  uint16
	}{
		{0xAB, 0xCD, 0xABCD},
		{0x00, 0x00, 0x0000},
		{0xFF, 0xFF, 0xFFFF},
		{0x12, 0x34, 0x1234},
	}

	for _, tt := range tests {
		result := Combine(tt.high, tt.low)
		assert.Equalf(t, tt.expected, result, "Combine(%X, %X)", tt.high, tt.low)
		assert.Equal(t, tt.high, High(result))
		assert.Equal(t, tt.low, Low(result))
	}
}

func TestSetReset(t *testing.T) {
	assert.Equal(t, uint8(0x80), Set(7, 0))
	assert.Equal(t, uint8(0x7F), Reset(7, 0xFF))
	assert.Equal(t, uint8(0x01), SetTo(0, 0, true))
	assert.Equal(t, uint8(0x00), SetTo(0, 1, false))
	assert.True(t, IsSet(3, 0x08))
	assert.False(t, IsSet(2, 0x08))
	assert.Equal(t, uint8(1), Value(4, 0x10))
	assert.Equal(t, uint8(0), Value(5, 0x10))
}

func TestAddSigned(t *testing.T) {
	tests := []struct {
		desc  string
		value uint16
		disp  uint8
		want  uint16
	}{
		{desc: "positive", value: 0x1000, disp: 0x05, want: 0x1005},
		{desc: "negative", value: 0x1000, disp: 0xFE, want: 0x0FFE},
		{desc: "min", value: 0x1000, disp: 0x80, want: 0x0F80},
		{desc: "wraps up", value: 0xFFFF, disp: 0x01, want: 0x0000},
		{desc: "wraps down", value: 0x0000, disp: 0xFF, want: 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, AddSigned(tt.value, tt.disp))
		})
	}
}

func TestSwap(t *testing.T) {
	assert.Equal(t, uint8(0x21), Swap(0x12))
	assert.Equal(t, uint8(0x0F), Swap(0xF0))
}
