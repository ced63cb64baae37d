package fraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReduces(t *testing.T) {
	assert.Equal(t, New(1, 2), New(2, 4))
	assert.Equal(t, New(-1, 2), New(1, -2))
	assert.Equal(t, Fraction{}, New(0, 7))
	assert.Equal(t, "3/4", New(6, 8).String())
	assert.Equal(t, "3", New(9, 3).String())
	assert.Panics(t, func() { New(1, 0) })
}

func TestArithmetic(t *testing.T) {
	third := New(1, 3)
	assert.Equal(t, Int(1), third.Add(third).Add(third))
	assert.Equal(t, New(1, 6), New(1, 2).Sub(third))
	assert.Equal(t, New(1, 2), third.Mul(New(3, 2)))
	assert.Equal(t, Int(4), Int(1).Div(New(1, 4)))
	assert.True(t, third.Less(New(1, 2)))
	assert.Equal(t, 0, New(2, 6).Cmp(third))
}

func TestFloorAndMod(t *testing.T) {
	tests := []struct {
		f     Fraction
		floor int64
	}{
		{New(7, 2), 3},
		{New(-1, 2), -1},
		{Int(-3), -3},
		{Fraction{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			assert.Equal(t, tt.floor, tt.f.Floor())
		})
	}

	assert.Equal(t, New(1, 2), New(7, 2).Mod(Int(3)))
	assert.Equal(t, New(5, 2), New(-1, 2).Mod(Int(3)))
	assert.Equal(t, Fraction{}, Int(6).Mod(Int(3)))
}

func TestRound(t *testing.T) {
	q := New(1, 4)
	assert.Equal(t, Fraction{}, New(1, 10).Round(q))
	assert.Equal(t, New(1, 4), New(1, 8).Round(q))
	assert.Equal(t, New(1, 4), New(1, 3).Round(q))
	assert.Equal(t, Int(1), New(49, 50).Round(q))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Fraction
	}{
		{"1/16", New(1, 16)},
		{"3/4", New(3, 4)},
		{"2", Int(2)},
		{"/8", New(1, 8)},
		{" 6/8 ", New(3, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "x", "1/0", "1/y"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}
