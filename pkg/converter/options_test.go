package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/midi2abc/pkg/abc"
	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/key"
)

func TestOptionValuesDefaults(t *testing.T) {
	opts, err := OptionValues{}.Options()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.True(t, opts.Meter.IsZero())
}

func TestOptionValues(t *testing.T) {
	tests := []struct {
		name  string
		in    OptionValues
		check func(t *testing.T, o Options)
	}{
		{
			name: "named key",
			in:   OptionValues{Key: "Bb"},
			check: func(t *testing.T, o Options) {
				require.NotNil(t, o.Key)
				assert.Equal(t, key.Key{Tonic: "bb"}, *o.Key)
			},
		},
		{
			name: "sharps count",
			in:   OptionValues{Key: "-2"},
			check: func(t *testing.T, o Options) {
				require.NotNil(t, o.Key)
				assert.Equal(t, -2, o.Key.Sharps())
			},
		},
		{
			name: "meter kept as written",
			in:   OptionValues{Meter: "4/4"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, abc.Meter{Num: 4, Den: 4}, o.Meter)
			},
		},
		{
			name: "length",
			in:   OptionValues{Length: "1/8"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, fraction.New(1, 8), o.UnitLength)
			},
		},
		{
			name: "aux wins over length",
			in:   OptionValues{Length: "1/8", Aux: 4},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, fraction.New(1, 4), o.UnitLength)
			},
		},
		{
			name: "nt disables broken rhythms too",
			in:   OptionValues{NoTriplets: true},
			check: func(t *testing.T, o Options) {
				assert.True(t, o.NoTriplets)
				assert.True(t, o.NoBrokenRhythms)
			},
		},
		{
			name: "layout and metadata",
			in: OptionValues{
				BarsPerLine: 8, Index: 3, Anacrusis: 2, Title: "T", Source: "S",
				NoBeamBreaks: true, SlurEighths: true, SlurSixteenths: true, SlurTriplets: true,
			},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, 8, o.BarsPerLine)
				assert.Equal(t, 3, o.Index)
				assert.Equal(t, 2, o.AnacrusisNotes)
				assert.Equal(t, "T", o.Title)
				assert.Equal(t, "S", o.Source)
				assert.True(t, o.NoBeamBreaks)
				assert.True(t, o.SlurEighths)
				assert.True(t, o.SlurSixteenths)
				assert.True(t, o.SlurTriplets)
				assert.False(t, o.NoTriplets)
			},
		},
		{
			name: "channels",
			in:   OptionValues{Channels: "9"},
			check: func(t *testing.T, o Options) {
				assert.Equal(t, uint8(9), o.ChannelMin)
				assert.Equal(t, uint8(9), o.ChannelMax)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := tt.in.Options()
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestOptionValuesErrors(t *testing.T) {
	tests := []struct {
		name string
		in   OptionValues
	}{
		{"key", OptionValues{Key: "h"}},
		{"meter", OptionValues{Meter: "three"}},
		{"length", OptionValues{Length: "x"}},
		{"zero length", OptionValues{Length: "0"}},
		{"aux", OptionValues{Aux: -4}},
		{"bars per line", OptionValues{BarsPerLine: -1}},
		{"index", OptionValues{Index: -1}},
		{"anacrusis", OptionValues{Anacrusis: -1}},
		{"channels", OptionValues{Channels: "16"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Options()
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestParseChannelRange(t *testing.T) {
	tests := []struct {
		in     string
		lo, hi uint8
	}{
		{"0-15", 0, 15},
		{"9", 9, 9},
		{" 2 - 3 ", 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lo, hi, err := ParseChannelRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}

	for _, bad := range []string{"", "a", "3-1", "0-16", "-1"} {
		_, _, err := ParseChannelRange(bad)
		assert.ErrorIs(t, err, ErrInvalidOption, bad)
	}
}
