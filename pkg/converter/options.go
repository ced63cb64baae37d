package converter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/midi2abc/pkg/abc"
	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/key"
)

// ErrInvalidOption reports an option value that cannot be used
var ErrInvalidOption = errors.New("invalid option")

// OptionValues holds options as they arrive from flags or query strings.
// Zero values mean "use the default".
type OptionValues struct {
	Key         string `form:"key" json:"key,omitempty"`
	Meter       string `form:"meter" json:"meter,omitempty"`
	Length      string `form:"length" json:"length,omitempty"`
	Aux         int    `form:"aux" json:"aux,omitempty"`
	BarsPerLine int    `form:"bpl" json:"bpl,omitempty"`
	Title       string `form:"title" json:"title,omitempty"`
	Source      string `form:"source" json:"source,omitempty"`
	Index       int    `form:"index" json:"index,omitempty"`
	Anacrusis   int    `form:"anacrusis" json:"anacrusis,omitempty"`
	Channels    string `form:"channels" json:"channels,omitempty"`

	NoTriplets     bool `form:"nt" json:"nt,omitempty"`
	NoBeamBreaks   bool `form:"nbb" json:"nbb,omitempty"`
	SlurEighths    bool `form:"s8" json:"s8,omitempty"`
	SlurSixteenths bool `form:"s16" json:"s16,omitempty"`
	SlurTriplets   bool `form:"st" json:"st,omitempty"`
}

// Options validates v and applies it over DefaultOptions.
// Aux wins over Length; NoTriplets also turns off broken rhythms.
func (v OptionValues) Options() (Options, error) {
	opts := DefaultOptions()

	if v.Key != "" {
		k, err := key.Parse(v.Key)
		if err != nil {
			return opts, fmt.Errorf("%w: key: %w", ErrInvalidOption, err)
		}
		opts.Key = &k
	}

	if v.Meter != "" {
		m, err := abc.ParseMeter(v.Meter)
		if err != nil {
			return opts, fmt.Errorf("%w: meter: %w", ErrInvalidOption, err)
		}
		opts.Meter = m
	}

	switch {
	case v.Aux < 0:
		return opts, fmt.Errorf("%w: aux must be positive, got %d", ErrInvalidOption, v.Aux)
	case v.Aux > 0:
		opts.UnitLength = fraction.New(1, int64(v.Aux))
	case v.Length != "":
		l, err := fraction.Parse(v.Length)
		if err != nil {
			return opts, fmt.Errorf("%w: length: %w", ErrInvalidOption, err)
		}
		if l.Sign() <= 0 {
			return opts, fmt.Errorf("%w: length must be positive, got %s", ErrInvalidOption, l)
		}
		opts.UnitLength = l
	}

	if v.BarsPerLine < 0 {
		return opts, fmt.Errorf("%w: bars per line must be positive, got %d", ErrInvalidOption, v.BarsPerLine)
	}
	if v.BarsPerLine > 0 {
		opts.BarsPerLine = v.BarsPerLine
	}

	if v.Index < 0 {
		return opts, fmt.Errorf("%w: index must be positive, got %d", ErrInvalidOption, v.Index)
	}
	if v.Index > 0 {
		opts.Index = v.Index
	}

	if v.Anacrusis < 0 {
		return opts, fmt.Errorf("%w: anacrusis must not be negative, got %d", ErrInvalidOption, v.Anacrusis)
	}
	opts.AnacrusisNotes = v.Anacrusis

	if v.Channels != "" {
		lo, hi, err := ParseChannelRange(v.Channels)
		if err != nil {
			return opts, err
		}
		opts.ChannelMin, opts.ChannelMax = lo, hi
	}

	opts.Title = v.Title
	opts.Source = v.Source
	opts.NoTriplets = v.NoTriplets
	opts.NoBrokenRhythms = v.NoTriplets
	opts.NoBeamBreaks = v.NoBeamBreaks
	opts.SlurEighths = v.SlurEighths
	opts.SlurSixteenths = v.SlurSixteenths
	opts.SlurTriplets = v.SlurTriplets
	return opts, nil
}

// ParseChannelRange reads "lo-hi" or a single channel, both 0-15.
func ParseChannelRange(s string) (lo, hi uint8, err error) {
	loStr, hiStr, isRange := strings.Cut(strings.TrimSpace(s), "-")
	if !isRange {
		hiStr = loStr
	}

	l, err := parseChannel(loStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: channels %q", ErrInvalidOption, s)
	}
	h, err := parseChannel(hiStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: channels %q", ErrInvalidOption, s)
	}
	if l > h {
		return 0, 0, fmt.Errorf("%w: channels %q run backwards", ErrInvalidOption, s)
	}
	return l, h, nil
}

func parseChannel(s string) (uint8, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, err
	}
	if n > 15 {
		return 0, fmt.Errorf("channel %d out of range", n)
	}
	return uint8(n), nil
}
