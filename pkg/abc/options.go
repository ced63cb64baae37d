package abc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/key"
)

// ErrInvalidMeter reports a meter string that is not num/den.
var ErrInvalidMeter = errors.New("invalid meter")

// Meter is a time signature. It is kept as written, so 4/4 is not 2/2.
type Meter struct {
	Num int
	Den int
}

func (m Meter) IsZero() bool { return m.Num == 0 && m.Den == 0 }

func (m Meter) String() string { return fmt.Sprintf("%d/%d", m.Num, m.Den) }

// BarLength is the length of one bar in quarter notes.
func (m Meter) BarLength() fraction.Fraction {
	return fraction.New(int64(m.Num)*4, int64(m.Den))
}

// ParseMeter reads "num/den", "C" (4/4) or "C|" (2/2).
func ParseMeter(s string) (Meter, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "C":
		return Meter{Num: 4, Den: 4}, nil
	case "C|":
		return Meter{Num: 2, Den: 2}, nil
	}
	numStr, denStr, ok := strings.Cut(s, "/")
	if !ok {
		return Meter{}, fmt.Errorf("%w: %q", ErrInvalidMeter, s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil || num <= 0 {
		return Meter{}, fmt.Errorf("%w: %q", ErrInvalidMeter, s)
	}
	den, err := strconv.Atoi(strings.TrimSpace(denStr))
	if err != nil || den <= 0 {
		return Meter{}, fmt.Errorf("%w: %q", ErrInvalidMeter, s)
	}
	return Meter{Num: num, Den: den}, nil
}

// Options control the header and the notation choices of Transcribe.
type Options struct {
	Index  int
	Title  string
	Source string

	// Key is estimated from the notes when nil.
	Key *key.Key
	// Meter defaults to 3/4 when zero.
	Meter Meter
	// UnitLength is the L: field as a fraction of a whole note.
	UnitLength  fraction.Fraction
	BarsPerLine int

	NoTriplets      bool
	NoBrokenRhythms bool
	NoBeamBreaks    bool
	SlurEighths     bool
	SlurSixteenths  bool
	SlurTriplets    bool

	// AnacrusisNotes is the number of pickup notes before the first full bar.
	AnacrusisNotes int
}

// DefaultMeter is used when neither the caller nor the file sets one.
var DefaultMeter = Meter{Num: 3, Den: 4}

// DefaultOptions returns X:1, 3/4, L:1/16 and four bars per line.
func DefaultOptions() Options {
	return Options{
		Index:       1,
		Meter:       DefaultMeter,
		UnitLength:  fraction.New(1, 16),
		BarsPerLine: 4,
	}
}

func (o Options) withDefaults() Options {
	if o.Index <= 0 {
		o.Index = 1
	}
	if o.Meter.Num <= 0 || o.Meter.Den <= 0 {
		o.Meter = DefaultMeter
	}
	if o.UnitLength.Sign() <= 0 {
		o.UnitLength = fraction.New(1, 16)
	}
	if o.BarsPerLine <= 0 {
		o.BarsPerLine = 4
	}
	return o
}
