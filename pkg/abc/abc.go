// Package abc transcribes timed notes into ABC notation.
//
// Transcription runs in two phases. layout places the notes on a
// sixteenth-note grid, grouping chords and triplets; the emitter then
// walks the elements once, splitting them at barlines and choosing rests,
// ties, broken rhythms, slurs and accidentals as it goes.
package abc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/key"
	"github.com/james-see/midi2abc/pkg/notes"
)

// Transcribe renders ns, ordered by start, as an ABC tune. An empty
// slice yields the header alone.
func Transcribe(ns []notes.Note, opts Options) string {
	opts = opts.withDefaults()

	var k key.Key
	if opts.Key != nil {
		k = *opts.Key
	} else {
		k = EstimateKey(ns)
	}

	var b strings.Builder
	writeHeader(&b, opts, k)
	if len(ns) == 0 {
		return b.String()
	}

	ns = append([]notes.Note(nil), ns...)
	barLen := opts.Meter.BarLength()
	upbeat := opts.AnacrusisNotes > 0 && opts.AnacrusisNotes < len(ns)
	if upbeat {
		ns = notes.ShiftAnacrusis(ns, opts.AnacrusisNotes, barLen)
	}

	s := newState(opts, k)
	s.emit(layout(ns, barLen, !opts.NoTriplets), upbeat)
	b.WriteString(s.out.String())
	return b.String()
}

// EstimateKey picks the key that best fits the pitches of ns in order.
func EstimateKey(ns []notes.Note) key.Key {
	pitches := make([]int, len(ns))
	for i, n := range ns {
		pitches[i] = n.Pitch
	}
	k, _ := key.BestForPitches(pitches)
	return k
}

func writeHeader(b *strings.Builder, opts Options, k key.Key) {
	fmt.Fprintf(b, "X:%d\n", opts.Index)
	if opts.Source != "" {
		fmt.Fprintf(b, "S:%s\n", opts.Source)
	}
	if opts.Title != "" {
		fmt.Fprintf(b, "T:%s\n", opts.Title)
	}
	fmt.Fprintf(b, "M:%s\n", opts.Meter)
	fmt.Fprintf(b, "L:%d/%d\n", opts.UnitLength.Num(), opts.UnitLength.Den())
	fmt.Fprintf(b, "K:%s\n", k.ABC())
}

// FormatDuration writes d as a multiple of unit: nothing for 1, "/" for
// 1/2, "//" for 1/4, otherwise N or N/D.
func FormatDuration(d, unit fraction.Fraction) string {
	r := d.Div(unit)
	switch {
	case r == fraction.Int(1):
		return ""
	case r == fraction.New(1, 2):
		return "/"
	case r == fraction.New(1, 4):
		return "//"
	case r.Den() == 1:
		return strconv.FormatInt(r.Num(), 10)
	}
	return r.String()
}
