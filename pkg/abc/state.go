package abc

import (
	"strings"

	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/key"
)

var (
	quarter = fraction.Int(1)
	half    = fraction.New(1, 2)
)

// state carries the transcription from one element to the next.
type state struct {
	opts    Options
	barLen  fraction.Fraction
	unit    fraction.Fraction // L: in quarter notes
	sig     key.Accidentals
	flatKey bool

	out        strings.Builder
	fresh      bool // nothing written on the current line yet
	bar        int64
	barsOnLine int
	acc        key.Accidentals // in force for the current bar
	slurOpen   bool
	slurLeft   int
	broken     fraction.Fraction // multiplier for the next element, zero when unset
	upbeat     bool
	pos        fraction.Fraction // time written so far
}

func newState(opts Options, k key.Key) *state {
	sig := k.Accidentals()
	return &state{
		opts:    opts,
		barLen:  opts.Meter.BarLength(),
		unit:    opts.UnitLength.Mul(fraction.Int(4)),
		sig:     sig,
		flatKey: k.Sharps() < 0,
		acc:     sig,
		fresh:   true,
	}
}

func (s *state) barIndex(t fraction.Fraction) int64 { return t.Div(s.barLen).Floor() }

func (s *state) barStart(bar int64) fraction.Fraction { return s.barLen.Mul(fraction.Int(bar)) }

func (s *state) inBar(t fraction.Fraction) fraction.Fraction { return t.Mod(s.barLen) }

func (s *state) onQuarter(t fraction.Fraction) bool { return s.inBar(t).Den() == 1 }

func (s *state) fits(start, length fraction.Fraction) bool {
	return !s.barLen.Less(s.inBar(start).Add(length))
}

// emit writes the body for els. With an upbeat the first bar starts at
// the first element instead of at its barline.
func (s *state) emit(els []element, upbeat bool) {
	if len(els) == 0 {
		return
	}
	s.upbeat = upbeat
	s.pos = s.barStart(s.barIndex(els[0].start))
	if upbeat {
		s.pos = els[0].start
	}
	s.bar = s.barIndex(s.pos)

	for i := range els {
		s.step(els, i)
	}
	s.out.WriteString(" |]\n")
}

// step writes els[i], preceded by any rest needed to reach it.
func (s *state) step(els []element, i int) {
	e := els[i]
	if s.pos.Less(e.start) {
		s.rest(e.start)
	}

	if e.triplet {
		slur := 0
		if s.opts.SlurTriplets && !s.slurOpen {
			slur = 1
		}
		s.writeTriplet(e, slur)
		return
	}

	var marker byte
	var first, second fraction.Fraction
	if s.broken.IsZero() {
		marker, first, second = s.brokenPair(els, i)
	}

	slur := 0
	if !s.slurOpen {
		switch {
		case s.opts.SlurSixteenths && s.sixteenthRun(els, i):
			slur = 4
		case s.opts.SlurEighths && s.eighthPair(els, i, marker):
			slur = 2
		}
	}
	s.writeGroup(e, slur, marker, first, second)
}

// brokenPair reports whether els[i] and els[i+1] form a dotted pair and,
// if so, the multipliers for their notated lengths. Both are notated as
// half the pair; the marker carries the 3:1 ratio.
func (s *state) brokenPair(els []element, i int) (marker byte, first, second fraction.Fraction) {
	if s.opts.NoBrokenRhythms || i+1 >= len(els) {
		return 0, first, second
	}
	a, b := els[i], els[i+1]
	if a.triplet || b.triplet || b.start != a.end() {
		return 0, first, second
	}
	total := a.length.Add(b.length)
	if total != quarter && total != fraction.Int(2) {
		return 0, first, second
	}
	if !s.inBar(a.start).Mod(total).IsZero() || !s.fits(a.start, total) {
		return 0, first, second
	}

	three := fraction.Int(3)
	switch {
	case a.length == b.length.Mul(three):
		marker = '>'
	case b.length == a.length.Mul(three):
		marker = '<'
	default:
		return 0, first, second
	}
	halfPair := total.Mul(half)
	return marker, halfPair.Div(a.length), halfPair.Div(b.length)
}

func (s *state) sixteenthRun(els []element, i int) bool {
	if i+4 > len(els) || !s.onQuarter(els[i].start) || !s.fits(els[i].start, quarter) {
		return false
	}
	for k := i; k < i+4; k++ {
		e := els[k]
		if e.triplet || e.length != grid || (k > i && e.start != els[k-1].end()) {
			return false
		}
	}
	return true
}

func (s *state) eighthPair(els []element, i int, marker byte) bool {
	if i+1 >= len(els) {
		return false
	}
	a, b := els[i], els[i+1]
	if marker != 0 {
		return a.length.Add(b.length) == quarter
	}
	if a.triplet || b.triplet || a.length != half || b.length != half || b.start != a.end() {
		return false
	}
	return s.onQuarter(a.start) && s.fits(a.start, quarter)
}

// rest fills the gap up to t with rests, one per bar.
func (s *state) rest(t fraction.Fraction) {
	at := s.pos
	for _, p := range s.split(at, t.Sub(at)) {
		s.begin(at)
		s.out.WriteString("z")
		s.out.WriteString(FormatDuration(p, s.unit))
		at = at.Add(p)
	}
	s.pos = t
}

func (s *state) writeGroup(e element, slur int, marker byte, first, second fraction.Fraction) {
	at := e.start
	pieces := s.split(e.start, e.length)
	for k, p := range pieces {
		s.begin(at)
		if k == 0 {
			s.openSlur(slur)
		}

		notated := p
		switch {
		case !s.broken.IsZero():
			notated = p.Mul(s.broken)
			s.broken = fraction.Fraction{}
		case marker != 0:
			notated = p.Mul(first)
		}

		s.out.WriteString(s.chord(e.pitches))
		s.out.WriteString(FormatDuration(notated, s.unit))
		if k < len(pieces)-1 {
			s.out.WriteByte('-')
		}
		at = at.Add(p)
	}

	if marker != 0 {
		s.out.WriteByte(marker)
		s.broken = second
	}
	s.pos = e.end()
	s.closeSlur()
}

func (s *state) writeTriplet(e element, slur int) {
	s.begin(e.start)
	s.openSlur(slur)
	s.out.WriteString("(3")
	member := FormatDuration(e.length.Mul(half), s.unit)
	for _, p := range e.pitches {
		s.out.WriteString(s.spell(p))
		s.out.WriteString(member)
	}
	s.pos = e.end()
	s.closeSlur()
}

func (s *state) chord(pitches []int) string {
	if len(pitches) == 1 {
		return s.spell(pitches[0])
	}
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range pitches {
		b.WriteString(s.spell(p))
	}
	b.WriteByte(']')
	return b.String()
}

// begin moves to t, writing barlines for every bar boundary crossed and a
// space when t falls on a beat inside its bar.
func (s *state) begin(t fraction.Fraction) {
	for bar := s.barIndex(t); s.bar < bar; s.bar++ {
		s.barline()
	}
	if !s.fresh && !s.opts.NoBeamBreaks && s.broken.IsZero() {
		if in := s.inBar(t); in.Sign() > 0 && in.Den() == 1 {
			s.out.WriteByte(' ')
		}
	}
	s.fresh = false
}

func (s *state) barline() {
	s.out.WriteString(" |")
	if s.upbeat {
		// the pickup bar does not count towards the line
		s.upbeat = false
	} else {
		s.barsOnLine++
	}
	if s.barsOnLine >= s.opts.BarsPerLine {
		s.out.WriteByte('\n')
		s.barsOnLine = 0
		s.fresh = true
	} else {
		s.out.WriteByte(' ')
	}
	s.acc = s.sig
}

func (s *state) openSlur(n int) {
	if n <= 0 {
		return
	}
	s.out.WriteByte('(')
	s.slurOpen = true
	s.slurLeft = n
}

func (s *state) closeSlur() {
	if !s.slurOpen {
		return
	}
	s.slurLeft--
	if s.slurLeft <= 0 {
		s.out.WriteByte(')')
		s.slurOpen = false
	}
}

// split cuts an interval at every barline it crosses.
func (s *state) split(start, length fraction.Fraction) []fraction.Fraction {
	var pieces []fraction.Fraction
	for length.Sign() > 0 {
		barEnd := s.barStart(s.barIndex(start) + 1)
		p := fraction.Min(length, barEnd.Sub(start))
		pieces = append(pieces, p)
		start = start.Add(p)
		length = length.Sub(p)
	}
	return pieces
}
