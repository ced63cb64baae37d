package abc

import (
	"sort"

	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/notes"
)

var (
	grid             = notes.Sixteenth
	tripletTolerance = fraction.New(1, 40)
	chordTolerance   = fraction.New(1, 50)
	halfNoteTriplet  = fraction.New(2, 3)

	// member lengths of recognised triplets, in quarter notes
	tripletUnits = []fraction.Fraction{fraction.New(1, 3), fraction.New(1, 6), halfNoteTriplet}
)

// element is a note, chord or triplet placed on the grid. A triplet
// holds its three members in pitches and spans length.
type element struct {
	start   fraction.Fraction
	length  fraction.Fraction
	pitches []int
	triplet bool
}

func (e element) end() fraction.Fraction { return e.start.Add(e.length) }

// layout groups time-ordered notes into non-overlapping elements.
func layout(ns []notes.Note, barLen fraction.Fraction, triplets bool) []element {
	var els []element
	for i := 0; i < len(ns); {
		if triplets {
			if t, ok := detectTriplet(ns[i:], barLen); ok && canPlaceTriplet(els, t) {
				els = placeTriplet(els, t)
				i += 3
				continue
			}
		}
		g, n := chordAt(ns[i:])
		els = placeGroup(els, g)
		i += n
	}
	return els
}

func withinTolerance(a, b, tol fraction.Fraction) bool {
	return a.Sub(b).Abs().Cmp(tol) <= 0
}

func detectTriplet(ns []notes.Note, barLen fraction.Fraction) (element, bool) {
	if len(ns) < 3 {
		return element{}, false
	}
	// the last member must not start a chord
	if len(ns) > 3 && ns[3].Start.Sub(ns[2].Start).Cmp(chordTolerance) <= 0 {
		return element{}, false
	}

	start := ns[0].Start.Round(grid)
	if !withinTolerance(ns[0].Start, start, tripletTolerance) {
		return element{}, false
	}

	for _, u := range tripletUnits {
		if !matchesTriplet(ns[:3], u) {
			continue
		}
		span := u.Mul(fraction.Int(3))
		align := span
		if u == halfNoteTriplet {
			align = fraction.Int(1)
		}
		pos := start.Mod(barLen)
		if !pos.Mod(align).IsZero() || barLen.Less(pos.Add(span)) {
			continue
		}
		return element{
			start:   start,
			length:  span,
			pitches: []int{ns[0].Pitch, ns[1].Pitch, ns[2].Pitch},
			triplet: true,
		}, true
	}
	return element{}, false
}

func matchesTriplet(ns []notes.Note, u fraction.Fraction) bool {
	minLen := u.Div(fraction.Int(2))
	maxLen := u.Add(tripletTolerance)
	for k, n := range ns {
		want := ns[0].Start.Add(u.Mul(fraction.Int(int64(k))))
		if !withinTolerance(n.Start, want, tripletTolerance) {
			return false
		}
		l := n.End.Sub(n.Start)
		if l.Less(minLen) || maxLen.Less(l) {
			return false
		}
	}
	return true
}

func canPlaceTriplet(els []element, t element) bool {
	if len(els) == 0 {
		return true
	}
	last := els[len(els)-1]
	if last.triplet {
		return !t.start.Less(last.end())
	}
	return last.start.Less(t.start)
}

func placeTriplet(els []element, t element) []element {
	if len(els) > 0 {
		last := &els[len(els)-1]
		if !last.triplet && t.start.Less(last.end()) {
			last.length = t.start.Sub(last.start)
		}
	}
	return append(els, t)
}

// chordAt takes the first note and every note starting within the chord
// tolerance of it. The chord lasts as long as the first note.
func chordAt(ns []notes.Note) (element, int) {
	first := ns[0]
	pitches := []int{first.Pitch}
	n := 1
	for n < len(ns) && ns[n].Start.Sub(first.Start).Cmp(chordTolerance) <= 0 {
		pitches = append(pitches, ns[n].Pitch)
		n++
	}
	return element{
		start:   first.Start.Round(grid),
		length:  first.Length(),
		pitches: pitches,
	}, n
}

func placeGroup(els []element, g element) []element {
	if len(els) > 0 {
		last := &els[len(els)-1]
		switch {
		case last.triplet:
			if g.start.Less(last.end()) {
				g.start = last.end()
			}
		case !last.start.Less(g.start):
			last.pitches = mergePitches(last.pitches, g.pitches)
			return els
		case g.start.Less(last.end()):
			last.length = g.start.Sub(last.start)
		}
	}
	g.pitches = mergePitches(nil, g.pitches)
	return append(els, g)
}

// mergePitches returns the sorted union of a and b.
func mergePitches(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for _, p := range append(append([]int(nil), a...), b...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
