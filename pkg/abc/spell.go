package abc

import (
	"strings"

	"github.com/james-see/midi2abc/pkg/key"
)

const letters = "CDEFGAB"

// degree of each white-key pitch class, -1 for black keys
var whiteDegree = [12]int{0, -1, 1, -1, 2, 3, -1, 4, -1, 5, -1, 6}

var accidentalTokens = map[int]string{-2: "__", -1: "_", 0: "=", 1: "^", 2: "^^"}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// spell renders a MIDI pitch, adding an accidental only when the one in
// force for its degree does not already give the right pitch. Explicit
// accidentals stay in force until the end of the bar.
func (s *state) spell(pitch int) string {
	pc := pitch - 12*floorDiv(pitch, 12)

	degree, token := -1, ""
	for d, natural := range key.NaturalPitchClass {
		if (natural+s.acc[d]+12)%12 == pc {
			degree = d
			break
		}
	}

	if degree < 0 {
		acc := 0
		switch {
		case whiteDegree[pc] >= 0:
			degree = whiteDegree[pc]
		case s.flatKey:
			degree, acc = whiteDegree[(pc+1)%12], -1
		default:
			degree, acc = whiteDegree[pc-1], 1
		}
		s.acc[degree] = acc
		token = accidentalTokens[acc]
	}

	octave := (pitch-key.NaturalPitchClass[degree]-s.acc[degree])/12 - 5
	return token + noteName(degree, octave)
}

// noteName writes degree in octave 0 as C..B (middle C is C), octave 1
// as c..b, and further octaves with apostrophes or commas.
func noteName(degree, octave int) string {
	var b strings.Builder
	switch {
	case octave <= 0:
		b.WriteByte(letters[degree])
		b.WriteString(strings.Repeat(",", -octave))
	default:
		b.WriteByte(letters[degree] + 'a' - 'A')
		b.WriteString(strings.Repeat("'", octave-1))
	}
	return b.String()
}
