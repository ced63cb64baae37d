// Package key models key signatures and estimates the key of a set of pitches.
package key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownKey reports a key name or signature that cannot be represented.
var ErrUnknownKey = errors.New("unknown key")

// Mode is the scale a key is built on: major, minor or dorian.
type Mode int

const (
	Major Mode = iota
	Minor
	Dorian
)

var modeSuffix = [...]string{Major: "", Minor: "m", Dorian: "dor"}

// distance in fifths from the tonic of the relative major
var modeOffset = [...]int{Major: 0, Minor: 3, Dorian: 2}

var modeNames = map[string]Mode{
	"":       Major,
	"maj":    Major,
	"major":  Major,
	"ion":    Major,
	"m":      Minor,
	"min":    Minor,
	"minor":  Minor,
	"aeo":    Minor,
	"dor":    Dorian,
	"dorian": Dorian,
}

func (m Mode) String() string {
	switch m {
	case Minor:
		return "minor"
	case Dorian:
		return "dorian"
	}
	return "major"
}

// Accidentals holds one entry per degree C, D, E, F, G, A, B:
// -1 flat, 0 natural, +1 sharp. Bar overrides may use ±2.
type Accidentals [7]int

const fifthLetters = "fcgdaeb"

// degree index of each letter in Accidentals
var degreeOf = map[byte]int{'c': 0, 'd': 1, 'e': 2, 'f': 3, 'g': 4, 'a': 5, 'b': 6}

// NaturalPitchClass is the pitch class of each degree without accidentals.
var NaturalPitchClass = [7]int{0, 2, 4, 5, 7, 9, 11}

// Degree order in which sharps are added; flats are added in reverse.
var sharpOrder = [7]int{3, 0, 4, 1, 5, 2, 6}

// Key is a tonic such as "f#" or "bb" with a mode.
type Key struct {
	Tonic string
	Mode  Mode
}

// Name is the lowercase key name, e.g. "c", "f#m", "ddor".
func (k Key) Name() string {
	return k.Tonic + modeSuffix[k.Mode]
}

func (k Key) String() string { return k.Name() }

// ABC is the name as written in a K: field, e.g. "F#m".
func (k Key) ABC() string {
	if k.Tonic == "" {
		return ""
	}
	return strings.ToUpper(k.Tonic[:1]) + k.Tonic[1:] + modeSuffix[k.Mode]
}

func tonicFifths(tonic string) int {
	pos := strings.IndexByte(fifthLetters, tonic[0]) - 1
	for _, c := range tonic[1:] {
		switch c {
		case '#':
			pos += 7
		case 'b':
			pos -= 7
		}
	}
	return pos
}

// Sharps is the number of sharps in the signature, negative for flats.
func (k Key) Sharps() int {
	return tonicFifths(k.Tonic) - modeOffset[k.Mode]
}

// TonicPitchClass returns the pitch class 0-11 of the tonic.
func (k Key) TonicPitchClass() int {
	pc := NaturalPitchClass[degreeOf[k.Tonic[0]]]
	for _, c := range k.Tonic[1:] {
		switch c {
		case '#':
			pc++
		case 'b':
			pc--
		}
	}
	return (pc%12 + 12) % 12
}

// Accidentals returns the key signature per degree.
func (k Key) Accidentals() Accidentals {
	return AccidentalsForSharps(k.Sharps())
}

// Scale returns the seven pitch classes of the key, indexed by degree.
func (k Key) Scale() [7]int {
	acc := k.Accidentals()
	var pcs [7]int
	for d, pc := range NaturalPitchClass {
		pcs[d] = (pc + acc[d] + 12) % 12
	}
	return pcs
}

// AccidentalsForSharps maps a signature to its accidental table. Counts
// beyond seven are clamped.
func AccidentalsForSharps(n int) Accidentals {
	var acc Accidentals
	switch {
	case n > 0:
		for i := 0; i < n && i < 7; i++ {
			acc[sharpOrder[i]] = 1
		}
	case n < 0:
		for i := 0; i < -n && i < 7; i++ {
			acc[sharpOrder[6-i]] = -1
		}
	}
	return acc
}

// AccidentalsForKey parses name and returns its accidental table.
func AccidentalsForKey(name string) (Accidentals, error) {
	k, err := Parse(name)
	if err != nil {
		return Accidentals{}, err
	}
	return k.Accidentals(), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// FromSharps returns the key of mode m whose signature has n sharps
// (negative for flats).
func FromSharps(n int, m Mode) (Key, error) {
	if n < -7 || n > 7 {
		return Key{}, fmt.Errorf("%w: %d sharps", ErrUnknownKey, n)
	}
	if int(m) < 0 || int(m) >= len(modeSuffix) {
		return Key{}, fmt.Errorf("%w: mode %d", ErrUnknownKey, m)
	}
	pos := n + modeOffset[m] + 1
	idx := pos - 7*floorDiv(pos, 7)
	tonic := string(fifthLetters[idx])
	switch floorDiv(pos, 7) {
	case -1:
		tonic += "b"
	case 1:
		tonic += "#"
	}
	return Key{Tonic: tonic, Mode: m}, nil
}

// Parse reads a key name such as "G", "f#m", "Bbmin" or "Edorian", or a
// signed number of sharps such as "-2", which selects a major key.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return FromSharps(n, Major)
	}

	name := strings.ToLower(s)
	if name == "" {
		return Key{}, fmt.Errorf("%w: empty", ErrUnknownKey)
	}
	if _, ok := degreeOf[name[0]]; !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}

	tonic := name[:1]
	rest := name[1:]
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		tonic += rest[:1]
		rest = rest[1:]
	}

	mode, ok := modeNames[strings.TrimSpace(rest)]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	k := Key{Tonic: tonic, Mode: mode}
	if n := k.Sharps(); n < -7 || n > 7 {
		return Key{}, fmt.Errorf("%w: %q needs %d sharps", ErrUnknownKey, s, n)
	}
	return k, nil
}
