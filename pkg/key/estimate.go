package key

// signature order shared by every candidate group: fewer accidentals
// first, the sharp key before the flat key on equal counts
var signatureOrder = []int{0, 1, -1, 2, -2, 3, -3, 4, -4, 5, -5, 6, -6, 7, -7}

var candidates = buildCandidates()

func buildCandidates() []Key {
	var ks []Key
	add := func(n int, m Mode) {
		k, err := FromSharps(n, m)
		if err != nil {
			panic(err)
		}
		ks = append(ks, k)
	}
	for _, n := range signatureOrder {
		add(n, Major)
	}
	for _, n := range signatureOrder {
		add(n, Minor)
	}
	for _, n := range signatureOrder[:7] {
		add(n, Dorian)
	}
	return ks
}

// Candidates returns the keys searched by BestForPitches in search order:
// 15 majors, 15 minors, then 7 dorian modes with at most three accidentals.
func Candidates() []Key {
	out := make([]Key, len(candidates))
	copy(out, candidates)
	return out
}

// PitchClassSet marks the pitch classes present in a melody.
type PitchClassSet [12]bool

// Penalty scores how badly k fits: one point per pitch class outside the
// scale, two when the last pitch class is not the tonic, one for dorian.
func Penalty(k Key, used PitchClassSet, last int) int {
	var inScale PitchClassSet
	for _, pc := range k.Scale() {
		inScale[pc] = true
	}

	penalty := 0
	for pc, ok := range used {
		if ok && !inScale[pc] {
			penalty++
		}
	}
	if last != k.TonicPitchClass() {
		penalty += 2
	}
	if k.Mode == Dorian {
		penalty++
	}
	return penalty
}

// BestForPitches returns the candidate with the lowest penalty for the
// given MIDI pitches and that penalty. Ties go to the earlier candidate;
// no pitches yields C major.
func BestForPitches(pitches []int) (Key, int) {
	if len(pitches) == 0 {
		return Key{Tonic: "c"}, 0
	}

	var used PitchClassSet
	for _, p := range pitches {
		used[pitchClass(p)] = true
	}
	last := pitchClass(pitches[len(pitches)-1])

	best, bestPenalty := candidates[0], -1
	for _, k := range candidates {
		p := Penalty(k, used, last)
		if bestPenalty < 0 || p < bestPenalty {
			best, bestPenalty = k, p
		}
	}
	return best, bestPenalty
}

func pitchClass(p int) int {
	return (p%12 + 12) % 12
}
