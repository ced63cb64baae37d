// Package notes turns decoded note events into timed notes measured in quarter notes.
package notes

import (
	"sort"

	"github.com/james-see/midi2abc/pkg/fraction"
	"github.com/james-see/midi2abc/pkg/smf"
)

// Sixteenth is the quantization step for lengths, in quarter notes.
var Sixteenth = fraction.New(1, 4)

// Note is a sounding pitch between Start and End. Start < End always holds.
type Note struct {
	Start   fraction.Fraction
	End     fraction.Fraction
	Pitch   int
	Channel uint8
}

// Length is End-Start rounded to the nearest sixteenth, never shorter than one.
func (n Note) Length() fraction.Fraction {
	return fraction.Max(n.End.Sub(n.Start).Round(Sixteenth), Sixteenth)
}

type slot struct {
	start int64
	open  bool
}

type tickNote struct {
	start, end int64
	pitch      int
	channel    uint8
}

// Collector pairs note-on and note-off events per channel and pitch.
// Open notes are discarded when their track ends.
type Collector struct {
	minCh, maxCh uint8

	track int
	slots [16][128]slot
	notes []tickNote

	retriggered int
	dropped     int
}

// NewCollector keeps notes whose channel lies in [minCh, maxCh].
func NewCollector(minCh, maxCh uint8) *Collector {
	return &Collector{minCh: minCh, maxCh: maxCh}
}

// Handle implements smf.Handler.
func (c *Collector) Handle(e smf.Event) {
	if e.Track != c.track {
		c.closeTrack()
		c.track = e.Track
	}
	if e.Kind != smf.NoteOn && e.Kind != smf.NoteOff {
		return
	}
	if e.Channel < c.minCh || e.Channel > c.maxCh {
		return
	}

	s := &c.slots[e.Channel&0x0F][e.Key&0x7F]
	if e.Kind == smf.NoteOn && e.Velocity > 0 {
		if s.open {
			c.retriggered++
		}
		*s = slot{start: e.Tick, open: true}
		return
	}

	if !s.open {
		return
	}
	if e.Tick > s.start {
		c.notes = append(c.notes, tickNote{start: s.start, end: e.Tick, pitch: int(e.Key), channel: e.Channel})
	} else {
		c.dropped++
	}
	*s = slot{}
}

func (c *Collector) closeTrack() {
	for ch := range c.slots {
		for p := range c.slots[ch] {
			if c.slots[ch][p].open {
				c.dropped++
				c.slots[ch][p] = slot{}
			}
		}
	}
}

// Retriggered counts note-ons that replaced a note still sounding.
func (c *Collector) Retriggered() int { return c.retriggered }

// Dropped counts notes that were never terminated or had no length.
func (c *Collector) Dropped() int {
	n := c.dropped
	for ch := range c.slots {
		for p := range c.slots[ch] {
			if c.slots[ch][p].open {
				n++
			}
		}
	}
	return n
}

// Notes returns the collected notes in quarter notes, ordered by start then pitch.
func (c *Collector) Notes(division uint16) []Note {
	if division == 0 {
		division = 1
	}
	div := int64(division)

	ns := make([]Note, 0, len(c.notes))
	for _, n := range c.notes {
		ns = append(ns, Note{
			Start:   fraction.New(n.start, div),
			End:     fraction.New(n.end, div),
			Pitch:   n.pitch,
			Channel: n.channel,
		})
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if d := ns[i].Start.Cmp(ns[j].Start); d != 0 {
			return d < 0
		}
		return ns[i].Pitch < ns[j].Pitch
	})
	return ns
}

// FixLengths shortens notes that keep sounding past a later note. For each
// note the first note starting more than a sixteenth after it clamps its end.
// ns must be ordered by start; it is modified in place and returned.
func FixLengths(ns []Note) []Note {
	for i := range ns {
		for j := i + 1; j < len(ns); j++ {
			if ns[j].Start.Sub(ns[i].Start).Cmp(Sixteenth) <= 0 {
				continue
			}
			if ns[j].Start.Less(ns[i].End) {
				ns[i].End = ns[j].Start
			}
			break
		}
	}
	return ns
}

// ShiftAnacrusis moves every note so that ns[count] starts a bar, treating
// the first count notes as a pickup. Counts outside (0, len(ns)) leave ns as is.
func ShiftAnacrusis(ns []Note, count int, barLength fraction.Fraction) []Note {
	if count <= 0 || count >= len(ns) || barLength.Sign() <= 0 {
		return ns
	}
	pos := ns[count].Start.Round(Sixteenth).Mod(barLength)
	shift := barLength.Sub(pos).Mod(barLength)
	if shift.IsZero() {
		return ns
	}
	for i := range ns {
		ns[i].Start = ns[i].Start.Add(shift)
		ns[i].End = ns[i].End.Add(shift)
	}
	return ns
}
