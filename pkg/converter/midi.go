package converter

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/midi2abc/pkg/key"
)

// TrackSummary describes one track of a MIDI file
type TrackSummary struct {
	Index    int     `json:"index"`
	Name     string  `json:"name,omitempty"`
	Notes    int     `json:"notes"`
	Channels []uint8 `json:"channels,omitempty"`
}

// Summary describes the content of a MIDI file
type Summary struct {
	Resolution   uint16         `json:"resolution"`
	Tracks       []TrackSummary `json:"tracks"`
	Notes        int            `json:"notes"`
	BPM          float64        `json:"bpm,omitempty"`
	Meter        string         `json:"meter,omitempty"`
	Key          string         `json:"key"`
	LowestPitch  uint8          `json:"lowest_pitch,omitempty"`
	HighestPitch uint8          `json:"highest_pitch,omitempty"`
}

type noteStart struct {
	tick int64
	key  uint8
}

// InspectFile reads a MIDI file and summarizes it
func InspectFile(filename string) (*Summary, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Inspect(data)
}

// Inspect summarizes MIDI data: track names, channel usage, the first
// tempo and meter, and the key that best fits the notes.
func Inspect(data []byte) (*Summary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	sum := &Summary{Tracks: make([]TrackSummary, 0, len(s.Tracks))}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		sum.Resolution = mt.Resolution()
	}

	var starts []noteStart
	for i, track := range s.Tracks {
		ts := TrackSummary{Index: i}
		var used [16]bool
		var tick int64

		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message

			var ch, k, vel uint8
			var bpm float64
			var num, denom, cpt, dsqpq uint8
			var text string

			switch {
			case msg.GetNoteStart(&ch, &k, &vel):
				ts.Notes++
				used[ch] = true
				starts = append(starts, noteStart{tick: tick, key: k})
			case msg.GetMetaTempo(&bpm):
				if sum.BPM == 0 {
					sum.BPM = bpm
				}
			case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				if sum.Meter == "" && num > 0 {
					sum.Meter = fmt.Sprintf("%d/%d", num, denom)
				}
			case msg.GetMetaTrackName(&text):
				if ts.Name == "" {
					ts.Name = strings.TrimSpace(text)
				}
			}
		}

		for ch, ok := range used {
			if ok {
				ts.Channels = append(ts.Channels, uint8(ch))
			}
		}
		sum.Notes += ts.Notes
		sum.Tracks = append(sum.Tracks, ts)
	}

	sort.SliceStable(starts, func(i, j int) bool {
		if starts[i].tick != starts[j].tick {
			return starts[i].tick < starts[j].tick
		}
		return starts[i].key < starts[j].key
	})

	pitches := make([]int, len(starts))
	for i, st := range starts {
		pitches[i] = int(st.key)
		if i == 0 || st.key < sum.LowestPitch {
			sum.LowestPitch = st.key
		}
		if st.key > sum.HighestPitch {
			sum.HighestPitch = st.key
		}
	}
	k, _ := key.BestForPitches(pitches)
	sum.Key = k.Name()

	return sum, nil
}

// String renders the summary for terminal output
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resolution: %d ticks per quarter\n", s.Resolution)
	if s.BPM > 0 {
		fmt.Fprintf(&b, "Tempo:      %.2f BPM\n", s.BPM)
	}
	if s.Meter != "" {
		fmt.Fprintf(&b, "Meter:      %s\n", s.Meter)
	}
	fmt.Fprintf(&b, "Key:        %s\n", s.Key)
	fmt.Fprintf(&b, "Notes:      %d", s.Notes)
	if s.Notes > 0 {
		fmt.Fprintf(&b, " (pitches %d-%d)", s.LowestPitch, s.HighestPitch)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Tracks:     %d\n", len(s.Tracks))
	for _, t := range s.Tracks {
		name := t.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "  %2d %-20s %4d notes", t.Index, name, t.Notes)
		if len(t.Channels) > 0 {
			chs := make([]string, len(t.Channels))
			for i, ch := range t.Channels {
				chs[i] = fmt.Sprint(ch)
			}
			fmt.Fprintf(&b, "  channels %s", strings.Join(chs, ","))
		}
		b.WriteString("\n")
	}
	return b.String()
}
