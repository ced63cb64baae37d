package smf

// EventKind tags the variant held by an Event.
type EventKind uint8

const (
	NoteOff EventKind = iota + 1
	NoteOn
	PolyPressure
	ControlChange
	ProgramChange
	ChannelPressure
	PitchWheel
	SysEx
	Meta
	Tempo
	TimeSignature
	KeySignature
	TrackName
	EndOfTrack
)

var kindNames = map[EventKind]string{
	NoteOff:         "note-off",
	NoteOn:          "note-on",
	PolyPressure:    "poly-pressure",
	ControlChange:   "control-change",
	ProgramChange:   "program-change",
	ChannelPressure: "channel-pressure",
	PitchWheel:      "pitch-wheel",
	SysEx:           "sysex",
	Meta:            "meta",
	Tempo:           "tempo",
	TimeSignature:   "time-signature",
	KeySignature:    "key-signature",
	TrackName:       "track-name",
	EndOfTrack:      "end-of-track",
}

func (k EventKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsChannel reports whether events of this kind carry a channel.
func (k EventKind) IsChannel() bool {
	return k >= NoteOff && k <= PitchWheel
}

// Event is a decoded track event. Only the fields of its Kind are set.
type Event struct {
	Kind  EventKind
	Track int
	Tick  int64 // absolute, from the start of the track

	Channel  uint8
	Key      uint8 // NoteOn, NoteOff, PolyPressure
	Velocity uint8 // NoteOn, NoteOff; pressure for PolyPressure
	Value    uint8 // ControlChange value, ProgramChange program, ChannelPressure
	Control  uint8 // ControlChange controller number
	Bend     int16 // PitchWheel, centred on 0

	MetaType uint8 // Meta and its specialisations

	MicrosPerQuarter uint32 // Tempo

	Numerator               uint8 // TimeSignature
	Denominator             uint8 // TimeSignature, already expanded from its power of two
	ClocksPerClick          uint8 // TimeSignature
	ThirtySecondsPerQuarter uint8 // TimeSignature

	Sharps int8 // KeySignature, negative for flats
	Minor  bool // KeySignature

	Text string // TrackName
	Data []byte // raw payload of SysEx and Meta
}

// BPM converts a Tempo event to beats per minute.
func (e Event) BPM() float64 {
	if e.MicrosPerQuarter == 0 {
		return 0
	}
	return 60_000_000 / float64(e.MicrosPerQuarter)
}

// Handler receives events in file order.
type Handler interface {
	Handle(e Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(e Event)

func (f HandlerFunc) Handle(e Event) { f(e) }
