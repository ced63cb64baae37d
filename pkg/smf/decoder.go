// Package smf decodes Standard MIDI Files into a stream of events.
package smf

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
	// ErrMalformedStream reports bytes that cannot be decoded, such as an overlong variable length quantity.
	ErrMalformedStream = errors.New("malformed stream")
	// ErrTruncatedStream reports data that ends in the middle of a chunk or event. It is fatal
	// only when the buffer itself ends early.
	ErrTruncatedStream = errors.New("truncated stream")
)

var voiceKinds = [16]EventKind{
	0x8: NoteOff,
	0x9: NoteOn,
	0xA: PolyPressure,
	0xB: ControlChange,
	0xC: ProgramChange,
	0xD: ChannelPressure,
	0xE: PitchWheel,
}

// TrackReadError aborts a single track. The decoder keeps what the track
// produced before the error and carries on with the next chunk.
type TrackReadError struct {
	Track  int
	Offset int
	Err    error
}

func (e *TrackReadError) Error() string {
	return fmt.Sprintf("track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

func (e *TrackReadError) Unwrap() error { return e.Err }

// Decoder walks the chunks of an SMF byte buffer and feeds every event to a Handler.
type Decoder struct {
	data    []byte
	handler Handler

	offset  int
	end     int // end of the current chunk
	track   int
	tick    int64
	running byte

	Format      uint16
	NumTracks   uint16
	Division    uint16 // ticks per quarter note
	TrackErrors []error
}

// NewDecoder returns a decoder reading data and reporting to h.
func NewDecoder(data []byte, h Handler) *Decoder {
	return &Decoder{data: data, handler: h}
}

// Decode parses the whole buffer. Problems confined to one track are
// collected in TrackErrors; the returned error is fatal for the file.
func (d *Decoder) Decode() error {
	d.offset = 0
	d.track = 0
	d.TrackErrors = nil

	if err := d.parseHeader(); err != nil {
		return err
	}

	for d.offset < len(d.data) {
		if err := d.parseChunk(); err != nil {
			return err
		}
	}

	if d.track != int(d.NumTracks) {
		logger.Debug("track count mismatch", zap.Uint16("header", d.NumTracks), zap.Int("read", d.track))
	}
	return nil
}

func (d *Decoder) parseHeader() error {
	if len(d.data) < 8 {
		return fmt.Errorf("%w: %d bytes is too short for a header", ErrTruncatedStream, len(d.data))
	}

	var code [4]byte
	copy(code[:], d.data[:4])
	if code != headerChunkID {
		return fmt.Errorf("%w - %v", ErrFmtNotSupported, code)
	}

	headerSize := int(ReadBigEndian(d.data[4:8]))
	if headerSize < 6 {
		return fmt.Errorf("%w - expected header size to be 6, was %d", ErrFmtNotSupported, headerSize)
	}
	if 8+headerSize > len(d.data) {
		return fmt.Errorf("%w: header chunk", ErrTruncatedStream)
	}

	d.Format = uint16(ReadBigEndian(d.data[8:10]))
	d.NumTracks = uint16(ReadBigEndian(d.data[10:12]))
	division := uint16(ReadBigEndian(d.data[12:14]))

	if division&0x8000 != 0 {
		return fmt.Errorf("%w - SMPTE time division %#04x", ErrFmtNotSupported, division)
	}
	if division == 0 {
		return fmt.Errorf("%w - zero time division", ErrFmtNotSupported)
	}
	d.Division = division

	d.offset = 8 + headerSize
	return nil
}

func (d *Decoder) parseChunk() error {
	start := d.offset
	if start+8 > len(d.data) {
		return fmt.Errorf("%w: chunk header at offset %d", ErrTruncatedStream, start)
	}

	var id [4]byte
	copy(id[:], d.data[start:start+4])
	end := start + 8 + int(ReadBigEndian(d.data[start+4:start+8]))
	if end > len(d.data) {
		return fmt.Errorf("%w: chunk at offset %d runs %d bytes past the end", ErrTruncatedStream, start, end-len(d.data))
	}

	if id != trackChunkID {
		d.skipTrack(start, fmt.Errorf("%w - expected track chunk ID %v, got %v", ErrUnexpectedData, trackChunkID, id))
		d.offset = end
		return nil
	}

	d.offset = start + 8
	err := d.parseTrack(end)
	d.offset = end

	// end is within the buffer, so a read past it only breaks this track
	if err != nil {
		d.skipTrack(start, err)
	}
	d.track++
	return nil
}

func (d *Decoder) skipTrack(offset int, err error) {
	terr := &TrackReadError{Track: d.track, Offset: offset, Err: err}
	d.TrackErrors = append(d.TrackErrors, terr)
	logger.Debug("skipping track", zap.Int("track", d.track), zap.Int("offset", offset), zap.Error(err))
}

func (d *Decoder) parseTrack(end int) error {
	d.end = end
	d.tick = 0
	d.running = 0

	for d.offset < d.end {
		delta, err := d.varLen()
		if err != nil {
			return err
		}
		d.tick += int64(delta)

		done, err := d.parseEvent()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

func (d *Decoder) parseEvent() (bool, error) {
	// high nibble is the message type, low nibble the channel
	statusByte, err := d.readByte()
	if err != nil {
		return false, err
	}

	if statusByte&0x80 == 0 {
		if d.running == 0 {
			return false, fmt.Errorf("%w: data byte %#02x at offset %d without running status", ErrMalformedStream, statusByte, d.offset-1)
		}
		statusByte = d.running
		d.offset-- // the byte read was the first data byte
	}

	switch {
	case statusByte == 0xFF:
		return d.parseMetaMsg()
	case statusByte == 0xF0 || statusByte == 0xF7:
		return false, d.parseSysEx()
	case statusByte > 0xF0:
		return false, fmt.Errorf("%w: system message %#02x inside a track", ErrUnexpectedData, statusByte)
	}

	d.running = statusByte
	e := Event{Kind: voiceKinds[statusByte>>4], Track: d.track, Tick: d.tick, Channel: statusByte & 0x0F}

	// Extract values based on message type
	switch statusByte >> 4 {
	case 0x8, 0x9, 0xA:
		if e.Key, err = d.uint7(); err != nil {
			return false, err
		}
		if e.Velocity, err = d.uint7(); err != nil {
			return false, err
		}

	case 0xB:
		if e.Control, err = d.uint7(); err != nil {
			return false, err
		}
		if e.Value, err = d.uint7(); err != nil {
			return false, err
		}

	case 0xC, 0xD:
		if e.Value, err = d.uint7(); err != nil {
			return false, err
		}

	case 0xE:
		lsb, err := d.uint7()
		if err != nil {
			return false, err
		}
		msb, err := d.uint7()
		if err != nil {
			return false, err
		}
		e.Bend = int16(int(msb)<<7|int(lsb)) - 0x2000
	}

	d.handler.Handle(e)
	return false, nil
}

// parseMetaMsg reports true once the end of the track is reached.
func (d *Decoder) parseMetaMsg() (bool, error) {
	metaType, err := d.readByte()
	if err != nil {
		return false, err
	}
	payload, err := d.varLenData()
	if err != nil {
		return false, err
	}

	e := Event{Kind: Meta, Track: d.track, Tick: d.tick, MetaType: metaType, Data: payload}

	switch {
	case metaType == 0x2F:
		e.Kind = EndOfTrack
		d.handler.Handle(e)
		return true, nil

	case metaType == 0x51 && len(payload) == 3:
		e.Kind = Tempo
		e.MicrosPerQuarter = uint32(payload[0])<<16 | ReadBigEndian(payload[1:3])

	case metaType == 0x58 && len(payload) == 4 && payload[1] < 8:
		e.Kind = TimeSignature
		e.Numerator = payload[0]
		e.Denominator = 1 << payload[1]
		e.ClocksPerClick = payload[2]
		e.ThirtySecondsPerQuarter = payload[3]

	case metaType == 0x59 && len(payload) == 2:
		e.Kind = KeySignature
		e.Sharps = int8(payload[0])
		e.Minor = payload[1] == 1

	case metaType == 0x03:
		e.Kind = TrackName
		e.Text = string(payload)
	}

	d.handler.Handle(e)
	return false, nil
}

func (d *Decoder) parseSysEx() error {
	payload, err := d.varLenData()
	if err != nil {
		return err
	}
	d.handler.Handle(Event{Kind: SysEx, Track: d.track, Tick: d.tick, Data: payload})
	return nil
}
