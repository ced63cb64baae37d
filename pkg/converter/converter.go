package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/james-see/midi2abc/pkg/abc"
	"github.com/james-see/midi2abc/pkg/key"
	"github.com/james-see/midi2abc/pkg/notes"
	"github.com/james-see/midi2abc/pkg/smf"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatABC     Format = "abc"
	FormatUnknown Format = "unknown"
)

var (
	// ErrUnsupportedConversion reports a pair of formats with no converter
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrUnknownFormat reports a file name whose format cannot be told from its extension
	ErrUnknownFormat = errors.New("unknown format")
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".abc":
		return FormatABC
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}
	if len(data) >= 2 && string(data[:2]) == "X:" {
		return FormatABC
	}
	return FormatUnknown
}

// GetSupportedConversions returns the conversions this package performs
func GetSupportedConversions() []string {
	return []string{"midi -> abc"}
}

// ConvertFile converts a MIDI file to an ABC file
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	inputFormat := DetectFormat(inputPath)
	if inputFormat == FormatUnknown {
		inputFormat = DetectFormatFromContent(data)
	}
	outputFormat := DetectFormat(outputPath)
	if outputFormat == FormatUnknown {
		return fmt.Errorf("%w: cannot determine output format of %s", ErrUnknownFormat, outputPath)
	}
	if inputFormat != FormatMIDI || outputFormat != FormatABC {
		return fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, inputFormat, outputFormat)
	}

	out, err := c.MIDIToABC(data)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// scanner collects notes and remembers the first time signature and
// track name of the file.
type scanner struct {
	*notes.Collector
	meter abc.Meter
	title string
}

func (s *scanner) Handle(e smf.Event) {
	switch e.Kind {
	case smf.TimeSignature:
		if s.meter.IsZero() && e.Numerator > 0 {
			s.meter = abc.Meter{Num: int(e.Numerator), Den: int(e.Denominator)}
		}
	case smf.TrackName:
		if s.title == "" {
			s.title = strings.TrimSpace(e.Text)
		}
	}
	s.Collector.Handle(e)
}

// MIDIToABC transcribes a Standard MIDI File into an ABC tune
func (c *Converter) MIDIToABC(midiData []byte) ([]byte, error) {
	s := &scanner{Collector: notes.NewCollector(c.opts.ChannelMin, c.opts.ChannelMax)}
	dec := smf.NewDecoder(midiData, s)
	if err := dec.Decode(); err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	for _, err := range dec.TrackErrors {
		logger.Warn("missing track", zap.Error(err))
	}
	if n := s.Retriggered(); n > 0 {
		logger.Debug("notes retriggered before release", zap.Int("count", n))
	}
	if n := s.Dropped(); n > 0 {
		logger.Debug("unterminated notes dropped", zap.Int("count", n))
	}

	ns := notes.FixLengths(s.Notes(dec.Division))

	opts := c.opts.Options
	if opts.Meter.IsZero() {
		opts.Meter = s.meter
	}
	if opts.Meter.IsZero() {
		opts.Meter = abc.DefaultMeter
	}
	if opts.Title == "" {
		opts.Title = s.title
	}
	if opts.Key == nil {
		k, penalty := key.BestForPitches(pitches(ns))
		logger.Debug("estimated key", zap.String("key", k.Name()), zap.Int("penalty", penalty))
		opts.Key = &k
	}

	logger.Debug("transcribing",
		zap.Int("notes", len(ns)),
		zap.Uint16("division", dec.Division),
		zap.Stringer("meter", opts.Meter),
	)
	return []byte(abc.Transcribe(ns, opts)), nil
}

func pitches(ns []notes.Note) []int {
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Pitch
	}
	return out
}
