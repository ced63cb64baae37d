// Package converter provides conversion from Standard MIDI Files to ABC notation
package converter

import (
	"github.com/james-see/midi2abc/pkg/abc"
	"github.com/james-see/midi2abc/pkg/fraction"
)

// Options configures a conversion
type Options struct {
	abc.Options

	// Inclusive range of MIDI channels whose notes are transcribed
	ChannelMin uint8
	ChannelMax uint8
}

// DefaultOptions returns the options used when none are given. The meter
// is left unset so that the file's own time signature applies.
func DefaultOptions() Options {
	return Options{
		Options: abc.Options{
			Index:       1,
			UnitLength:  fraction.New(1, 16),
			BarsPerLine: 4,
		},
		ChannelMin: 0,
		ChannelMax: 15,
	}
}

// ConversionResult holds the result of a conversion
type ConversionResult struct {
	Filename string
	Format   Format
	Summary  *Summary
	Error    error
}

// Converter handles format conversions
type Converter struct {
	opts Options
}

// New creates a new Converter with the given options
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// GetOptions returns the current options
func (c *Converter) GetOptions() Options {
	return c.opts
}

// SetOptions replaces the options used for later conversions
func (c *Converter) SetOptions(opts Options) {
	c.opts = opts
}
