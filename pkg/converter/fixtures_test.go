package converter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const resolution = 96

// melody returns a track of back-to-back notes on one channel, each
// lasting the given number of ticks.
func melody(channel uint8, ticks uint32, keys ...uint8) smf.Track {
	var tr smf.Track
	for _, k := range keys {
		tr.Add(0, midi.NoteOn(channel, k, 100))
		tr.Add(ticks, midi.NoteOff(channel, k))
	}
	return tr
}

// header prepends meta events to a track.
func header(tr smf.Track, metas ...smf.Message) smf.Track {
	var out smf.Track
	for _, m := range metas {
		out.Add(0, m)
	}
	return append(out, tr...)
}

func writeSMF(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)
	for _, tr := range tracks {
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}
