package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestInspect(t *testing.T) {
	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("Conductor"))
	conductor.Add(0, smf.MetaTempo(120))
	conductor.Add(0, smf.MetaMeter(6, 8))

	tune := header(melody(2, resolution/2, 57, 60, 64, 69), smf.MetaTrackSequenceName("Melody"))

	sum, err := Inspect(writeSMF(t, conductor, tune))
	require.NoError(t, err)

	assert.Equal(t, uint16(resolution), sum.Resolution)
	assert.InDelta(t, 120.0, sum.BPM, 0.01)
	assert.Equal(t, "6/8", sum.Meter)
	assert.Equal(t, "am", sum.Key)
	assert.Equal(t, 4, sum.Notes)
	assert.Equal(t, uint8(57), sum.LowestPitch)
	assert.Equal(t, uint8(69), sum.HighestPitch)

	require.Len(t, sum.Tracks, 2)
	assert.Equal(t, TrackSummary{Index: 0, Name: "Conductor"}, sum.Tracks[0])
	assert.Equal(t, TrackSummary{Index: 1, Name: "Melody", Notes: 4, Channels: []uint8{2}}, sum.Tracks[1])

	out := sum.String()
	assert.Contains(t, out, "Tempo:      120.00 BPM\n")
	assert.Contains(t, out, "Key:        am\n")
	assert.Contains(t, out, "Notes:      4 (pitches 57-69)\n")
	assert.Contains(t, out, "Melody")
	assert.Contains(t, out, "channels 2")
}

func TestInspectEmpty(t *testing.T) {
	sum, err := Inspect(writeSMF(t, smf.Track{}))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Notes)
	assert.Equal(t, "c", sum.Key)
	assert.Contains(t, sum.String(), "(unnamed)")
}

func TestInspectFile(t *testing.T) {
	_, err := InspectFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Inspect([]byte("not midi"))
	assert.Error(t, err)
}
