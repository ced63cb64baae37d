package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func writeScale(t *testing.T, dir string) string {
	t.Helper()
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Scale"))
	tr.Add(0, smf.MetaMeter(4, 4))
	for _, k := range []uint8{60, 62, 64, 60} {
		tr.Add(0, midi.NoteOn(0, k, 100))
		tr.Add(96, midi.NoteOff(0, k))
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	require.NoError(t, s.Add(tr))
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	path := filepath.Join(dir, "scale.mid")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errb bytes.Buffer
	code = execute(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestTranscribeToStdout(t *testing.T) {
	in := writeScale(t, t.TempDir())

	code, out, _ := run(in)
	require.Equal(t, 0, code)
	assert.Equal(t, "X:1\nT:Scale\nM:4/4\nL:1/16\nK:C\nC4 D4 E4 C4 |]\n", out)

	code, out, _ = run("-f", in, "-m", "2/4", "--aux", "8", "-k", "G", "--title", "Custom", "-x", "5")
	require.Equal(t, 0, code)
	assert.Equal(t, "X:5\nT:Custom\nM:2/4\nL:1/8\nK:G\nC2 D2 | E2 C2 |]\n", out)
}

func TestTranscribeToFile(t *testing.T) {
	dir := t.TempDir()
	in := writeScale(t, dir)
	outPath := filepath.Join(dir, "scale.abc")

	code, out, _ := run(in, "-o", outPath)
	require.Equal(t, 0, code)
	assert.Empty(t, out)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "K:C\n")
}

func TestTranscribeToFileSniffsContent(t *testing.T) {
	dir := t.TempDir()
	in := writeScale(t, dir)
	raw := filepath.Join(dir, "scale.bin")
	require.NoError(t, os.Rename(in, raw))
	outPath := filepath.Join(dir, "scale.abc")

	code, _, stderr := run(raw, "-o", outPath)
	require.Equal(t, 0, code, stderr)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "T:Scale\n")

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("plain text"), 0644))
	code, _, _ = run(text, "-o", filepath.Join(dir, "notes.abc"))
	assert.Equal(t, 2, code)
	assert.NoFileExists(t, filepath.Join(dir, "notes.abc"))
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := writeScale(t, dir)
	junk := filepath.Join(dir, "junk.mid")
	require.NoError(t, os.WriteFile(junk, []byte("not a midi file"), 0644))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing input", nil, 2},
		{"nonexistent input", []string{filepath.Join(dir, "nope.mid")}, 2},
		{"input twice", []string{in, "-f", in}, 2},
		{"too many arguments", []string{in, in}, 2},
		{"unknown flag", []string{in, "--bogus"}, 2},
		{"bad key", []string{in, "-k", "h"}, 2},
		{"bad meter", []string{in, "-m", "x"}, 2},
		{"bad channels", []string{in, "--channels", "20"}, 2},
		{"not midi", []string{junk}, 1},
		{"not midi to file", []string{junk, "-o", filepath.Join(dir, "junk.abc")}, 1},
		{"output not abc", []string{in, "-o", filepath.Join(dir, "scale.mid.out")}, 2},
		{"output is midi", []string{in, "-o", filepath.Join(dir, "copy.mid")}, 2},
		{"nonexistent input to file", []string{filepath.Join(dir, "nope.mid"), "-o", filepath.Join(dir, "nope.abc")}, 2},
		{"unwritable output", []string{in, "-o", filepath.Join(dir, "missing", "scale.abc")}, 1},
		{"inspect without file", []string{"inspect"}, 2},
		{"inspect not midi", []string{"inspect", junk}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestInspect(t *testing.T) {
	in := writeScale(t, t.TempDir())

	code, out, _ := run("inspect", in)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Meter:      4/4\n")
	assert.Contains(t, out, "Scale")

	code, out, _ = run("inspect", "--json", in)
	require.Equal(t, 0, code)
	var sum struct {
		Notes int    `json:"notes"`
		Key   string `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 4, sum.Notes)
	assert.Equal(t, "c", sum.Key)
}

func TestHelpAndVersion(t *testing.T) {
	code, out, _ := run("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "--bpl")

	code, out, _ = run("--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dev")
}
