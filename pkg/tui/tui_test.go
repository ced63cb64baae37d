package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/midi2abc/pkg/converter"
)

func writeMIDI(t *testing.T, dir string) string {
	t.Helper()
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(3, 4))
	for _, k := range []uint8{67, 64, 60} {
		tr.Add(0, midi.NoteOn(0, k, 90))
		tr.Add(96, midi.NoteOff(0, k))
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)
	require.NoError(t, s.Add(tr))
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	path := filepath.Join(dir, "tune.mid")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestMenuNavigation(t *testing.T) {
	m := New(converter.DefaultOptions())
	assert.Contains(t, m.View(), "MIDI → ABC")

	m, _ = press(t, m, up)
	assert.Equal(t, 0, m.menuIndex)

	m, _ = press(t, m, down, down, down)
	assert.Equal(t, len(menuItems)-1, m.menuIndex)

	_, cmd := press(t, m, enter)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMenuOpensFilePicker(t *testing.T) {
	m, _ := press(t, New(converter.DefaultOptions()), down, enter)
	assert.Equal(t, StateFilePicker, m.state)
	assert.Equal(t, ActionInspect, m.action.Action)
	assert.Contains(t, m.View(), "SELECT MIDI FILE")

	m, _ = press(t, m, esc)
	assert.Equal(t, StateMenu, m.state)
}

func TestRunJobTranscribes(t *testing.T) {
	path := writeMIDI(t, t.TempDir())

	msg := runJob(ActionTranscribe, path, converter.DefaultOptions())()
	done, ok := msg.(jobDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.result.Error)

	want := filepath.Join(filepath.Dir(path), "tune.abc")
	assert.Equal(t, want, done.result.Filename)
	written, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "X:1\nM:3/4\nL:1/16\nK:C\nG4 E4 C4 |]\n", string(written))

	m := New(converter.DefaultOptions())
	m.selectedFile = path
	next, _ := m.Update(done)
	m = next.(Model)
	assert.Equal(t, StateResult, m.state)
	assert.Contains(t, m.View(), "Output: tune.abc")

	m, _ = press(t, m, enter)
	assert.Equal(t, StateMenu, m.state)
	assert.Empty(t, m.selectedFile)
}

func TestRunJobInspects(t *testing.T) {
	path := writeMIDI(t, t.TempDir())

	done := runJob(ActionInspect, path, converter.DefaultOptions())().(jobDoneMsg)
	require.NoError(t, done.result.Error)
	require.NotNil(t, done.result.Summary)
	assert.Equal(t, 3, done.result.Summary.Notes)
	assert.Equal(t, "3/4", done.result.Summary.Meter)

	m := New(converter.DefaultOptions())
	m.action = menuItems[1]
	next, _ := m.Update(done)
	assert.Contains(t, next.View(), "Key:")
}

func TestRunJobReportsErrors(t *testing.T) {
	done := runJob(ActionTranscribe, filepath.Join(t.TempDir(), "missing.mid"), converter.DefaultOptions())().(jobDoneMsg)
	require.Error(t, done.result.Error)

	m := New(converter.DefaultOptions())
	m.action = menuItems[0]
	next, _ := m.Update(done)
	assert.Contains(t, next.View(), "MIDI → ABC failed")

	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.mid")
	require.NoError(t, os.WriteFile(junk, []byte("not midi"), 0644))
	done = runJob(ActionTranscribe, junk, converter.DefaultOptions())().(jobDoneMsg)
	assert.Error(t, done.result.Error)
	assert.NoFileExists(t, filepath.Join(dir, "junk.abc"))
}
