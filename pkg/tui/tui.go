// Package tui provides a terminal user interface for midi2abc
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/midi2abc/pkg/converter"
)

// Manuscript color scheme: ink on paper with a red-pen accent
var (
	inkBlue   = lipgloss.Color("#4A90D9")
	quillGold = lipgloss.Color("#E8C547")
	paper     = lipgloss.Color("#EDE6D6")
	slate     = lipgloss.Color("#2B2D42")
	redPen    = lipgloss.Color("#D7263D")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(paper).
			Background(slate).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(paper).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(inkBlue).
			Bold(true).
			PaddingLeft(2)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(quillGold).
				PaddingLeft(4)

	statusStyle = lipgloss.NewStyle().
			Foreground(quillGold).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(redPen).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(inkBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(inkBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is what a menu item does with the picked file
type Action int

const (
	ActionTranscribe Action = iota
	ActionInspect
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "MIDI → ABC", Description: "Transcribe a MIDI file into an .abc tune next to it", Action: ActionTranscribe},
	{Title: "Inspect MIDI", Description: "Show tracks, channels, tempo, meter and estimated key", Action: ActionInspect},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	opts         converter.Options
	selectedFile string
	action       MenuItem
	result       converter.ConversionResult
	width        int
	height       int
}

// jobDoneMsg signals that a transcription or inspection finished
type jobDoneMsg struct {
	result converter.ConversionResult
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// New creates a new TUI model that converts with opts
func New(opts converter.Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(inkBlue)

	return Model{
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		opts:       opts,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to see every message while it is open
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, runJob(m.action.Action, path, m.opts))
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.Height = msg.Height - 10
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case jobDoneMsg:
		m.state = StateResult
		m.result = msg.result
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		m.action = menuItems[m.menuIndex]
		if m.action.Action == ActionExit {
			return m, tea.Quit
		}
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.selectedFile = ""
		m.result = converter.ConversionResult{}
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func runJob(action Action, path string, opts converter.Options) tea.Cmd {
	return func() tea.Msg {
		if action == ActionInspect {
			sum, err := converter.InspectFile(path)
			return jobDoneMsg{converter.ConversionResult{Summary: sum, Error: err}}
		}

		outputFile := strings.TrimSuffix(path, filepath.Ext(path)) + ".abc"
		if err := converter.New(opts).ConvertFile(path, outputFile); err != nil {
			return jobDoneMsg{converter.ConversionResult{Error: err}}
		}
		return jobDoneMsg{converter.ConversionResult{Filename: outputFile, Format: converter.FormatABC}}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(descriptionStyle.Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	verb := "Transcribing"
	if m.action.Action == ActionInspect {
		verb = "Inspecting"
	}
	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s %s %s...\n", m.spinner.View(), verb, filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render("  " + m.action.Title))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.result.Error != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.action.Title, m.result.Error.Error())))
	case m.result.Summary != nil:
		s.WriteString(titleStyle.Render(" " + strings.ToUpper(filepath.Base(m.selectedFile)) + " "))
		s.WriteString("\n\n")
		s.WriteString(m.result.Summary.String())
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Transcription complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.result.Filename)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __ ___ ____ ___ ____        _    ____   ____
  |  \/  |_ _|  _ \_ _|___ \      / \  | __ ) / ___|
  | |\/| || || | | | |  __) |    / _ \ |  _ \| |
  | |  | || || |_| | | / __/    / ___ \| |_) | |___
  |_|  |_|___|____/___|_____|  /_/   \_\____/ \____|
`
	return lipgloss.NewStyle().Foreground(inkBlue).Render(logo)
}

// Run starts the TUI application
func Run(opts converter.Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
