package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"csvchat/internal/domain"
)

// SessionPort is the TUI-facing subset of the session.
type SessionPort interface {
	Ask(question string) string
	LoadFile(path string) error
	Reset()
	Loaded() bool
	ExportCSV(w io.Writer) error
	DumpTranscript(w io.Writer) error
	Transcript() []domain.Message
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	session  SessionPort
	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool
}

// New creates a new chat model instance.
func New(session SessionPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your data, or :load file.csv"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session:  session,
		input:    ti,
		viewport: vp,
		status:   "Commands: :load <file.csv>  :export <file.csv>  :dump <file.txt>  :reset  :quit",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				break
			}
			m.input.SetValue("")
			if strings.HasPrefix(line, ":") {
				return m.runCommand(line)
			}
			m.session.Ask(line)
			m.status = "Answered. Ask another question."
			m.refresh()
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return m, tea.Quit
	case ":reset":
		m.session.Reset()
		m.status = "Session reset."
	case ":load":
		if len(fields) < 2 {
			m.status = "Usage: :load <file.csv>"
			break
		}
		if err := m.session.LoadFile(fields[1]); err != nil {
			m.status = "Load failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Loaded %s. Ask away.", fields[1])
		}
	case ":export":
		if len(fields) < 2 {
			m.status = "Usage: :export <file.csv>"
			break
		}
		if err := m.exportTo(fields[1]); err != nil {
			m.status = "Export failed: " + err.Error()
		} else {
			m.status = "Exported to " + fields[1]
		}
	case ":dump":
		if len(fields) < 2 {
			m.status = "Usage: :dump <file.txt>"
			break
		}
		if err := writeTo(fields[1], m.session.DumpTranscript); err != nil {
			m.status = "Dump failed: " + err.Error()
		} else {
			m.status = "Transcript written to " + fields[1]
		}
	default:
		m.status = "Unknown command: " + fields[0]
	}
	m.refresh()
	return m, nil
}

func (m Model) exportTo(path string) error {
	if !m.session.Loaded() {
		return fmt.Errorf("no dataset loaded")
	}
	return writeTo(path, m.session.ExportCSV)
}

func writeTo(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("CSV Data Analyst")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	turns := m.session.Transcript()
	if len(turns) == 0 {
		return "No conversation yet. Load a CSV with :load and ask a question."
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := assistantLabelStyle.Render("analyst")
		if turn.Role == domain.RoleUser {
			label = userLabelStyle.Render("you")
		}
		b.WriteString(label + "\n" + turn.Content)
	}
	return b.String()
}

var (
	transcriptBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userLabelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
