package confirm

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wahlandcase/jira-release/internal/ui"
)

// buttonModel is a one-question bubbletea program with Yes/No buttons
type buttonModel struct {
	prompt    string
	selection   int // 0=Yes, 1=No
	answered    bool
	interrupted bool
}

func newButtonModel(prompt string) buttonModel {
	// No is preselected, matching the [y/N] default
	return buttonModel{prompt: strings.TrimSpace(prompt), selection: 1}
}

func (m buttonModel) Init() tea.Cmd {
	return nil
}

func (m buttonModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "right", "h", "l", "tab", "shift+tab":
		m.selection = 1 - m.selection
	case "y", "Y":
		m.selection = 0
		m.answered = true
		return m, tea.Quit
	case "n", "N", "esc", "q":
		m.selection = 1
		m.answered = true
		return m, tea.Quit
	case "ctrl+c":
		m.interrupted = true
		return m, tea.Quit
	case "enter", " ":
		m.answered = true
		return m, tea.Quit
	}

	return m, nil
}

func (m buttonModel) View() string {
	if m.answered || m.interrupted {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.Prompt(m.prompt))
	b.WriteString("\n\n")
	b.WriteString(ui.YesNoButtons(m.selection))
	b.WriteString("\n\n  ")
	b.WriteString(ui.KeyBinding("←/→", "choose", ui.ColorCyan))
	b.WriteString("  ")
	b.WriteString(ui.KeyBinding("enter", "confirm", ui.ColorCyan))
	b.WriteString("  ")
	b.WriteString(ui.KeyBinding("y/n", "answer", ui.ColorCyan))
	b.WriteString("\n")
	return b.String()
}

// Yes reports the final answer
func (m buttonModel) Yes() bool {
	return m.answered && m.selection == 0
}

// Buttons runs a small bubbletea program per question
type Buttons struct {
	in  io.Reader
	out io.Writer
}

// NewButtons creates a Buttons confirmer reading keys from in and drawing on out
func NewButtons(in io.Reader, out io.Writer) *Buttons {
	return &Buttons{in: in, out: out}
}

// Confirm shows the question and waits for a choice. Ctrl+C returns
// ErrInterrupted rather than a no.
func (b *Buttons) Confirm(prompt string) (bool, error) {
	p := tea.NewProgram(newButtonModel(prompt), tea.WithInput(b.in), tea.WithOutput(b.out))
	final, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := final.(buttonModel)
	if ok && m.interrupted {
		return false, ErrInterrupted
	}
	return ok && m.Yes(), nil
}
