package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/geodesim/internal/config"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// Menu lists the presets and quits with the chosen one.
type Menu struct {
	presets []string
	cursor  int
	chosen  string
}

func NewMenu() Menu {
	return Menu{presets: config.All()}
}

func (m Menu) Chosen() string { return m.chosen }

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.presets[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func describe(id string) string {
	cfg := config.Lookup(id)
	if cfg == nil {
		return ""
	}
	return fmt.Sprintf("%s %s, M=%g", cfg.Body, cfg.Chart, cfg.Mass)
}

func (m Menu) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("GEODESIM") + "\n    " + subStyle.Render("worldlines in curved spacetime") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, id := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-18s", id)), descStyle.Render(describe(id))))
		} else {
			b.WriteString(fmt.Sprintf("    %s\n", idleStyle.Render(fmt.Sprintf("  %-18s", id))))
		}
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + idleStyle.Render(" navigate  ") + keyStyle.Render("enter") + idleStyle.Render(" run  ") + keyStyle.Render("q") + idleStyle.Render(" quit") + "\n")
	return b.String()
}

// PickPreset shows the menu and returns the chosen preset id, or "" if the
// user quit.
func PickPreset() (string, error) {
	final, err := tea.NewProgram(NewMenu(), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(Menu).Chosen(), nil
}
