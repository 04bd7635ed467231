package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/problems"
)

var problemInfo = map[string]string{
	"sphere":   "rotating point on S²",
	"heavytop": "Lie-Poisson heavy top",
	"pendulum": "uncoupled spherical pendula",
}

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateSim
)

// Menu picks a problem and method, then hands over to a live Model.
type Menu struct {
	state   int
	cursor  int
	names   []string
	methods []integrators.Info
	method  int
	h       float64
	err     error
	live    Model
}

func NewMenu(h float64) Menu {
	return Menu{
		names:   problems.Names(),
		methods: integrators.Infos(),
		method:  len(integrators.Infos()) - 1,
		h:       h,
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "left", "h":
		m.method = (m.method + len(m.methods) - 1) % len(m.methods)
	case "right", "l":
		m.method = (m.method + 1) % len(m.methods)
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m Menu) start() (Menu, tea.Cmd) {
	p, err := problems.New(m.names[m.cursor])
	if err != nil {
		m.err = err
		return m, nil
	}
	method, err := integrators.ParseMethod(m.methods[m.method].ID)
	if err != nil {
		m.err = err
		return m, nil
	}
	live, err := NewModel(p, method, p.DefaultState(), m.h)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state, m.err = live, stateSim, nil
	return m, live.Init()
}

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + TitleStyle.Render("LIESIM") + "\n    " +
		Subtle.Render("Runge-Kutta-Munthe-Kaas on homogeneous manifolds") + "\n    " +
		Subtle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), itemStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(problemInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dimStyle.Render(fmt.Sprintf("  %-10s", name)), dimStyle.Render(problemInfo[name])))
		}
	}
	info := m.methods[m.method]
	b.WriteString(fmt.Sprintf("\n    method  %s  %s\n", cursorStyle.Render("‹ "+info.ID+" ›"),
		Subtle.Render(fmt.Sprintf("%s, %d stages, order %d", info.Name, info.Stages, info.Order))))
	b.WriteString(fmt.Sprintf("    h       %s\n", itemStyle.Render(FormatValue(m.h))))
	if m.err != nil {
		b.WriteString("\n    " + StatusFailed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" problem  ") +
		keyStyle.Render("h/l") + dimStyle.Render(" method  ") +
		keyStyle.Render("enter") + dimStyle.Render(" run  ") +
		keyStyle.Render("esc") + dimStyle.Render(" back  ") +
		keyStyle.Render("q") + dimStyle.Render(" quit") + "\n")
	return b.String()
}

// RunMenu opens the problem picker.
func RunMenu(h float64) error {
	_, err := tea.NewProgram(NewMenu(h), tea.WithAltScreen()).Run()
	return err
}
