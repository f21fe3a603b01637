package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/forcelayout/internal/layout"
)

// Builder creates the layout for a generator and node count.
type Builder func(generator string, n int) (*layout.Layout, error)

const (
	stateMenu = iota
	stateLive
)

// Picker lets the user choose a generated graph and then shows its layout.
type Picker struct {
	state      int
	cursor     int
	generators []string
	n          int
	build      Builder
	err        error
	opts       []Option
	live       Model
}

func NewPicker(generators []string, n int, build Builder, opts ...Option) Picker {
	return Picker{generators: generators, n: max(n, 1), build: build, opts: opts}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.generators)-1 {
			p.cursor++
		}
	case "left", "h":
		p.n = max(1, p.n-1)
	case "right", "l":
		p.n++
	case "H":
		p.n = max(1, p.n-10)
	case "L":
		p.n += 10
	case "enter", " ":
		if len(p.generators) == 0 {
			return p, nil
		}
		name := p.generators[p.cursor]
		l, err := p.build(name, p.n)
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.live = NewModel(l, fmt.Sprintf("%s (%d)", name, p.n), p.opts...)
		p.state = stateLive
		return p, p.live.Init()
	}
	return p, nil
}

// Live returns the layout view once a graph has been chosen.
func (p Picker) Live() (Model, bool) { return p.live, p.state == stateLive }

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("FORCELAYOUT") + "\n    " + sub.Render("force-directed graph layout") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range p.generators {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", h.Render("▸"), sel.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", sub.Render(name)))
		}
	}
	b.WriteString(fmt.Sprintf("\n    nodes %s\n", sel.Render(fmt.Sprintf("%d", p.n))))
	if p.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" select  ") + key.Render("h/l") + sub.Render(" nodes  ") +
		key.Render("enter") + sub.Render(" start  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the picker full screen until the user quits.
func RunInteractive(p Picker) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
