package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/physics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

type TickMsg time.Time

// trace holds the per-step series the view plots. Model is copied by value
// on every update, so the series live behind a pointer.
type trace struct {
	movement *metrics.Movement
	energy   *metrics.Energy
	energies []float64
}

// Model is the live layout view.
type Model struct {
	layout   *layout.Layout
	title    string
	canvas   *Canvas
	camera   *Camera
	wire     *Wireframe
	theme    Theme
	styles   styles
	trace    *trace
	running  bool
	stable   bool
	steps    int
	perFrame int
	maxSteps int
	zoom     float64
	showHelp bool
}

// Option configures a Model.
type Option func(*Model)

// WithStepsPerFrame runs n simulation steps per tick.
func WithStepsPerFrame(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.perFrame = n
		}
	}
}

// WithMaxSteps stops stepping after n steps; 0 means no limit.
func WithMaxSteps(n int) Option {
	return func(m *Model) { m.maxSteps = n }
}

func WithTheme(name string) Option {
	return func(m *Model) {
		m.theme = GetTheme(name)
		m.styles = newStyles(m.theme)
	}
}

// NewModel builds a view over l. The view subscribes to l's step events.
func NewModel(l *layout.Layout, title string, opts ...Option) Model {
	tr := &trace{movement: metrics.NewMovement(historyCapacity)}
	tr.energy = metrics.NewEnergy(func() []*physics.Body {
		var out []*physics.Body
		l.ForEachBody(func(_ string, b *physics.Body) { out = append(out, b) })
		return out
	})

	m := Model{
		layout:   l,
		title:    title,
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		wire:     NewWireframe(),
		theme:    Themes[0],
		styles:   newStyles(Themes[0]),
		trace:    tr,
		running:  true,
		perFrame: 1,
		zoom:     1,
	}
	for _, opt := range opts {
		opt(&m)
	}

	l.Subscribe(func(e layout.Event) {
		if e.Type != layout.EventStep {
			return
		}
		tr.movement.OnStep(0, e.Move)
		tr.energy.OnStep(0, e.Move)
		tr.energies = append(tr.energies, tr.energy.Value())
		if len(tr.energies) > historyCapacity {
			tr.energies = tr.energies[1:]
		}
	})
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the layout.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step(1)
			}
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "+", "=":
			m.zoom = min(10, m.zoom*1.2)
			m.camera.ZoomIn()
		case "-", "_":
			m.zoom = max(0.1, m.zoom/1.2)
			m.camera.ZoomOut()
		case "0":
			m.zoom = 1
			m.camera.Zoom = 1
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step(m.perFrame)
		}
		return m, tick()
	}
	return m, nil
}

// step advances the layout by up to n steps, stopping early once it is
// stable or the step limit is reached.
func (m *Model) step(n int) {
	for i := 0; i < n; i++ {
		if m.stable || (m.maxSteps > 0 && m.steps >= m.maxSteps) {
			return
		}
		m.stable = m.layout.Step()
		m.steps++
	}
}

// Steps is the number of steps taken so far.
func (m Model) Steps() int { return m.steps }

// Stable reports whether the last step was stable.
func (m Model) Stable() bool { return m.stable }

// Running reports whether ticks advance the layout.
func (m Model) Running() bool { return m.running }

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(m.canvas.String())

	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case !m.running:
		s.WriteString(st.paused.Render("PAUSED"))
	case m.stable:
		s.WriteString(st.stable.Render("STABLE"))
	case m.maxSteps > 0 && m.steps >= m.maxSteps:
		s.WriteString(st.paused.Render("STEP LIMIT"))
	default:
		s.WriteString(st.moving.Render("RUNNING"))
	}
	s.WriteString("\n\n")

	hist := m.trace.movement.History()
	if len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Movement"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	g := m.layout.Graph()
	mean, _ := m.trace.movement.Summary()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Steps", fmt.Sprintf("%d", m.steps))
	row("Nodes", fmt.Sprintf("%d", g.NodeCount()))
	row("Links", fmt.Sprintf("%d", g.LinkCount()))
	row("Axes", physicsAxes(m.layout.Simulator().Dimensions()))
	row("Move", fmt.Sprintf("%.4f", m.layout.LastMove()))
	row("Mean move", fmt.Sprintf("%.4f", mean))
	row("Energy", fmt.Sprintf("%.3f", m.trace.energy.Value()))
	row("Force", fmt.Sprintf("%.3f", m.layout.ForceVectorLength()))
	row("Theme", m.theme.Name)
	s.WriteString(st.spark.Render(Sparkline(m.trace.energies, 30)) + "\n")

	s.WriteString(st.help.Render("\n─────────────────────\nSP:Pause S:Step Q:Quit\nT:Theme  +/-:Zoom ?:Help"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume layout      ║
║  S        - Single step when paused  ║
║  + / -    - Zoom in / out            ║
║  0        - Reset zoom               ║
║  x y z    - Rotate (3D and up)       ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func physicsAxes(dims int) string {
	s, err := physics.JoinAxes(dims, "{var}", " ")
	if err != nil {
		return "?"
	}
	return s
}

// draw projects the layout onto the canvas: the first two axes directly,
// or the first three through the camera when there are more.
func (m *Model) draw() {
	m.canvas.Clear()
	box := m.layout.GraphRect()
	g := m.layout.Graph()

	if m.layout.Simulator().Dimensions() < 3 {
		vp := NewViewport(box, m.canvas.DotWidth(), m.canvas.DotHeight(), m.zoom)
		g.ForEachLink(func(lk *graph.Link) {
			from, to, ok := m.layout.LinkPosition(lk.ID)
			if !ok {
				return
			}
			x0, y0 := vp.Map(from.Axis(0), from.Axis(1))
			x1, y1 := vp.Map(to.Axis(0), to.Axis(1))
			m.canvas.DrawLine(x0, y0, x1, y1)
		})
		m.layout.ForEachBody(func(_ string, b *physics.Body) {
			m.canvas.Dot(vp.Map(b.Pos.Axis(0), b.Pos.Axis(1)))
		})
		return
	}

	norm := NewNormalizer(box)
	m.wire.Clear()
	g.ForEachLink(func(lk *graph.Link) {
		if from, to, ok := m.layout.LinkPosition(lk.ID); ok {
			m.wire.AddEdge(norm.Apply(from), norm.Apply(to))
		}
	})
	m.layout.ForEachBody(func(_ string, b *physics.Body) {
		m.wire.AddPoint(norm.Apply(b.Pos))
	})
	Render3D(m.canvas, m.wire, m.camera)
}

// Run shows m full screen until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
