package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
	"github.com/san-kum/liesim/internal/problems"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	trailCapacity   = 200
)

// Snapshot is an accepted state kept for replay.
type Snapshot struct {
	State  dynamo.State
	Time   float64
	Energy float64
	Drift  float64
}

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(46)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps a problem with an RKMK method on every tick and draws the state
// on a braille canvas.
type Model struct {
	problem  problems.Problem
	method   integrators.Method
	manifold manifold.Manifold
	stepper  integrators.Stepper

	y, y0    dynamo.State
	t, h     float64
	inv0     []float64
	err      error
	notice   string
	running  bool
	showHelp bool
	theme    Theme

	canvas *Canvas
	camera *Camera
	trail  []r3.Vec

	history  []Snapshot
	playHead int

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
}

// NewModel prepares a live run of p from y0 with step h.
func NewModel(p problems.Problem, method integrators.Method, y0 dynamo.State, h float64) (Model, error) {
	if !(h > 0) || math.IsInf(h, 0) {
		return Model{}, fmt.Errorf("h = %v: %w", h, dynamo.ErrInvalidStep)
	}
	m, err := manifold.New(p.Manifold(), y0)
	if err != nil {
		return Model{}, err
	}
	stepper, err := integrators.New(method, m)
	if err != nil {
		return Model{}, err
	}

	params := p.GetParams()
	// Resizing parameters would change the manifold dimension mid-run.
	delete(params, "pendula")
	keys := make([]string, 0, len(params))
	initial := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initial[k] = v
	}
	sort.Strings(keys)

	model := Model{
		problem:       p,
		method:        method,
		manifold:      m,
		stepper:       stepper,
		y:             m.Y(),
		y0:            m.Y(),
		h:             h,
		inv0:          m.Invariant(m.Y()),
		running:       true,
		theme:         Themes[0],
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		trail:         make([]r3.Vec, 0, trailCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
	}
	model.record()
	return model, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = nextTheme(m.theme)
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
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step advances one RKMK step. A failed step stops the run and keeps the
// last accepted state.
func (m *Model) step() {
	next, err := m.stepper.Step(m.problem.Field, m.t, m.y, m.h)
	if err == nil {
		err = m.manifold.SetY(next)
	}
	if err != nil {
		m.err = &dynamo.StepError{Step: len(m.history), Time: m.t, Wrapped: err}
		m.running = false
		return
	}
	m.y = m.manifold.Y()
	m.t += m.h
	m.record()
}

func (m *Model) record() {
	snap := Snapshot{State: m.y.Clone(), Time: m.t, Energy: math.NaN(), Drift: m.drift(m.y)}
	if e, ok := m.problem.(problems.Hamiltonian); ok {
		snap.Energy = e.Energy(m.y)
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.trail = append(m.trail, m.tracer(m.y))
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

// drift is the largest deviation of an invariant from its initial value.
func (m *Model) drift(y dynamo.State) float64 {
	var d float64
	for i, v := range m.manifold.Invariant(y) {
		d = math.Max(d, math.Abs(v-m.inv0[i]))
	}
	return d
}

func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 {
		val = 0.05 * (factor - 1)
	}
	if err := m.problem.SetParam(key, val); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.params[key] = val
}

// reset restores the initial state and parameters.
func (m *Model) reset() {
	m.err = nil
	for k, v := range m.initialParams {
		m.params[k] = v
		if err := m.problem.SetParam(k, v); err != nil && m.err == nil {
			m.err = fmt.Errorf("reset: %w", err)
		}
	}
	if err := m.manifold.SetY(m.y0); err != nil && m.err == nil {
		m.err = fmt.Errorf("reset: %w", err)
	}
	m.y = m.manifold.Y()
	m.t = 0
	m.notice = ""
	m.running = m.err == nil
	m.trail = m.trail[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
}

// current returns the snapshot on screen.
func (m Model) current() Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.history[len(m.history)-1]
}

// tracer is the point whose path the trail follows.
func (m *Model) tracer(y dynamo.State) r3.Vec {
	switch m.problem.Manifold() {
	case manifold.HeavyTop:
		beta := r3.Vec{X: y[3], Y: y[4], Z: y[5]}
		if n := r3.Norm(beta); n > 0 {
			return r3.Scale(1/n, beta)
		}
		return beta
	case manifold.SphericalPendulum:
		return r3.Scale(m.length(len(y)/6-1), r3.Vec{X: y[len(y)-6], Y: y[len(y)-5], Z: y[len(y)-4]})
	default:
		return leading3(y)
	}
}

func (m *Model) length(i int) float64 {
	if v, ok := m.problem.GetParams()[fmt.Sprintf("length%d", i)]; ok {
		return v
	}
	return 1
}

func leading3(y dynamo.State) r3.Vec {
	var v [3]float64
	copy(v[:], y)
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func (m *Model) draw(y dynamo.State) {
	m.canvas.Clear()
	cam := m.camera
	for _, p := range m.trail {
		cam.Point(m.canvas, p, 0)
	}
	switch m.problem.Manifold() {
	case manifold.Sphere:
		cam.Globe(m.canvas, 1)
		cam.Point(m.canvas, leading3(y), 1)
	case manifold.HeavyTop:
		cam.Globe(m.canvas, 1)
		mu := r3.Vec{X: y[0], Y: y[1], Z: y[2]}
		if n := r3.Norm(mu); n > 0 {
			cam.Line(m.canvas, r3.Vec{}, r3.Scale(1.2/n, mu))
		}
		cam.Point(m.canvas, m.tracer(y), 1)
	case manifold.SphericalPendulum:
		cam.Circle(m.canvas, r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, 0.25)
		for i := 0; 6*i+6 <= len(y); i++ {
			bob := r3.Scale(m.length(i), r3.Vec{X: y[6*i], Y: y[6*i+1], Z: y[6*i+2]})
			cam.Line(m.canvas, r3.Vec{}, bob)
			cam.Point(m.canvas, bob, 1)
		}
	}
	cam.Point(m.canvas, r3.Vec{}, 0)
}

func (m Model) View() string {
	snap := m.current()
	m.draw(snap.State)
	accent := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	canvasView := canvasStyle.Foreground(m.theme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(accent.Render(strings.ToUpper(m.problem.Name())) + " " +
		Subtle.Render(m.problem.Manifold().String()+" / "+m.method.String()) + "\n\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.3f", snap.Time)) + "\n")
	s.WriteString(MetricLabel.Render("Step") + MetricValue.Render(FormatValue(m.h)) + "\n")
	if !math.IsNaN(snap.Energy) {
		s.WriteString(MetricLabel.Render("Energy") + MetricValue.Render(FormatValue(snap.Energy)) + "\n")
	}
	s.WriteString(MetricLabel.Render("Inv. drift") + MetricValue.Render(FormatValue(snap.Drift)) + "\n")

	if series := m.energySeries(); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Accent).Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		s.WriteString(MetricLabel.Render("  (none)") + "\n")
	}
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %s", k, FormatValue(m.params[k]))
		if i == m.selected {
			s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(wrap(m.err.Error(), 40)) + "\n")
	} else if m.notice != "" {
		s.WriteString("\n" + StatusPaused.Render(wrap(m.notice, 40)) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help\n[ ]:Replay ↑↓:Tune xyz:Rotate"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.playHead != -1:
		back := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.2f)", back))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.2f)", back))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) energySeries() []float64 {
	out := make([]float64, 0, len(m.history))
	for _, s := range m.history {
		if !math.IsNaN(s.Energy) {
			out = append(out, s.Energy)
		}
	}
	return out
}

func wrap(s string, n int) string {
	r := []rune(s)
	var b strings.Builder
	for len(r) > n {
		b.WriteString(string(r[:n]) + "\n")
		r = r[n:]
	}
	b.WriteString(string(r))
	return b.String()
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset state and params   ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [ ]      - Step through history     ║
║  x y z    - Rotate camera (shift: -) ║
║  + -      - Zoom                     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
`

// RunLive opens the live view in the alternate screen.
func RunLive(p problems.Problem, method integrators.Method, y0 dynamo.State, h float64) error {
	model, err := NewModel(p, method, y0, h)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
