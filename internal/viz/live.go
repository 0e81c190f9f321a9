package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/experiment"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 2000
	graphPoints     = 60
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Feed hands samples from the driver goroutine to the UI.
type Feed struct {
	ctx     context.Context
	samples chan experiment.Sample
	err     error
}

func NewFeed(ctx context.Context, buffer int) *Feed {
	return &Feed{ctx: ctx, samples: make(chan experiment.Sample, buffer)}
}

// OnSample implements experiment.Observer. It gives up when ctx is done.
func (f *Feed) OnSample(s experiment.Sample) {
	select {
	case f.samples <- s:
	case <-f.ctx.Done():
	}
}

// Finish must be called exactly once, after the last OnSample.
func (f *Feed) Finish(err error) {
	f.err = err
	close(f.samples)
}

type SampleMsg experiment.Sample

type DoneMsg struct{ Err error }

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-f.samples
		if !ok {
			return DoneMsg{Err: f.err}
		}
		return SampleMsg(s)
	}
}

// Model is the live view of one run.
type Model struct {
	title    string
	horizon  float64
	feed     *Feed
	cancel   context.CancelFunc
	canvas   *Canvas
	camera   *Camera
	trail    []Vec3
	radii    []float64
	last     experiment.Sample
	count    int
	switches int
	done     bool
	err      error
	showHelp bool
}

func NewModel(title string, horizon float64, feed *Feed, cancel context.CancelFunc) Model {
	return Model{
		title:   title,
		horizon: horizon,
		feed:    feed,
		cancel:  cancel,
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		trail:   make([]Vec3, 0, historyCapacity),
		radii:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return m.feed.wait()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "x":
			m.camera.Tilt += 0.1
		case "X":
			m.camera.Tilt -= 0.1
		case "z":
			m.camera.Spin += 0.1
		case "Z":
			m.camera.Spin -= 0.1
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case SampleMsg:
		m.add(experiment.Sample(msg))
		return m, m.feed.wait()
	case DoneMsg:
		m.done, m.err = true, msg.Err
	}
	return m, nil
}

func (m *Model) add(s experiment.Sample) {
	if m.count > 0 && s.Chart != m.last.Chart {
		m.switches++
	}
	m.last = s
	m.count++

	var x manifold.Coords
	copy(x[:], s.State)
	X, Y, Z := spacetime.Spatial(s.Chart, x)
	p := Vec3{X, Y, Z}
	m.camera.Fit(p)

	m.trail = append(m.trail, p)
	if len(m.trail) > historyCapacity {
		m.trail = m.trail[1:]
	}
	m.radii = append(m.radii, x[1])
	if len(m.radii) > historyCapacity {
		m.radii = m.radii[1:]
	}
}

// downsample keeps at most n evenly spaced values.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

func (m Model) View() string {
	m.canvas.Clear()
	DrawRing(m.canvas, m.camera, m.horizon)
	DrawTrail(m.canvas, m.camera, m.trail)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.done && m.err != nil:
		s.WriteString(failStyle.Render("FAILED") + "\n" + valueStyle.Render(m.err.Error()) + "\n\n")
	case m.done:
		s.WriteString(okStyle.Render("DONE") + "\n\n")
	default:
		s.WriteString("RUNNING\n\n")
	}

	if len(m.radii) > 1 {
		graph := asciigraph.Plot(downsample(m.radii, graphPoints), asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("r"))
		s.WriteString(graphStyle.Render(graph) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	r := 0.0
	if len(m.radii) > 0 {
		r = m.radii[len(m.radii)-1]
	}
	row("Iteration", fmt.Sprintf("%d", m.last.Iteration))
	row("Lambda", fmt.Sprintf("%.4f", m.last.Lambda))
	row("r", fmt.Sprintf("%.6g", r))
	row("Chart", m.last.Chart)
	row("Switches", fmt.Sprintf("%d", m.switches))
	row("Samples", fmt.Sprintf("%d", m.count))

	s.WriteString(helpStyle.Render("─────────────────────\nx/z:Rotate +/-:Zoom ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  x / X   tilt the view
  z / Z   spin the view
  + / -   zoom
  q       quit and cancel the run
  ?       toggle this help
` + "\n" + mainView
	}
	return mainView
}

// Live runs cfg in the background and shows it until the user quits.
func Live(ctx context.Context, title string, cfg *config.Config, reg *experiment.Registry, env experiment.Env) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg = cfg.Clone()
	if cfg.Run.RecordEvery == 0 {
		cfg.Run.RecordEvery = 1
	}
	feed := NewFeed(ctx, 256)
	env.Samples = feed
	go func() {
		_, err := experiment.Execute(ctx, cfg, reg, env)
		feed.Finish(err)
	}()

	_, err := tea.NewProgram(NewModel(title, cfg.Params().Horizon(), feed, cancel), tea.WithAltScreen()).Run()
	return err
}
