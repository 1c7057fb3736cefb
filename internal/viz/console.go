package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/trajectory"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 300
	trailCapacity   = 200
)

// Feed is where the console reads the latest control tick from.
type Feed interface {
	Last() (pantilt.Record, bool)
}

type Options struct {
	Theme    string
	FPS      int
	Duration float64 // seconds, zero when unbounded
}

type frameMsg time.Time

type doneMsg struct{}

// Model is the bubbletea model of the console.
type Model struct {
	feed     Feed
	queue    *command.Queue
	done     <-chan struct{}
	st       styles
	canvas   *Canvas
	interval time.Duration
	duration float64

	last     pantilt.Record
	have     bool
	panHist  []float64
	tiltHist []float64
	trail    []pantilt.Pose
	sent     []command.Token
	dropped  int
	finished bool
	showHelp bool
}

// NewModel builds a console reading from feed and writing tokens to queue.
// done is closed when the rig has stopped.
func NewModel(feed Feed, queue *command.Queue, done <-chan struct{}, o Options) Model {
	fps := o.FPS
	if fps <= 0 {
		fps = 30
	}
	return Model{
		feed:     feed,
		queue:    queue,
		done:     done,
		st:       newStyles(GetTheme(o.Theme)),
		canvas:   NewCanvas(canvasWidth, canvasHeight, 1.6, 0.8),
		interval: time.Second / time.Duration(fps),
		duration: o.Duration,
		panHist:  make([]float64, 0, historyCapacity),
		tiltHist: make([]float64, 0, historyCapacity),
		trail:    make([]pantilt.Pose, 0, trailCapacity),
	}
}

// Run shows the console until the rig finishes, the user leaves with esc, or
// ctx is done.
func Run(ctx context.Context, feed Feed, queue *command.Queue, done <-chan struct{}, o Options) error {
	p := tea.NewProgram(NewModel(feed, queue, done, o), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.frame(), waitDone(m.done))
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func waitDone(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return doneMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finished {
			return m, tea.Quit
		}
		switch key := msg.String(); key {
		case "esc":
			return m, tea.Quit
		case "ctrl+c":
			m.push(command.Quit)
		case "?":
			m.showHelp = !m.showHelp
		default:
			if tok, ok := command.Parse(key); ok {
				m.push(tok)
			}
		}
	case frameMsg:
		m.poll()
		return m, m.frame()
	case doneMsg:
		m.poll()
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) push(tok command.Token) {
	if !m.queue.Push(tok) {
		m.dropped++
		return
	}
	m.sent = append(m.sent, tok)
	if len(m.sent) > 5 {
		m.sent = m.sent[1:]
	}
}

func (m *Model) poll() {
	rec, ok := m.feed.Last()
	if !ok || (m.have && rec.Tick == m.last.Tick) {
		return
	}
	m.last, m.have = rec, true
	m.panHist = appendCapped(m.panHist, rec.Act.Pan.Pos, historyCapacity)
	m.tiltHist = appendCapped(m.tiltHist, rec.Act.Tilt.Pos, historyCapacity)
	if rec.HasObject {
		m.trail = appendCapped(m.trail, rec.Object, trailCapacity)
	}
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	if len(s) >= capacity {
		s = append(s[:0], s[1:]...)
	}
	return append(s, v)
}

func (m Model) draw() string {
	c := m.canvas
	c.Clear()
	c.Rect(-trajectory.PanAmplitude, -trajectory.TiltAmplitude, trajectory.PanAmplitude, trajectory.TiltAmplitude)
	for _, p := range m.trail {
		c.Point(p.Pan, p.Tilt)
	}
	if m.have {
		c.Point(m.last.Cmd.Pan.Pos, m.last.Cmd.Tilt.Pos)
		c.Cross(m.last.Act.Pan.Pos, m.last.Act.Tilt.Pos, 2)
	}
	return c.String()
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.st.header.Render("PANTRACK") + "\n")

	status := "WAITING"
	switch {
	case m.finished:
		status = m.st.done.Render("STOPPED")
	case m.have:
		status = m.st.mode(m.last.Mode)
	}
	s.WriteString(status + "\n\n")

	r := m.last
	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", r.Time))
	if m.duration > 0 {
		row("Progress", progressBar(r.Time/m.duration, 20))
	}
	row("Trajectory", r.Kind)
	row("Cmd", fmt.Sprintf("%+.3f %+.3f", r.Cmd.Pan.Pos, r.Cmd.Tilt.Pos))
	row("Actual", fmt.Sprintf("%+.3f %+.3f", r.Act.Pan.Pos, r.Act.Tilt.Pos))
	if r.HasObject {
		row("Object", fmt.Sprintf("%+.3f %+.3f", r.Object.Pan, r.Object.Tilt))
	} else {
		row("Object", "-")
	}
	row("Tracked", fmt.Sprintf("%d", r.Tracked))

	sent := make([]string, len(m.sent))
	for i, tok := range m.sent {
		sent[i] = tok.String()
	}
	row("Sent", strings.Join(sent, " "))
	if m.dropped > 0 {
		row("Dropped", fmt.Sprintf("%d", m.dropped))
	}

	if len(m.panHist) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.panHist, m.tiltHist},
			asciigraph.Height(6), asciigraph.Width(36), asciigraph.Precision(2),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow),
			asciigraph.Caption("pan / tilt (rad)"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	if m.showHelp {
		s.WriteString(m.st.help.Render("s  scan\nz  go home\nt  track\nq  quit run\nctrl+c  quit run\nesc  leave console\n?  help"))
	} else {
		s.WriteString(m.st.help.Render("S:Scan Z:Home T:Track Q:Quit ?:Help"))
	}

	canvas := m.st.canvas.Render(m.draw())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.st.stats.Render(s.String()))
}
