package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/pantilt"
)

type fakeFeed struct {
	rec pantilt.Record
	ok  bool
}

func (f *fakeFeed) Last() (pantilt.Record, bool) { return f.rec, f.ok }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestKeysPushTokens(t *testing.T) {
	q := command.NewQueue(4)
	m := NewModel(&fakeFeed{}, q, nil, Options{})

	for _, k := range []string{"s", "z", "t", "x", "q"} {
		m, _ = update(t, m, key(k))
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, []command.Token{command.Scan, command.Home, command.Track, command.Quit}, q.Poll(0))
	assert.Equal(t, 1, m.dropped, "the fifth token overflows a queue of four")
}

func TestFramePollsFeed(t *testing.T) {
	feed := &fakeFeed{}
	m := NewModel(feed, command.NewQueue(0), nil, Options{})

	m, cmd := update(t, m, frameMsg{})
	assert.NotNil(t, cmd)
	assert.False(t, m.have)

	feed.rec = pantilt.Record{
		Tick: 1, Time: 0.01, Mode: "tracking", Kind: "spline",
		Act:       pantilt.Pair{Pan: pantilt.Sample{Pos: 0.2}, Tilt: pantilt.Sample{Pos: 0.1}},
		Object:    pantilt.Pose{Pan: 0.3, Tilt: 0.1},
		HasObject: true,
		Tracked:   2,
	}
	feed.ok = true
	m, _ = update(t, m, frameMsg{})
	m, _ = update(t, m, frameMsg{})
	assert.True(t, m.have)
	assert.Len(t, m.panHist, 1, "the same tick is not recorded twice")
	assert.Len(t, m.trail, 1)

	feed.rec.Tick = 2
	m, _ = update(t, m, frameMsg{})
	assert.Equal(t, []float64{0.2, 0.2}, m.panHist)

	view := m.View()
	assert.Contains(t, view, "TRACKING")
	assert.Contains(t, view, "spline")
	assert.Contains(t, view, "+0.300 +0.100")
}

func TestDoneQuits(t *testing.T) {
	done := make(chan struct{})
	close(done)
	m := NewModel(&fakeFeed{}, command.NewQueue(0), done, Options{Theme: "retro"})

	msg := waitDone(done)()
	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	assert.True(t, m.finished)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Contains(t, m.View(), "STOPPED")
}

func TestHistoryCapped(t *testing.T) {
	var s []float64
	for i := 0; i < historyCapacity+10; i++ {
		s = appendCapped(s, float64(i), historyCapacity)
	}
	require.Len(t, s, historyCapacity)
	assert.Equal(t, 10.0, s[0])
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(10, 5, 1, 1)
	x, y, ok := c.Dot(-1, 1)
	require.True(t, ok)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y, ok = c.Dot(1, -1)
	require.True(t, ok)
	assert.Equal(t, 19, x)
	assert.Equal(t, 19, y)

	_, _, ok = c.Dot(1.5, 0)
	assert.False(t, ok)

	c.Point(-1, 1)
	assert.Equal(t, rune(blank|0x1), c.Grid[0][0])

	c.Clear()
	c.Rect(-2, -2, 2, 2)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.NotEqual(t, rune(blank), c.Grid[0][5], "top edge is drawn")
	assert.Equal(t, rune(blank), c.Grid[2][5], "inside stays empty")

	assert.Equal(t, ThemeDefault, GetTheme("nope"))
	assert.Equal(t, []string{"default", "retro", "mono"}, ThemeNames())
}
