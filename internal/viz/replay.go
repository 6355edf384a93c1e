package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/iterlab/internal/dynamo"
)

const DefaultInterval = 100 * time.Millisecond

type tickMsg time.Time

// Replay is a bubbletea model that steps through a recorded trace.
type Replay struct {
	title    string
	trace    *dynamo.Trace
	diffs    []float64
	pos      int
	paused   bool
	help     bool
	interval time.Duration
	theme    Theme
	styles   styles
	bar      progress.Model
	width    int
	height   int
}

type ReplayOption func(*Replay)

func WithInterval(d time.Duration) ReplayOption {
	return func(r *Replay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithTheme(name string) ReplayOption {
	return func(r *Replay) { r.setTheme(GetTheme(name)) }
}

func NewReplay(title string, trace *dynamo.Trace, opts ...ReplayOption) *Replay {
	r := &Replay{
		title:    title,
		trace:    trace,
		diffs:    Differences(trace),
		interval: DefaultInterval,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		width:    DefaultWidth,
		height:   24,
	}
	r.setTheme(Themes[0])
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Replay) setTheme(t Theme) {
	r.theme = t
	r.styles = stylesFor(t)
}

// Pos is the index of the trace point on screen.
func (r *Replay) Pos() int       { return r.pos }
func (r *Replay) Paused() bool   { return r.paused }
func (r *Replay) Theme() Theme   { return r.theme }
func (r *Replay) Finished() bool { return r.pos >= r.last() }

func (r *Replay) last() int { return max(r.trace.Len()-1, 0) }

func (r *Replay) tick() tea.Cmd {
	return tea.Tick(r.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (r *Replay) Init() tea.Cmd { return r.tick() }

func (r *Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width, r.height = msg.Width, msg.Height
		r.bar.Width = max(msg.Width-20, 10)
		return r, nil

	case tickMsg:
		if !r.paused && !r.Finished() {
			r.pos++
		}
		return r, r.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case " ":
			r.paused = !r.paused
		case "]":
			r.pos = min(r.pos+1, r.last())
		case "[":
			r.pos = max(r.pos-1, 0)
		case "end":
			r.pos = r.last()
		case "r", "home":
			r.pos = 0
		case "t":
			r.setTheme(r.theme.Next())
		case "?":
			r.help = !r.help
		}
	}
	return r, nil
}

func (r *Replay) View() string {
	if r.trace.Len() == 0 {
		return r.styles.hint.Render("empty trace") + "\n"
	}
	s := r.styles
	point := r.trace.Points[r.pos]

	var b strings.Builder
	b.WriteString(s.header.Render(r.title))
	b.WriteString("\n")

	status := s.status.Render("PLAYING")
	if r.paused {
		status = s.paused.Render("PAUSED")
	} else if r.Finished() {
		status = s.status.Render("DONE")
	}
	fields := []string{
		s.label.Render("step ") + s.value.Render(fmt.Sprintf("%d/%d", point.Step, r.last())),
	}
	for i, c := range r.trace.Columns {
		if i < len(point.Value) {
			fields = append(fields, s.label.Render(c+" ")+s.value.Render(fmt.Sprintf("%.6f", point.Value[i])))
		}
	}
	fields = append(fields, status)
	b.WriteString(strings.Join(fields, "   "))
	b.WriteString("\n\n")

	b.WriteString(s.panel.Render(r.graph()))
	b.WriteString("\n")

	if r.pos > 0 && len(r.diffs) > 0 {
		b.WriteString(s.label.Render("difference "))
		b.WriteString(Sparkline(r.diffs[:r.pos], min(r.pos, max(r.width-20, 10))))
		b.WriteString("\n")
	}

	frac := 1.0
	if r.last() > 0 {
		frac = float64(r.pos) / float64(r.last())
	}
	b.WriteString(r.bar.ViewAs(frac))
	b.WriteString("\n")

	if r.help {
		b.WriteString(s.hint.Render("space pause  [ ] step  r restart  end jump  t theme  q quit"))
	} else {
		b.WriteString(s.hint.Render("? help"))
	}
	b.WriteString("\n")
	return b.String()
}

// graph draws the trace so far. Two-column traces get the (x, y) path on a
// Braille canvas, others a line chart of the first column.
func (r *Replay) graph() string {
	visible := &dynamo.Trace{Columns: r.trace.Columns, Points: r.trace.Points[:r.pos+1]}
	height := max(min(r.height-12, DefaultHeight), 4)

	if len(r.trace.Columns) == 2 {
		xs, _ := Column(visible, r.trace.Columns[0])
		ys, _ := Column(visible, r.trace.Columns[1])
		c := NewCanvas(max(r.width/2, 20), height)
		c.Path(xs, ys)
		return r.styles.graph.Render(strings.TrimRight(c.String(), "\n"))
	}

	series, _ := Column(visible, r.trace.Columns[0])
	if !anyFinite(series) {
		return r.styles.hint.Render("no finite values")
	}
	if len(series) == 1 {
		series = append(series, series[0])
	}
	return r.styles.graph.Render(asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(max(r.width-20, 20)),
		asciigraph.Caption(r.trace.Columns[0]),
	))
}

// Run replays the trace until the user quits.
func Run(title string, trace *dynamo.Trace, opts ...ReplayOption) error {
	_, err := tea.NewProgram(NewReplay(title, trace, opts...), tea.WithAltScreen()).Run()
	return err
}

var _ tea.Model = (*Replay)(nil)
