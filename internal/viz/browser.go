package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/phasespace"
)

const (
	plotWidth  = 60
	plotHeight = 14
)

type page struct {
	name string
	x, y []float64
	// phase pages draw the field instead of a line plot
	phase bool
}

// Stat is a labelled value shown next to the plot.
type Stat struct {
	Label, Value string
}

// Browser is a Bubble Tea model that pages through the profiles of one
// run and, when a phase-space field is supplied, its contour map.
type Browser struct {
	title    string
	pages    []page
	field    phasespace.Field
	stats    []Stat
	cur      int
	theme    int
	styles   Styles
	width    int
	height   int
	showHelp bool
}

func NewBrowser(title string, p df.Profiles, field phasespace.Field, stats []Stat) Browser {
	pages := []page{
		{name: "density", x: p.Z, y: p.Density},
		{name: "asymmetry", x: p.ZPlus, y: p.A},
		{name: "mean v", x: p.Z, y: p.MeanV},
		{name: "mean v (relative)", x: p.Z, y: p.MeanVRelative},
		{name: "velocity dispersion", x: p.Z, y: p.VelocityDispersion},
	}
	if field.Rows > 0 && field.Cols > 0 {
		pages = append(pages, page{name: "phase space", phase: true})
	}

	return Browser{
		title:  title,
		pages:  pages,
		field:  field,
		stats:  stats,
		styles: NewStyles(Themes[0]),
		width:  plotWidth,
		height: plotHeight,
	}
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return b, tea.Quit
		case "right", "l", "tab":
			b.cur = (b.cur + 1) % len(b.pages)
		case "left", "h", "shift+tab":
			b.cur = (b.cur - 1 + len(b.pages)) % len(b.pages)
		case "t":
			b.theme = (b.theme + 1) % len(Themes)
			b.styles = NewStyles(Themes[b.theme])
		case "?":
			b.showHelp = !b.showHelp
		}
	case tea.WindowSizeMsg:
		b.width = max(20, min(msg.Width-30, 120))
		b.height = max(6, min(msg.Height-12, 40))
	}
	return b, nil
}

// Page returns the name of the page on screen.
func (b Browser) Page() string {
	return b.pages[b.cur].name
}

func (b Browser) View() string {
	p := b.pages[b.cur]
	st := b.styles

	var s strings.Builder
	s.WriteString(st.Header.Render(fmt.Sprintf("%s  %s  (%d/%d)",
		strings.ToUpper(b.title), p.name, b.cur+1, len(b.pages))) + "\n")

	var body string
	if p.phase {
		c := NewCanvas(b.width/2, b.height/2)
		c.DrawContours(b.field, 8)
		body = c.String()
	} else {
		body = PlotProfile(p.x, p.y, p.name, b.height, b.width)
	}

	var side strings.Builder
	for _, kv := range b.stats {
		side.WriteString(st.Label.Render(kv.Label) + st.Value.Render(kv.Value) + "\n")
	}
	if !p.phase {
		side.WriteString("\n" + st.Active.Render(Sparkline(p.y, 24)))
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		st.Graph.Render(body), st.Panel.Render(side.String())))

	help := "←/→:View  T:Theme  ?:Help  Q:Quit"
	if b.showHelp {
		help = "←/→ H/L  previous/next view\nTab      next view\nT        cycle theme (" +
			Themes[b.theme].Name + ")\n?        toggle help\nQ        quit"
	}
	s.WriteString("\n" + st.Help.Render(help))
	return s.String()
}
