package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/spheregrid/pkg/host/memory"
	"github.com/matzehuels/spheregrid/pkg/pipeline"
	"github.com/matzehuels/spheregrid/pkg/render"
	"github.com/matzehuels/spheregrid/pkg/render/sink"
	"github.com/matzehuels/spheregrid/pkg/sphere"
)

// A terminal cell covers cellWidth x cellHeight container pixels, which keeps
// discs round on a typical 1:2 font.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	headerRows = 1
	footerRows = 1

	// keyNudge is how far, in pixels, an arrow key drags the sphere.
	keyNudge = 12.0
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiFooterStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16"))
)

type frameMsg time.Time

// sphereModel runs a widget on a headless host and draws its frames as
// shaded terminal cells. Mouse input is forwarded as pointer events.
type sphereModel struct {
	host      *memory.Host
	container *memory.Container
	widget    *sphere.Widget
	cfg       sphere.Config
	opts      []sphere.Option

	interval time.Duration
	cols     int
	rows     int
	frames   int
}

func newSphereModel(cfg sphere.Config, items []sphere.Item, seed uint64, fps int, logger *log.Logger) *sphereModel {
	opts := []sphere.Option{sphere.WithLogger(logger)}
	if items != nil {
		opts = append(opts, sphere.WithItems(items))
	}
	if seed != 0 {
		opts = append(opts, sphere.WithSeed(seed))
	}

	m := &sphereModel{
		host:     memory.New(),
		cfg:      cfg,
		opts:     opts,
		interval: time.Second / time.Duration(max(fps, 1)),
		cols:     80,
		rows:     24,
	}
	m.container = m.host.Mount(pipeline.Mount, 0, 0)
	m.resize(m.cols, m.rows)
	m.reset()
	return m
}

// reset replaces the widget with a fresh one in its initial orientation.
func (m *sphereModel) reset() {
	if m.widget != nil {
		m.host.Do(m.widget.Teardown)
	}
	m.widget = sphere.New(m.host, pipeline.Mount, m.cfg, m.opts...)
	m.host.Do(m.widget.Initialize)
}

func (m *sphereModel) close() {
	m.host.Do(m.widget.Teardown)
}

func (m *sphereModel) resize(cols, rows int) {
	m.cols, m.rows = cols, rows
	m.container.Resize(float64(cols)*cellWidth, float64(rows-headerRows-footerRows)*cellHeight)
}

func (m *sphereModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *sphereModel) Init() tea.Cmd {
	return m.tick()
}

func (m *sphereModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.host.Step()
		m.frames++
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		if e, ok := m.pointerEvent(msg); ok {
			m.host.Dispatch(pipeline.Mount, e)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.close()
			return m, tea.Quit
		case "r":
			m.reset()
		case "left", "h":
			m.nudge(-keyNudge, 0)
		case "right", "l":
			m.nudge(keyNudge, 0)
		case "up", "k":
			m.nudge(0, -keyNudge)
		case "down", "j":
			m.nudge(0, keyNudge)
		}
	}
	return m, nil
}

// pointerEvent maps a terminal mouse message to a pointer event at the
// center of the cell under the mouse.
func (m *sphereModel) pointerEvent(msg tea.MouseMsg) (sphere.Event, bool) {
	x := (float64(msg.X) + 0.5) * cellWidth
	y := (float64(msg.Y-headerRows) + 0.5) * cellHeight

	var t sphere.EventType
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		t = sphere.EventPointerDown
	case msg.Action == tea.MouseActionMotion:
		t = sphere.EventPointerMove
	case msg.Action == tea.MouseActionRelease:
		t = sphere.EventPointerUp
	default:
		return sphere.Event{}, false
	}
	return sphere.Event{Type: t, X: x, Y: y}, true
}

// nudge performs a short drag from the container center.
func (m *sphereModel) nudge(dx, dy float64) {
	box, _ := m.container.Bounds()
	cx, cy := box.Width/2, box.Height/2
	m.host.Dispatch(pipeline.Mount, sphere.Event{Type: sphere.EventPointerDown, X: cx, Y: cy})
	m.host.Dispatch(pipeline.Mount, sphere.Event{Type: sphere.EventPointerMove, X: cx + dx, Y: cy + dy})
	m.host.Dispatch(pipeline.Mount, sphere.Event{Type: sphere.EventPointerUp, X: cx + dx, Y: cy + dy})
}

func (m *sphereModel) View() string {
	frame, _ := m.host.Snapshot(pipeline.Mount)
	var rot sphere.Rotation
	var dragging bool
	m.host.Do(func() {
		rot = m.widget.Rotation()
		dragging = m.widget.Dragging()
	})

	status := fmt.Sprintf("spheregrid  pitch %6.1f°  yaw %6.1f°  %d/%d visible", rot.X, rot.Y, frame.Visible(), len(frame.Elements))
	if dragging {
		status += "  dragging"
	}

	var b strings.Builder
	b.WriteString(tuiHeaderStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(drawFrame(frame, m.cols, m.rows-headerRows-footerRows))
	b.WriteString("\n")
	b.WriteString(tuiFooterStyle.Render("drag to spin · arrows nudge · r reset · q quit"))
	return b.String()
}

type cell struct {
	ch    rune
	color string // empty for background
	label bool
}

// drawFrame rasterizes f into rows of cols terminal cells, back to front.
func drawFrame(f render.Frame, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: ' '}
		}
	}

	for _, e := range f.PaintOrder() {
		cx, cy := e.X/cellWidth, e.Y/cellHeight
		rx, ry := e.Size/2/cellWidth, e.Size/2/cellHeight
		if rx <= 0 || ry <= 0 {
			continue
		}
		color := sink.HexColor(sink.NodeColor(e.Index))
		glyph := shade(e.Opacity, e.Hovered)

		for r := max(0, int(math.Floor(cy-ry))); r < min(rows, int(math.Ceil(cy+ry))); r++ {
			for c := max(0, int(math.Floor(cx-rx))); c < min(cols, int(math.Ceil(cx+rx))); c++ {
				dx := (float64(c) + 0.5 - cx) / rx
				dy := (float64(r) + 0.5 - cy) / ry
				if dx*dx+dy*dy <= 1 {
					grid[r][c] = cell{ch: glyph, color: color}
				}
			}
		}
		drawLabel(grid, e.Name, cx, cy, rx, color)
	}

	lines := make([]string, rows)
	for r, row := range grid {
		lines[r] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

// drawLabel writes name across the middle row of a disc, truncated to fit.
func drawLabel(grid [][]cell, name string, cx, cy, rx float64, color string) {
	r := int(cy)
	if r < 0 || r >= len(grid) {
		return
	}
	runes := []rune(name)
	if width := int(2*rx) - 1; len(runes) > width {
		if width < 2 {
			return
		}
		runes = runes[:width]
	}
	start := int(math.Round(cx - float64(len(runes))/2))
	for i, ch := range runes {
		if c := start + i; c >= 0 && c < len(grid[r]) {
			grid[r][c] = cell{ch: ch, color: color, label: true}
		}
	}
}

// shade picks a block glyph for an opacity; fading nodes look thinner.
func shade(opacity float64, hovered bool) rune {
	switch {
	case hovered || opacity >= 0.85:
		return '█'
	case opacity >= 0.6:
		return '▓'
	case opacity >= 0.35:
		return '▒'
	default:
		return '░'
	}
}

// renderRow styles runs of equal cells together.
func renderRow(row []cell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for ; j < len(row) && row[j].color == row[i].color && row[j].label == row[i].label; j++ {
			run.WriteRune(row[j].ch)
		}
		switch {
		case row[i].color == "":
			b.WriteString(run.String())
		case row[i].label:
			b.WriteString(tuiLabelStyle.Background(lipgloss.Color(row[i].color)).Render(run.String()))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(row[i].color)).Render(run.String()))
		}
		i = j
	}
	return b.String()
}
