package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/orbit"
)

// LabelMode controls how body labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the selected body
	LabelAll                      // Every body
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelFocused:
		return "focus"
	default:
		return "all"
	}
}

// BodySelectedMsg reports that the orbit view selected a body.
type BodySelectedMsg struct {
	ID string
}

// BodyClearedMsg reports that the orbit view dropped its selection.
type BodyClearedMsg struct{}

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

const defaultZoom = 3 // index of 1.0

// OrbitModel renders a top-down view of the orbital scene.
type OrbitModel struct {
	width   int
	height  int
	scene   *orbit.Scene
	elapsed float64

	// View state
	zoomLevel  int
	panX       float64 // Pan offset in display units
	panY       float64
	scaleMode  orbit.ScaleMode
	labelMode  LabelMode
	userPanned bool // Disables auto-centering on zoom
	showStars  bool
}

// NewOrbitModel creates a new orbit view over scene.
func NewOrbitModel(scene *orbit.Scene) OrbitModel {
	return OrbitModel{
		scene:     scene,
		zoomLevel: defaultZoom,
		scaleMode: orbit.ScaleLog,
		labelMode: LabelFocused,
		showStars: true,
	}
}

func (m OrbitModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

func (m OrbitModel) projection() orbit.Projection {
	return orbit.Projection{Mode: m.scaleMode, Scale: m.scale()}
}

// SetSize updates the viewport size.
func (m OrbitModel) SetSize(width, height int) OrbitModel {
	m.width = width
	m.height = height
	return m
}

// SetTime moves the scene clock.
func (m OrbitModel) SetTime(elapsed float64) OrbitModel {
	m.elapsed = elapsed
	if !m.userPanned && m.scene.SelectedIndex() >= 0 {
		m.centerOnSelected()
	}
	return m
}

// Update handles input messages.
func (m OrbitModel) Update(msg tea.Msg) (OrbitModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "[":
			m.scene.Prev()
			return m.selectionChanged()
		case "k", "]":
			m.scene.Next()
			return m.selectionChanged()
		case "esc":
			if m.scene.SelectedIndex() >= 0 {
				m.scene.ClearSelection()
				m.panX, m.panY = 0, 0
				m.userPanned = false
				return m, func() tea.Msg { return BodyClearedMsg{} }
			}

		case "up":
			m.panY -= 0.1 / m.scale()
			m.userPanned = true
		case "down":
			m.panY += 0.1 / m.scale()
			m.userPanned = true
		case "left":
			m.panX += 0.1 / m.scale()
			m.userPanned = true
		case "right":
			m.panX -= 0.1 / m.scale()
			m.userPanned = true
		case "c":
			m.panX, m.panY = 0, 0
			m.userPanned = true
		case "f":
			m.centerOnSelected()
			m.userPanned = false

		case "+", "=":
			m.zoomIn()
		case "-":
			m.zoomOut()
		case "0":
			m.zoomLevel = defaultZoom
			m.recenter()

		case "z":
			m.scaleMode = (m.scaleMode + 1) % 3
			m.recenter()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "t":
			m.showStars = !m.showStars
		case "r":
			m.panX, m.panY = 0, 0
			m.zoomLevel = defaultZoom
			m.userPanned = false
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.zoomIn()
		case tea.MouseButtonWheelDown:
			m.zoomOut()
		}
	}
	return m, nil
}

func (m *OrbitModel) zoomIn() {
	if m.zoomLevel < len(zoomLevels)-1 {
		m.zoomLevel++
		m.recenter()
	}
}

func (m *OrbitModel) zoomOut() {
	if m.zoomLevel > 0 {
		m.zoomLevel--
		m.recenter()
	}
}

func (m *OrbitModel) recenter() {
	if !m.userPanned {
		m.centerOnSelected()
	}
}

func (m OrbitModel) selectionChanged() (OrbitModel, tea.Cmd) {
	m.userPanned = false
	m.centerOnSelected()
	b, ok := m.scene.Selected()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg { return BodySelectedMsg{ID: b.ID} }
}

// centerOnSelected pans the view to the selected body, or the Sun.
func (m *OrbitModel) centerOnSelected() {
	i := m.scene.SelectedIndex()
	if i < 0 {
		m.panX, m.panY = 0, 0
		return
	}
	x, y := m.projection().Project(m.scene.Position(i, m.elapsed))
	m.panX, m.panY = -x, -y
}

// View renders the orbit view.
func (m OrbitModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orbit view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

// bodyPos tracks a body's screen position for label rendering.
type bodyPos struct {
	x, y     int
	name     string
	color    lipgloss.Color
	selected bool
}

// orbit canvas cell
type cell struct {
	ch    rune
	color lipgloss.Color
	bold  bool
}

func (m OrbitModel) buildCanvas() string {
	canvasH := max(m.height-2, 5)
	canvasW := m.width

	grid := make([][]cell, canvasH)
	for y := range grid {
		grid[y] = make([]cell, canvasW)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	screenCX := canvasW / 2
	screenCY := canvasH / 2
	displayR := float64(min(screenCX, screenCY*2)) * 0.9

	// Screen Y is inverted and rows are twice as tall as columns
	originX := screenCX + int(m.panX*displayR)
	originY := screenCY - int(m.panY*displayR*0.5)

	if m.showStars {
		drawStarfield(grid)
	}

	proj := m.projection()
	selected := m.scene.SelectedIndex()
	var positions []bodyPos

	for i := 0; i < m.scene.Len(); i++ {
		b := m.scene.Body(i)
		if b.Distance > 0 {
			drawCircle(grid, originX, originY, proj.Radius(b.Distance)*displayR, i == selected)
		}
	}

	for i := 0; i < m.scene.Len(); i++ {
		b := m.scene.Body(i)
		px, py := proj.Project(m.scene.Position(i, m.elapsed))
		sx := originX + int(math.Round(px*displayR))
		sy := originY - int(math.Round(py*displayR*0.5))
		if sx < 0 || sx >= canvasW || sy < 0 || sy >= canvasH {
			continue
		}
		color := lipgloss.Color(b.Color)
		grid[sy][sx] = cell{ch: bodyGlyph(b, i == selected), color: color, bold: i == selected}
		positions = append(positions, bodyPos{x: sx, y: sy, name: b.DisplayName, color: color, selected: i == selected})
	}

	m.renderLabels(grid, positions)
	return renderCells(grid)
}

// drawCircle traces an orbit. The selected body's orbit is drawn brighter.
func drawCircle(grid [][]cell, cx, cy int, r float64, highlight bool) {
	if r < 1 {
		return
	}
	h := len(grid)
	w := len(grid[0])

	steps := int(2 * math.Pi * r)
	steps = max(8, min(steps, 720))

	color := lipgloss.Color("238")
	if highlight {
		color = lipgloss.Color("60")
	}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + int(math.Round(r*math.Cos(theta)))
		y := cy - int(math.Round(r*math.Sin(theta)*0.5))
		if x >= 0 && x < w && y >= 0 && y < h && grid[y][x].ch == ' ' {
			grid[y][x] = cell{ch: '·', color: color}
		}
	}
}

// drawStarfield scatters a fixed pattern of faint stars over the canvas.
func drawStarfield(grid [][]cell) {
	for y := range grid {
		for x := range grid[y] {
			switch starHash(x, y) % 97 {
			case 0:
				grid[y][x] = cell{ch: '∗', color: lipgloss.Color("240")}
			case 1, 2:
				grid[y][x] = cell{ch: '˙', color: lipgloss.Color("236")}
			}
		}
	}
}

// starHash is a small integer hash giving a stable pattern per cell.
func starHash(x, y int) uint32 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

func bodyGlyph(b catalog.Body, selected bool) rune {
	switch b.Kind {
	case catalog.KindStar:
		if b.Distance == 0 {
			return '☉'
		}
		if selected {
			return '✸'
		}
		return '✶'
	case catalog.KindGalaxy:
		return '֍'
	case catalog.KindGas, catalog.KindIce:
		if b.HasRings {
			return 'ʘ'
		}
		if selected {
			return '◉'
		}
		return '○'
	default:
		if selected {
			return '●'
		}
		return '•'
	}
}

func (m OrbitModel) renderLabels(grid [][]cell, positions []bodyPos) {
	if m.labelMode == LabelNone {
		return
	}
	height := len(grid)
	width := len(grid[0])

	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.selected {
			continue
		}
		labelX := pos.x + 2
		if pos.y < 0 || pos.y >= height || labelX >= width {
			continue
		}
		text := pos.name
		if pos.selected {
			text = "◄ " + pos.name
		}
		for i, r := range []rune(text) {
			x := labelX + i
			if x >= width {
				break
			}
			if c := grid[pos.y][x].ch; c == ' ' || c == '·' || c == '˙' || c == '∗' {
				grid[pos.y][x] = cell{ch: r, color: lipgloss.Color("249"), bold: pos.selected}
			}
		}
	}
}

func renderCells(grid [][]cell) string {
	var b strings.Builder
	styles := make(map[cell]lipgloss.Style)
	for y, row := range grid {
		for _, c := range row {
			if c.ch == ' ' {
				b.WriteRune(' ')
				continue
			}
			key := cell{color: c.color, bold: c.bold}
			style, ok := styles[key]
			if !ok {
				style = lipgloss.NewStyle().Foreground(c.color).Bold(c.bold)
				styles[key] = style
			}
			b.WriteString(style.Render(string(c.ch)))
		}
		if y < len(grid)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m OrbitModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if i := m.scene.SelectedIndex(); i >= 0 {
		body := m.scene.Body(i)
		b.WriteString(headerStyle.Render("◆ " + body.DisplayName))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Kind: "))
		b.WriteString(valueStyle.Render(string(body.Kind)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Orbit: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f", body.Distance)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Radius: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", body.Radius)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Spin: "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%3.0f°", m.scene.Spin(i, m.elapsed)*180/math.Pi)))
		if body.Kind.Landable() {
			b.WriteString("  ")
			b.WriteString(dimStyle.Render("[enter] land"))
		}
	} else {
		b.WriteString(headerStyle.Render("☉ Star system"))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d bodies, j/k to select)", m.scene.Len())))
	}
	b.WriteString("\n")

	stars := "off"
	if m.showStars {
		stars = "on"
	}
	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(m.scaleMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Stars:"))
	b.WriteString(valueStyle.Render(stars))

	return b.String()
}

// Selected returns the selected body.
func (m OrbitModel) Selected() (catalog.Body, bool) {
	return m.scene.Selected()
}

// Select selects a body by id without emitting a message.
func (m OrbitModel) Select(id string) OrbitModel {
	if m.scene.Select(id) {
		m.userPanned = false
		m.centerOnSelected()
	}
	return m
}
