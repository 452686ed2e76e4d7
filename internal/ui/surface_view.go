package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/controller"
	"github.com/ali-sdg/cosmos-walker/internal/scatter"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

const (
	turnStep  = math.Pi / 24
	pitchStep = math.Pi / 36
	dragTurn  = 0.05 // radians per cell of mouse drag
)

// World units per half-block pixel.
var surfaceScales = []float64{0.25, 0.5, 1, 2, 4}

const defaultSurfaceScale = 2

// SurfaceModel renders the terrain around the camera as a north-up map
// using half-block cells, two terrain samples per character.
type SurfaceModel struct {
	width  int
	height int
	now    func() time.Time

	terrain   *terrain.Context
	mesh      *surface.Mesh
	scatterer *scatter.Scatterer
	ctrl      *controller.Controller
	keys      *Keyboard
	cache     *cellCache

	active  bool
	body    catalog.Body
	cam     controller.Camera
	light   surface.Lighting
	rocks   []scatter.Instance
	elapsed float64
	moving  bool
	zoom    int

	dragging   bool
	lastMouseX int
	lastMouseY int
}

// NewSurfaceModel creates an inactive surface view.
func NewSurfaceModel(ctx *terrain.Context, mesh *surface.Mesh, sc *scatter.Scatterer, ctrl *controller.Controller, keys *Keyboard) SurfaceModel {
	return SurfaceModel{
		now:       time.Now,
		terrain:   ctx,
		mesh:      mesh,
		scatterer: sc,
		ctrl:      ctrl,
		keys:      keys,
		cache:     newCellCache(),
		zoom:      defaultSurfaceScale,
	}
}

// SetSize updates the viewport size.
func (m SurfaceModel) SetSize(width, height int) SurfaceModel {
	m.width = width
	m.height = height
	return m
}

// Activate builds the surface of b and drops the camera at the origin.
func (m SurfaceModel) Activate(b catalog.Body, elapsed float64) SurfaceModel {
	m.body = b
	m.mesh.Build(b)
	if m.mesh.Animated() {
		m.mesh.Animate(elapsed)
	}
	m.rocks = m.scatterer.ScatterAll(b, scatter.DefaultLayers())
	m.ctrl.SetBody(b)
	m.keys.Clear()
	m.cam = controller.Camera{}
	m.ctrl.Spawn(&m.cam, 0, 0, elapsed)
	m.light = surface.LightingFor(b)
	m.elapsed = elapsed
	m.moving = false
	m.active = true
	return m
}

// Deactivate stops the surface view and releases held keys.
func (m SurfaceModel) Deactivate() SurfaceModel {
	m.active = false
	m.keys.Clear()
	m.ctrl.Reset()
	return m
}

// Active reports whether a surface is loaded.
func (m SurfaceModel) Active() bool { return m.active }

// Camera returns the camera.
func (m SurfaceModel) Camera() controller.Camera { return m.cam }

// Rocks returns the scattered rocks of the current surface.
func (m SurfaceModel) Rocks() []scatter.Instance { return m.rocks }

// Tick advances the surface by dt seconds: expired keys are released, the
// cloud deck moves and the camera steps.
func (m SurfaceModel) Tick(now time.Time, dt, elapsed float64) SurfaceModel {
	if !m.active {
		return m
	}
	for _, a := range m.keys.Expire(now) {
		m.ctrl.Release(a)
	}
	m.elapsed = elapsed
	m.mesh.Animate(elapsed)
	m.moving = m.ctrl.Step(&m.cam, dt, elapsed)
	return m
}

// Update handles input messages.
func (m SurfaceModel) Update(msg tea.Msg) (SurfaceModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if actions := ActionsFor(key); actions != nil {
			now := m.now()
			for _, a := range actions {
				m.keys.Press(a, now)
				m.ctrl.Press(a)
			}
			return m, nil
		}
		switch key {
		case "h":
			m.cam.Turn(turnStep, 0)
		case "l":
			m.cam.Turn(-turnStep, 0)
		case "k":
			m.cam.Turn(0, pitchStep)
		case "j":
			m.cam.Turn(0, -pitchStep)
		case "+", "=":
			if m.zoom > 0 {
				m.zoom--
			}
		case "-":
			if m.zoom < len(surfaceScales)-1 {
				m.zoom++
			}
		}

	case tea.MouseMsg:
		switch msg.Action {
		case tea.MouseActionPress:
			if msg.Button == tea.MouseButtonLeft {
				m.dragging = true
				m.lastMouseX, m.lastMouseY = msg.X, msg.Y
			}
		case tea.MouseActionMotion:
			if m.dragging {
				dx := float64(msg.X - m.lastMouseX)
				dy := float64(msg.Y - m.lastMouseY)
				m.cam.Turn(-dx*dragTurn, -dy*dragTurn)
				m.lastMouseX, m.lastMouseY = msg.X, msg.Y
			}
		case tea.MouseActionRelease:
			m.dragging = false
		}
	}
	return m, nil
}

func (m SurfaceModel) unitsPerPixel() float64 {
	return surfaceScales[m.zoom]
}

// View renders the surface view.
func (m SurfaceModel) View() string {
	if !m.active {
		return "No surface loaded"
	}
	if m.width < 20 || m.height < 6 {
		return "Terminal too small for surface view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.buildCanvas(), m.renderHUD())
}

// mark is a glyph drawn over the terrain.
type mark struct {
	ch    rune
	color colorful.Color
}

func (m SurfaceModel) buildCanvas() string {
	cols := m.width
	rows := max(m.height-2, 3)
	s := m.unitsPerPixel()
	pos := m.cam.Position

	// pixel (px, py) covers world (x, z); rows of pixels run south along +Z
	world := func(px, py int) (float64, float64) {
		x := pos[0] + (float64(px)-float64(cols)/2+0.5)*s
		z := pos[2] + (float64(py)-float64(rows)+0.5)*s
		return x, z
	}

	marks := make(map[[2]int]mark)
	for _, r := range m.rocks {
		col := int(math.Floor((r.Position[0]-pos[0])/s + float64(cols)/2))
		py := int(math.Floor((r.Position[2]-pos[2])/s + float64(rows)))
		if col < 0 || col >= cols || py < 0 || py >= 2*rows {
			continue
		}
		ch := '·'
		if r.Layer == scatter.Boulders.Name {
			ch = 'o'
		}
		key := [2]int{col, py / 2}
		if prev, ok := marks[key]; ok && prev.ch == 'o' {
			continue
		}
		marks[key] = mark{ch: ch, color: r.Color}
	}
	marks[[2]int{cols / 2, rows / 2}] = mark{
		ch:    headingArrow(m.cam.Heading()),
		color: colorful.Color{R: 1, G: 1, B: 1},
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top := m.pixel(world(col, 2*row))
			bottom := m.pixel(world(col, 2*row+1))
			if mk, ok := marks[[2]int{col, row}]; ok {
				b.WriteString(m.cache.render(mk.ch, mk.color, top.BlendRgb(bottom, 0.5)))
				continue
			}
			b.WriteString(m.cache.render('▀', top, bottom))
		}
		if row < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// pixel returns the lit, fogged colour of the terrain at (x, z), or the sky
// beyond the edge of the mesh.
func (m SurfaceModel) pixel(x, z float64) colorful.Color {
	v, ok := m.mesh.Sample(x, z)
	if !ok {
		return m.void(x, z)
	}
	c := m.light.Shade(v.Color, v.Normal)
	dist := mgl64.Vec3{v.X, v.Y, v.Z}.Sub(m.cam.Position).Len()
	return m.light.Fog(c, dist)
}

func (m SurfaceModel) void(x, z float64) colorful.Color {
	if m.body.AtmosphereColor == "" && starHash(int(math.Floor(x)), int(math.Floor(z)))%53 == 0 {
		return colorful.Color{R: 0.7, G: 0.7, B: 0.75}
	}
	return m.light.Sky
}

// headingArrow picks one of eight arrows; screen up is -Z.
func headingArrow(deg float64) rune {
	arrows := []rune{'↑', '↗', '→', '↘', '↓', '↙', '←', '↖'}
	i := int(math.Round(deg/45)) % len(arrows)
	return arrows[i]
}

func (m SurfaceModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	class := terrain.Classify(m.body)
	pos := m.cam.Position
	ground := m.terrain.Elevation(pos[0], pos[2], m.elapsed, m.body)

	b.WriteString(headerStyle.Render(fmt.Sprintf("▲ %s", m.body.DisplayName)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("(" + class.String() + ")"))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Pos: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f, %.0f", pos[0], pos[2])))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Ground: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", ground)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Eye: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", pos[1])))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Heading: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%3.0f°", m.cam.Heading())))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Pitch: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%+.0f°", m.cam.Pitch*180/math.Pi)))
	b.WriteString("\n")

	gait := "idle"
	if m.moving {
		gait = "walk"
		if m.ctrl.Intent().Sprint {
			gait = "sprint"
		}
	}
	if m.mesh.Animated() {
		gait += ", hovering"
	}
	b.WriteString(dimStyle.Render("Gait:"))
	b.WriteString(valueStyle.Render(gait))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Rocks:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", len(m.rocks))))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Visibility:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f", m.light.FogFar)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Scale:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%gu/px", m.unitsPerPixel())))

	return b.String()
}

// cellCache memoises rendered cells by glyph and quantised colours. Colours
// are reduced to 5 bits per channel so neighbouring cells share entries.
type cellCache struct {
	cells map[cellKey]string
}

type cellKey struct {
	ch     rune
	fg, bg uint16
}

const maxCachedCells = 1 << 14

func newCellCache() *cellCache {
	return &cellCache{cells: make(map[cellKey]string)}
}

func (c *cellCache) render(ch rune, fg, bg colorful.Color) string {
	key := cellKey{ch: ch, fg: quantize(fg), bg: quantize(bg)}
	if s, ok := c.cells[key]; ok {
		return s
	}
	if len(c.cells) >= maxCachedCells {
		clear(c.cells)
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(expand(key.fg))).
		Background(lipgloss.Color(expand(key.bg))).
		Render(string(ch))
	c.cells[key] = s
	return s
}

func quantize(c colorful.Color) uint16 {
	r, g, b := c.Clamped().RGB255()
	return uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
}

func expand(q uint16) string {
	r := uint8(q>>10&0x1f) << 3
	g := uint8(q>>5&0x1f) << 3
	b := uint8(q&0x1f) << 3
	return fmt.Sprintf("#%02x%02x%02x", r|r>>5, g|g>>5, b|b>>5)
}
