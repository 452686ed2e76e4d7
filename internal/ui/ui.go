// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mazznoer/colorgrad"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/controller"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
	"github.com/ali-sdg/cosmos-walker/internal/logging"
	"github.com/ali-sdg/cosmos-walker/internal/orbit"
	"github.com/ali-sdg/cosmos-walker/internal/scatter"
	"github.com/ali-sdg/cosmos-walker/internal/state"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
	"github.com/ali-sdg/cosmos-walker/internal/version"
)

// Msg types for Bubble Tea
type (
	// FrameMsg drives animation and movement.
	FrameMsg time.Time

	descriptionMsg struct {
		ticket state.Ticket
		text   string
	}

	imageMsg struct {
		ticket state.Ticket
		rec    *archive.ImageRecord
	}

	answerMsg struct {
		ticket state.QuestionTicket
		text   string
		err    error
	}
)

// maxFrameStep caps dt so a stalled terminal does not teleport the camera.
const maxFrameStep = 0.1

// Deps are the collaborators of the UI.
type Deps struct {
	State     *state.Manager
	Guide     *guide.Service
	Images    archive.Finder // nil disables image lookup
	Scene     *orbit.Scene
	Terrain   *terrain.Context
	Scatterer *scatter.Scatterer
	Mesh      surface.Config
	Frame     time.Duration
	Timeout   time.Duration // per outbound request
	Logger    *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	guide   *guide.Service
	images  archive.Finder
	log     *logging.Logger
	frame   time.Duration
	timeout time.Duration

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
	elapsed   float64
	lastFrame time.Time

	// Sub-models
	orbit   OrbitModel
	surface SurfaceModel
	info    InfoPanel

	snapshot state.Snapshot
	initCmds []tea.Cmd
}

// New creates a new root UI model.
func New(d Deps) Model {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}
	if d.Frame <= 0 {
		d.Frame = time.Second / 30
	}
	if d.Timeout <= 0 {
		d.Timeout = guide.DefaultTimeout
	}
	if d.Guide == nil {
		d.Guide = guide.NewService(nil, guide.DefaultLanguage, log)
	}

	ctrl := controller.New(d.Terrain, controller.DefaultConfig())
	mesh := surface.New(d.Terrain, d.Mesh)
	sc := d.Scatterer
	if sc == nil {
		sc = scatter.New(d.Terrain, nil)
	}

	m := Model{
		state:   d.State,
		guide:   d.Guide,
		images:  d.Images,
		log:     log.Named("ui"),
		frame:   d.Frame,
		timeout: d.Timeout,
		orbit:   NewOrbitModel(d.Scene),
		surface: NewSurfaceModel(d.Terrain, mesh, sc, ctrl, NewKeyboard(DefaultRepeatDelay, DefaultHoldTimeout)),
		info:    NewInfoPanel(),
	}
	m.snapshot = m.state.Snapshot()
	return m
}

// Land selects the body with the given id and starts on its surface. It is
// used for the --planet flag before the program starts.
func (m Model) Land(id string) (Model, error) {
	b, ok := catalog.ByID(id)
	if !ok {
		return m, fmt.Errorf("unknown body %q", id)
	}
	m.orbit = m.orbit.Select(b.ID)
	m.initCmds = append(m.initCmds, m.selectBody(b)...)
	if err := m.land(); err != nil {
		return m, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(append([]tea.Cmd{m.frameCmd()}, m.initCmds...)...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.info.Focused() {
			var question string
			m.info, question = m.info.HandleKey(msg)
			if question != "" {
				cmds = append(cmds, m.ask(question))
			}
			break
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/", "?":
			if !m.snapshot.HasSelection() {
				m.statusMsg = "Select a body first"
				break
			}
			m.info = m.info.Focus()
		case "enter":
			if m.snapshot.View == state.ViewOrbit {
				if err := m.land(); err != nil {
					m.statusMsg = err.Error()
				}
			}
		case "esc", "b":
			if m.snapshot.View == state.ViewSurface {
				m.liftOff()
				break
			}
			cmds = append(cmds, m.updateActiveView(msg))
		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.MouseMsg:
		cmds = append(cmds, m.updateActiveView(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case FrameMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastFrame.IsZero() {
			dt = min(now.Sub(m.lastFrame).Seconds(), maxFrameStep)
		}
		m.lastFrame = now
		m.elapsed += dt
		m.orbit = m.orbit.SetTime(m.elapsed)
		m.surface = m.surface.Tick(now, dt, m.elapsed)
		cmds = append(cmds, m.frameCmd())

	case BodySelectedMsg:
		m.statusMsg = ""
		if b, ok := catalog.ByID(msg.ID); ok {
			cmds = append(cmds, m.selectBody(b)...)
		}

	case BodyClearedMsg:
		m.state.Deselect()
		m.refresh()

	case descriptionMsg:
		if !m.state.SetDescription(msg.ticket, msg.text) {
			m.log.Debug("dropped stale description for %s", msg.ticket.BodyID)
		}
		m.refresh()

	case imageMsg:
		if !m.state.SetImage(msg.ticket, msg.rec) {
			m.log.Debug("dropped stale image for %s", msg.ticket.BodyID)
		}
		m.refresh()

	case answerMsg:
		if msg.err != nil {
			m.log.Warn("ask about %s: %v", msg.ticket.BodyID, msg.err)
		}
		if !m.state.SetAnswer(msg.ticket, msg.text, msg.err) {
			m.log.Debug("dropped stale answer for %s", msg.ticket.BodyID)
		}
		m.refresh()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.snapshot.View {
	case state.ViewSurface:
		m.surface, cmd = m.surface.Update(msg)
	default:
		m.orbit, cmd = m.orbit.Update(msg)
	}
	return cmd
}

// selectBody records the selection and starts the description and image
// lookups for it.
func (m *Model) selectBody(b catalog.Body) []tea.Cmd {
	ticket := m.state.Select(b)
	m.log.Info("selected %s (generation %d)", b.ID, ticket.Generation)
	m.refresh()
	return []tea.Cmd{m.describe(ticket, b), m.findImage(ticket, b)}
}

func (m *Model) land() error {
	b, err := m.state.Land()
	switch {
	case errors.Is(err, state.ErrNoSelection):
		return errors.New("select a body first")
	case errors.Is(err, state.ErrNotLandable):
		return fmt.Errorf("%s has no surface to walk on", m.snapshot.Selected.DisplayName)
	case err != nil:
		return err
	}
	m.surface = m.surface.Activate(b, m.elapsed)
	m.log.Info("landed on %s", b.ID)
	m.statusMsg = ""
	m.refresh()
	return nil
}

func (m *Model) liftOff() {
	m.state.LiftOff()
	m.surface = m.surface.Deactivate()
	m.refresh()
}

// refresh pulls a fresh snapshot and pushes it to the sub-models.
func (m *Model) refresh() {
	hadSelection := m.snapshot.HasSelection()
	m.snapshot = m.state.Snapshot()
	m.info = m.info.UpdateData(m.snapshot)
	if hadSelection != m.snapshot.HasSelection() {
		m.layout()
	}
}

// layout splits the content area between the active view and the panel.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	contentHeight := max(m.height-6, 5)
	panelWidth := 0
	if m.snapshot.HasSelection() {
		panelWidth = max(28, min(48, m.width/3))
	}
	m.orbit = m.orbit.SetSize(m.width-panelWidth, contentHeight)
	m.surface = m.surface.SetSize(m.width-panelWidth, contentHeight)
	m.info = m.info.SetSize(panelWidth, contentHeight)
}

func (m Model) describe(t state.Ticket, b catalog.Body) tea.Cmd {
	svc, timeout := m.guide, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return descriptionMsg{ticket: t, text: svc.Describe(ctx, b)}
	}
}

func (m Model) findImage(t state.Ticket, b catalog.Body) tea.Cmd {
	finder, timeout := m.images, m.timeout
	return func() tea.Msg {
		if finder == nil {
			return imageMsg{ticket: t}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return imageMsg{ticket: t, rec: finder.FindImage(ctx, b.Name)}
	}
}

func (m *Model) ask(question string) tea.Cmd {
	qt, err := m.state.Ask(question)
	if err != nil {
		m.statusMsg = err.Error()
		return nil
	}
	m.refresh()
	b := *m.snapshot.Selected
	svc, timeout := m.guide, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		text, err := svc.Ask(ctx, b, question)
		return answerMsg{ticket: qt, text: text, err: err}
	}
}

func (m Model) frameCmd() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.snapshot.View {
	case state.ViewSurface:
		content = m.surface.View()
	default:
		content = m.orbit.View()
	}
	if panel := m.info.View(); panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

var logoGradient = mustGradient("#3B82F6", "#8B5CF6", "#D946EF", "#EC4899")

func mustGradient(colors ...string) colorgrad.Gradient {
	g, err := colorgrad.NewGradient().HtmlColors(colors...).Build()
	if err != nil {
		panic(err)
	}
	return g
}

func (m Model) renderHeader() string {
	var b strings.Builder

	title := []rune("✦ C O S M O S   W A L K E R")
	b.WriteString("  ")
	for i, r := range title {
		c := logoGradient.At(float64(i) / float64(len(title)-1))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true).Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("   procedural worlds · v%s", version.Version)))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTabs() string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	tabs := []struct {
		name string
		view state.View
	}{
		{"Orbit", state.ViewOrbit},
		{"Surface", state.ViewSurface},
	}
	var parts []string
	for _, tab := range tabs {
		if tab.view == m.snapshot.View {
			parts = append(parts, activeStyle.Render("▶ "+tab.name))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab.name))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	var help string
	switch {
	case m.info.Focused():
		help = "enter: ask | esc: close | ctrl+u: clear"
	case m.snapshot.View == state.ViewSurface:
		help = "wasd/arrows: move | shift: sprint | h/l: turn | j/k: pitch | drag: look | +/-: scale | /: ask | esc: lift off"
	default:
		help = "j/k: select | enter: land | +/-: zoom | arrows: pan | f: find | c: sun | l: labels | z: mode | t: stars | /: ask | q: quit"
	}

	footer := "  " + dimStyle.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + errorStyle.Render(m.statusMsg)
	}
	return footer
}

// Snapshot returns the state the UI is currently showing.
func (m Model) Snapshot() state.Snapshot { return m.snapshot }
