package ui

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
	"github.com/ali-sdg/cosmos-walker/internal/logging"
	"github.com/ali-sdg/cosmos-walker/internal/noise"
	"github.com/ali-sdg/cosmos-walker/internal/orbit"
	"github.com/ali-sdg/cosmos-walker/internal/state"
	"github.com/ali-sdg/cosmos-walker/internal/surface"
	"github.com/ali-sdg/cosmos-walker/internal/terrain"
)

// echoGenerator returns the prompt it was given, or err.
type echoGenerator struct {
	err error
}

func (g echoGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return prompt, nil
}

type stubFinder struct{}

func (stubFinder) FindImage(_ context.Context, query string) *archive.ImageRecord {
	return &archive.ImageRecord{Title: query + " from orbit", URL: "https://example.test/" + query + ".jpg", Date: "2020-01-01"}
}

func newTestModel(t *testing.T, gen guide.TextGenerator) Model {
	t.Helper()
	ctx := terrain.NewContext(noise.NewSeeded(7))
	m := New(Deps{
		State:   state.NewManager(state.DefaultConfig()),
		Guide:   guide.NewService(gen, guide.DefaultLanguage, logging.Discard()),
		Images:  stubFinder{},
		Scene:   orbit.NewScene(catalog.All(), rand.NewPCG(1, 2)),
		Terrain: ctx,
		Mesh:    surface.Config{Extent: 60, Segments: 30},
		Frame:   time.Hour,
		Timeout: time.Second,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// drain runs cmd and every command it leads to, feeding the messages back
// into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command chain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		next, more := m.Update(msg)
		m = next.(Model)
		queue = append(queue, more)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drain(t, next.(Model), cmd)
	}
	return m
}

func mustBody(t *testing.T, id string) catalog.Body {
	t.Helper()
	b, ok := catalog.ByID(id)
	if !ok {
		t.Fatalf("no body %q", id)
	}
	return b
}

func TestSelectFetchesDescriptionAndImage(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "k", "k") // sun, then mercury

	snap := m.Snapshot()
	if !snap.HasSelection() || snap.Selected.ID != "mercury" {
		t.Fatalf("selected = %+v, want mercury", snap.Selected)
	}
	mercury := mustBody(t, "mercury")
	if want := guide.DescriptionPrompt(mercury, guide.DefaultLanguage); snap.Description != want {
		t.Errorf("description = %q, want generated text", snap.Description)
	}
	if snap.DescriptionPending || snap.ImagePending {
		t.Error("lookups still pending")
	}
	if snap.Image == nil || snap.Image.Title != "Mercury from orbit" {
		t.Errorf("image = %+v", snap.Image)
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	m := newTestModel(t, echoGenerator{})

	// Select the sun but hold back its lookups.
	next, cmd := m.Update(keyMsg("k"))
	m = next.(Model)
	next, stale := m.Update(cmd())
	m = next.(Model)

	m = press(t, m, "k")
	m = drain(t, m, stale)

	snap := m.Snapshot()
	if snap.Selected.ID != "mercury" {
		t.Fatalf("selected = %s, want mercury", snap.Selected.ID)
	}
	if want := guide.DescriptionPrompt(mustBody(t, "mercury"), guide.DefaultLanguage); snap.Description != want {
		t.Errorf("stale description leaked: %q", snap.Description)
	}
	var staleEvents int
	for _, e := range snap.Events {
		if e.Type == state.EventStaleResult {
			staleEvents++
		}
	}
	if staleEvents != 2 {
		t.Errorf("stale events = %d, want 2", staleEvents)
	}
}

func TestDescriptionFallsBackWithoutGenerator(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "k")
	if got, want := m.Snapshot().Description, mustBody(t, "sun").Description; got != want {
		t.Errorf("description = %q, want catalog text", got)
	}
}

func TestLandOnStarIsRefused(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "k", "enter")

	if m.Snapshot().View != state.ViewOrbit {
		t.Error("landed on the sun")
	}
	if !strings.Contains(m.statusMsg, "no surface") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestEnterWithoutSelection(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "enter")
	if m.statusMsg == "" {
		t.Error("expected a status message")
	}
}

func TestLandWalkAndLiftOff(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m, err := m.Land("mars")
	if err != nil {
		t.Fatal(err)
	}
	m = drain(t, m, tea.Batch(m.initCmds...))
	if m.Snapshot().View != state.ViewSurface || !m.surface.Active() {
		t.Fatal("not on the surface")
	}

	t0 := time.Unix(1000, 0)
	m.surface.now = func() time.Time { return t0 }
	start := m.surface.Camera().Position

	m = press(t, m, "w")
	frame := func(at time.Time) {
		next, _ := m.Update(FrameMsg(at))
		m = next.(Model)
	}
	frame(t0)
	frame(t0.Add(50 * time.Millisecond))

	pos := m.surface.Camera().Position
	if dz := pos[2] - start[2]; dz > -0.39 || dz < -0.41 {
		t.Errorf("moved %.3f along z, want -0.4", dz)
	}
	if math.Abs(pos[0]-start[0]) > 1e-9 {
		t.Errorf("drifted sideways to x=%v", pos[0])
	}

	// No repeat arrives within the repeat delay: the key is released.
	frame(t0.Add(DefaultRepeatDelay))
	held := m.surface.Camera().Position
	frame(t0.Add(DefaultRepeatDelay + 50*time.Millisecond))
	if after := m.surface.Camera().Position; after[2] != held[2] {
		t.Errorf("still moving after release: %v -> %v", held[2], after[2])
	}

	m = press(t, m, "esc")
	snap := m.Snapshot()
	if snap.View != state.ViewOrbit || m.surface.Active() {
		t.Error("esc did not lift off")
	}
	if !snap.HasSelection() || snap.Selected.ID != "mars" {
		t.Error("lift off dropped the selection")
	}
}

func TestLandUnknownBody(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	if _, err := m.Land("pluto"); err == nil {
		t.Error("expected error")
	}
	if _, err := m.Land("andromeda"); err == nil {
		t.Error("expected error for galaxy")
	}
}

func TestAskFlow(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "k", "k", "k", "k", "/") // earth
	if !m.info.Focused() {
		t.Fatal("question line not focused")
	}

	m = press(t, m, "q", " ", "?", "backspace", "?")
	if m.info.Input() != "q ?" {
		t.Fatalf("input = %q", m.info.Input())
	}
	m = press(t, m, "enter")

	snap := m.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("history = %+v", snap.History)
	}
	want := guide.QuestionPrompt(mustBody(t, "earth"), "q ?", guide.DefaultLanguage)
	if ex := snap.History[0]; ex.Answer != want || ex.Failed || ex.Pending {
		t.Errorf("exchange = %+v", ex)
	}

	m = press(t, m, "esc")
	if m.info.Focused() {
		t.Error("esc did not leave the question line")
	}
}

func TestAskFailureShowsFallback(t *testing.T) {
	m := newTestModel(t, echoGenerator{err: errors.New("boom")})
	m = press(t, m, "k", "/", "h", "i", "enter")

	hist := m.Snapshot().History
	if len(hist) != 1 || hist[0].Answer != guide.AnswerFallback || !hist[0].Failed {
		t.Errorf("history = %+v", hist)
	}
}

func TestAskNeedsSelection(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "/")
	if m.info.Focused() {
		t.Error("question line focused without a selection")
	}
}

func TestDeselectClosesPanel(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "k")
	if m.info.width == 0 {
		t.Fatal("panel has no width with a selection")
	}
	m = press(t, m, "esc")
	if m.Snapshot().HasSelection() {
		t.Error("esc did not deselect")
	}
	if m.info.width != 0 || m.orbit.width != 120 {
		t.Errorf("layout not restored: panel %d, orbit %d", m.info.width, m.orbit.width)
	}
}

func TestViewRenders(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	m = press(t, m, "k", "k", "k", "k")
	out := m.View()
	for _, want := range []string{"C O S M O S", "Orbit", "Earth", "j/k: select"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, err := m.Land("earth")
	if err != nil {
		t.Fatal(err)
	}
	out = m.View()
	for _, want := range []string{"▲ Earth", "temperate", "esc: lift off"} {
		if !strings.Contains(out, want) {
			t.Errorf("surface view missing %q", want)
		}
	}
}

func TestFrameStepIsCapped(t *testing.T) {
	m := newTestModel(t, echoGenerator{})
	t0 := time.Unix(0, 0)
	next, _ := m.Update(FrameMsg(t0))
	next, _ = next.(Model).Update(FrameMsg(t0.Add(time.Minute)))
	if got := next.(Model).elapsed; got != maxFrameStep {
		t.Errorf("elapsed = %v, want %v", got, maxFrameStep)
	}
}
