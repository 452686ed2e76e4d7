package ui

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/orbit"
)

func newOrbitModel() OrbitModel {
	scene := orbit.NewScene(catalog.All(), rand.NewPCG(3, 4))
	return NewOrbitModel(scene).SetSize(120, 40)
}

func TestOrbitModelInit(t *testing.T) {
	m := newOrbitModel()
	if m.scale() != 1.0 {
		t.Errorf("expected scale 1.0, got %f", m.scale())
	}
	if m.scaleMode != orbit.ScaleLog {
		t.Errorf("expected log scale, got %v", m.scaleMode)
	}
	if _, ok := m.Selected(); ok {
		t.Error("expected no selection")
	}
}

func TestOrbitSelectionEmitsMessage(t *testing.T) {
	m := newOrbitModel()

	m, cmd := m.Update(keyMsg("k"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if msg, ok := cmd().(BodySelectedMsg); !ok || msg.ID != "sun" {
		t.Errorf("msg = %#v, want sun selected", cmd())
	}

	m, cmd = m.Update(keyMsg("j"))
	if msg := cmd().(BodySelectedMsg); msg.ID != "andromeda" {
		t.Errorf("j from first body selected %s, want wrap to andromeda", msg.ID)
	}

	m, cmd = m.Update(keyMsg("esc"))
	if _, ok := cmd().(BodyClearedMsg); !ok {
		t.Error("esc did not clear")
	}
	if _, ok := m.Selected(); ok {
		t.Error("selection survived esc")
	}

	// esc with nothing selected is a no-op.
	if _, cmd = m.Update(keyMsg("esc")); cmd != nil {
		t.Error("unexpected command")
	}
}

func TestOrbitZoomAndModes(t *testing.T) {
	m := newOrbitModel()

	m, _ = m.Update(keyMsg("+"))
	if m.scale() != 1.5 {
		t.Errorf("zoom in: %v", m.scale())
	}
	for i := 0; i < 20; i++ {
		m, _ = m.Update(keyMsg("-"))
	}
	if m.scale() != zoomLevels[0] {
		t.Errorf("zoom out floor: %v", m.scale())
	}
	m, _ = m.Update(keyMsg("0"))
	if m.scale() != 1.0 {
		t.Errorf("reset zoom: %v", m.scale())
	}
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp})
	if m.scale() != 1.5 {
		t.Errorf("wheel zoom: %v", m.scale())
	}

	modes := []orbit.ScaleMode{orbit.ScaleInner, orbit.ScaleLinear, orbit.ScaleLog}
	for _, want := range modes {
		m, _ = m.Update(keyMsg("z"))
		if m.scaleMode != want {
			t.Errorf("scale mode = %v, want %v", m.scaleMode, want)
		}
	}

	labels := []LabelMode{LabelAll, LabelNone, LabelFocused}
	for _, want := range labels {
		m, _ = m.Update(keyMsg("l"))
		if m.labelMode != want {
			t.Errorf("label mode = %v, want %v", m.labelMode, want)
		}
	}

	m, _ = m.Update(keyMsg("t"))
	if m.showStars {
		t.Error("stars not toggled off")
	}
}

func TestOrbitFollowsSelection(t *testing.T) {
	m := newOrbitModel().Select("earth")
	m = m.SetTime(12)

	i := m.scene.Index("earth")
	x, y := m.projection().Project(m.scene.Position(i, 12))
	if m.panX != -x || m.panY != -y {
		t.Errorf("pan = (%v, %v), want (%v, %v)", m.panX, m.panY, -x, -y)
	}

	// Manual panning stops following.
	m, _ = m.Update(keyMsg("up"))
	before := m.panY
	m = m.SetTime(20)
	if m.panY != before {
		t.Error("view recentred after manual pan")
	}
	m, _ = m.Update(keyMsg("f"))
	x, y = m.projection().Project(m.scene.Position(i, 20))
	if m.panX != -x || m.panY != -y {
		t.Error("f did not recentre")
	}
}

func TestOrbitView(t *testing.T) {
	m := newOrbitModel()
	out := m.View()
	if !strings.Contains(out, "☉") {
		t.Error("sun glyph missing")
	}
	if !strings.Contains(out, "Star system") {
		t.Error("HUD missing")
	}

	m = m.Select("saturn")
	out = m.View()
	for _, want := range []string{"◄ Saturn", "◆ Saturn", "[enter] land", "Zoom:"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	small := m.SetSize(20, 5)
	if !strings.Contains(small.View(), "too small") {
		t.Error("expected size warning")
	}
}

func TestBodyGlyph(t *testing.T) {
	tests := []struct {
		id       string
		selected bool
		want     rune
	}{
		{"sun", false, '☉'},
		{"sirius", false, '✶'},
		{"sirius", true, '✸'},
		{"andromeda", false, '֍'},
		{"saturn", false, 'ʘ'},
		{"jupiter", false, '○'},
		{"neptune", true, '◉'},
		{"mars", false, '•'},
		{"mars", true, '●'},
	}
	for _, tt := range tests {
		b, _ := catalog.ByID(tt.id)
		if got := bodyGlyph(b, tt.selected); got != tt.want {
			t.Errorf("bodyGlyph(%s, %v) = %c, want %c", tt.id, tt.selected, got, tt.want)
		}
	}
}
