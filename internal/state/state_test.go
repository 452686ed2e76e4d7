package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
)

func body(t *testing.T, id string) catalog.Body {
	t.Helper()
	b, ok := catalog.ByID(id)
	if !ok {
		t.Fatalf("no body %q", id)
	}
	return b
}

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	snap := m.Snapshot()
	if snap.HasSelection() {
		t.Error("HasSelection should be false initially")
	}
	if snap.View != ViewOrbit {
		t.Errorf("View = %v, want orbit", snap.View)
	}
}

func TestSelectResetsPanel(t *testing.T) {
	m := NewManager(DefaultConfig())
	mars := body(t, "mars")

	tk := m.Select(mars)
	snap := m.Snapshot()
	if snap.Selected == nil || snap.Selected.ID != "mars" {
		t.Fatalf("Selected = %v", snap.Selected)
	}
	if snap.Description != mars.Description || !snap.DescriptionPending || !snap.ImagePending {
		t.Errorf("panel not reset: %+v", snap)
	}
	if tk.BodyID != "mars" || tk.Generation != snap.Generation {
		t.Errorf("ticket = %+v, generation %d", tk, snap.Generation)
	}
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	m := NewManager(DefaultConfig())
	old := m.Select(body(t, "venus"))
	cur := m.Select(body(t, "earth"))

	if m.SetDescription(old, "Venus text") {
		t.Error("stale description accepted")
	}
	if m.SetImage(old, &archive.ImageRecord{Title: "Venus"}) {
		t.Error("stale image accepted")
	}
	snap := m.Snapshot()
	if snap.Description == "Venus text" || snap.Image != nil {
		t.Errorf("stale data leaked: %+v", snap)
	}

	if !m.SetDescription(cur, "Earth text") {
		t.Error("current description rejected")
	}
	if !m.SetImage(cur, &archive.ImageRecord{Title: "Blue Marble"}) {
		t.Error("current image rejected")
	}
	snap = m.Snapshot()
	if snap.Description != "Earth text" || snap.DescriptionPending {
		t.Errorf("description = %q pending=%v", snap.Description, snap.DescriptionPending)
	}
	if snap.Image == nil || snap.Image.Title != "Blue Marble" || snap.ImagePending {
		t.Errorf("image = %+v pending=%v", snap.Image, snap.ImagePending)
	}
}

func TestReselectSameBodyInvalidates(t *testing.T) {
	m := NewManager(DefaultConfig())
	first := m.Select(body(t, "mars"))
	m.Select(body(t, "mars"))
	if m.Current(first) {
		t.Error("ticket from earlier selection of the same body still current")
	}
}

func TestDeselectInvalidates(t *testing.T) {
	m := NewManager(DefaultConfig())
	tk := m.Select(body(t, "saturn"))
	m.Deselect()
	if m.SetDescription(tk, "late") {
		t.Error("description accepted after deselect")
	}
	if m.Snapshot().HasSelection() {
		t.Error("selection survived Deselect")
	}
}

func TestEmptyDescriptionKeepsFallback(t *testing.T) {
	m := NewManager(DefaultConfig())
	mars := body(t, "mars")
	tk := m.Select(mars)
	m.SetDescription(tk, "")
	if got := m.Snapshot().Description; got != mars.Description {
		t.Errorf("Description = %q", got)
	}
}

func TestNoImage(t *testing.T) {
	m := NewManager(DefaultConfig())
	tk := m.Select(body(t, "andromeda"))
	if !m.SetImage(tk, nil) {
		t.Fatal("nil image rejected")
	}
	snap := m.Snapshot()
	if snap.Image != nil || snap.ImagePending {
		t.Errorf("image = %+v pending=%v", snap.Image, snap.ImagePending)
	}
}

func TestLand(t *testing.T) {
	m := NewManager(DefaultConfig())
	if _, err := m.Land(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Land without selection: %v", err)
	}

	m.Select(body(t, "sirius"))
	if _, err := m.Land(); !errors.Is(err, ErrNotLandable) {
		t.Errorf("Land on a star: %v", err)
	}

	m.Select(body(t, "earth"))
	b, err := m.Land()
	if err != nil || b.ID != "earth" {
		t.Fatalf("Land() = %v, %v", b.ID, err)
	}
	if m.Snapshot().View != ViewSurface {
		t.Error("view not switched to surface")
	}
	m.LiftOff()
	if snap := m.Snapshot(); snap.View != ViewOrbit || !snap.HasSelection() {
		t.Errorf("after LiftOff: view=%v selected=%v", snap.View, snap.HasSelection())
	}
}

func TestQuestionFlow(t *testing.T) {
	m := NewManager(DefaultConfig())
	if _, err := m.Ask("anything?"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Ask without selection: %v", err)
	}

	m.Select(body(t, "jupiter"))
	first, _ := m.Ask("How big?")
	second, _ := m.Ask("How many moons?")

	if m.SetAnswer(first, "Very big.", nil) {
		t.Error("superseded answer accepted")
	}
	if q := m.Snapshot().Question; !q.Pending || q.Question != "How many moons?" {
		t.Errorf("question = %+v", q)
	}

	if !m.SetAnswer(second, "Ninety-five.", nil) {
		t.Fatal("current answer rejected")
	}
	snap := m.Snapshot()
	if snap.Question.Pending || snap.Question.Answer != "Ninety-five." {
		t.Errorf("question = %+v", snap.Question)
	}
	if len(snap.History) != 1 {
		t.Errorf("history = %d entries", len(snap.History))
	}
}

type failingGenerator struct{}

func (failingGenerator) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("network unreachable")
}

func TestFailedAnswerShowsFallback(t *testing.T) {
	m := NewManager(DefaultConfig())
	svc := guide.NewService(failingGenerator{}, "", nil)
	mars := body(t, "mars")

	m.Select(mars)
	qt, err := m.Ask("Is there life?")
	if err != nil {
		t.Fatal(err)
	}
	answer, askErr := svc.Ask(context.Background(), mars, "Is there life?")
	m.SetAnswer(qt, answer, askErr)

	q := m.Snapshot().Question
	if q.Answer != guide.AnswerFallback || !q.Failed || q.Pending {
		t.Errorf("question = %+v, want fallback", q)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	m := NewManager(Config{MaxEvents: 5, MaxHistory: 3})
	m.Select(body(t, "earth"))
	for i := 0; i < 6; i++ {
		qt, _ := m.Ask("q")
		m.SetAnswer(qt, "a", nil)
	}
	if n := len(m.Snapshot().History); n != 3 {
		t.Errorf("history = %d, want 3", n)
	}
}

func TestEventRingBuffer(t *testing.T) {
	m := NewManager(Config{MaxEvents: 3})
	for _, id := range []string{"mercury", "venus", "earth", "mars"} {
		m.Select(body(t, id))
	}
	events := m.Snapshot().Events
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Body != "venus" || events[2].Body != "mars" {
		t.Errorf("order = %s..%s", events[0].Body, events[2].Body)
	}
	if recent := m.RecentEvents(1); len(recent) != 1 || recent[0].Body != "mars" {
		t.Errorf("RecentEvents(1) = %+v", recent)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewManager(DefaultConfig())
	tk := m.Select(body(t, "uranus"))
	m.SetImage(tk, &archive.ImageRecord{Title: "orig"})

	snap := m.Snapshot()
	snap.Selected.DisplayName = "changed"
	snap.Image.Title = "changed"

	again := m.Snapshot()
	if again.Selected.DisplayName != "Uranus" || again.Image.Title != "orig" {
		t.Error("snapshot shares memory with the manager")
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())
	bodies := catalog.All()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tk := m.Select(bodies[(i+j)%len(bodies)])
				m.SetDescription(tk, "x")
				_ = m.Snapshot()
			}
		}(i)
	}
	wg.Wait()
}
