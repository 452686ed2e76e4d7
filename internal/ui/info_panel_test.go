package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/state"
)

func selectedSnapshot(t *testing.T, id string, gen uint64) state.Snapshot {
	t.Helper()
	b := mustBody(t, id)
	return state.Snapshot{Selected: &b, Generation: gen, Description: b.Description}
}

func TestInfoPanelInput(t *testing.T) {
	p := NewInfoPanel().SetSize(40, 30).UpdateData(selectedSnapshot(t, "mars", 1)).Focus()
	if !p.Focused() {
		t.Fatal("not focused")
	}

	var q string
	for _, k := range []string{"r", "e", "d", " ", "?"} {
		p, q = p.HandleKey(keyMsg(k))
	}
	if q != "" || p.Input() != "red ?" {
		t.Fatalf("input = %q, submitted %q", p.Input(), q)
	}

	p, _ = p.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlU})
	if p.Input() != "" {
		t.Errorf("ctrl+u left %q", p.Input())
	}

	p, q = p.HandleKey(keyMsg("enter"))
	if q != "" {
		t.Errorf("blank input submitted %q", q)
	}

	p, _ = p.HandleKey(keyMsg("   why "))
	p, q = p.HandleKey(keyMsg("enter"))
	if q != "why" || p.Input() != "" {
		t.Errorf("submitted %q, left %q", q, p.Input())
	}
}

func TestInfoPanelInputLimit(t *testing.T) {
	p := NewInfoPanel().UpdateData(selectedSnapshot(t, "mars", 1)).Focus()
	p, _ = p.HandleKey(keyMsg(strings.Repeat("x", maxQuestionLen+50)))
	if len([]rune(p.Input())) != maxQuestionLen {
		t.Errorf("input length = %d", len(p.Input()))
	}
}

func TestInfoPanelResetsOnNewSelection(t *testing.T) {
	p := NewInfoPanel().UpdateData(selectedSnapshot(t, "mars", 1)).Focus()
	p, _ = p.HandleKey(keyMsg("abc"))

	p = p.UpdateData(selectedSnapshot(t, "mars", 1))
	if p.Input() != "abc" || !p.Focused() {
		t.Error("same selection cleared the input")
	}

	p = p.UpdateData(selectedSnapshot(t, "venus", 2))
	if p.Input() != "" || p.Focused() {
		t.Error("new selection kept the input")
	}

	if p.UpdateData(state.Snapshot{}).Focus().Focused() {
		t.Error("focused without a selection")
	}
}

func TestInfoPanelView(t *testing.T) {
	snap := selectedSnapshot(t, "jupiter", 3)
	snap.ImagePending = true
	snap.Question = state.Exchange{Question: "storms?", Pending: true}
	snap.History = []state.Exchange{{Question: "moons?", Answer: "Ninety-five.", Failed: false}}

	p := NewInfoPanel().SetSize(44, 40).UpdateData(snap)
	out := p.View()
	for _, want := range []string{"Jupiter", "searching", "moons?", "Ninety-five.", "storms?", "thinking", "/ to ask"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	snap.ImagePending = false
	snap.Image = &archive.ImageRecord{Title: "Great Red Spot", Date: "1979-03-01", URL: "https://images.test/grs.jpg"}
	out = p.UpdateData(snap).View()
	if !strings.Contains(out, "Great Red Spot") || !strings.Contains(out, "1979-03-01") {
		t.Errorf("image not shown:\n%s", out)
	}

	if NewInfoPanel().SetSize(40, 10).View() != "" {
		t.Error("empty panel rendered content")
	}
}
