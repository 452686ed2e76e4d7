package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ali-sdg/cosmos-walker/internal/state"
)

const maxQuestionLen = 200

// InfoPanel shows the description, archive image and Q&A of the selected
// body, and owns the question input line.
type InfoPanel struct {
	width    int
	height   int
	snapshot state.Snapshot

	input   []rune
	focused bool
}

// NewInfoPanel creates an empty panel.
func NewInfoPanel() InfoPanel {
	return InfoPanel{}
}

// SetSize updates the panel size.
func (p InfoPanel) SetSize(width, height int) InfoPanel {
	p.width = width
	p.height = height
	return p
}

// UpdateData replaces the displayed state.
func (p InfoPanel) UpdateData(snap state.Snapshot) InfoPanel {
	if !snap.HasSelection() || (p.snapshot.Selected != nil && snap.Generation != p.snapshot.Generation) {
		p.input = nil
		p.focused = false
	}
	p.snapshot = snap
	return p
}

// Focus moves keyboard input to the question line.
func (p InfoPanel) Focus() InfoPanel {
	if p.snapshot.HasSelection() {
		p.focused = true
	}
	return p
}

// Focused reports whether the question line has keyboard input.
func (p InfoPanel) Focused() bool { return p.focused }

// Input returns the text typed so far.
func (p InfoPanel) Input() string { return string(p.input) }

// HandleKey edits the question line. It returns the submitted question when
// enter is pressed on non-blank input.
func (p InfoPanel) HandleKey(msg tea.KeyMsg) (InfoPanel, string) {
	switch msg.Type {
	case tea.KeyEsc:
		p.focused = false
	case tea.KeyEnter:
		q := strings.TrimSpace(string(p.input))
		if q == "" {
			return p, ""
		}
		p.input = nil
		return p, q
	case tea.KeyBackspace:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case tea.KeyCtrlU:
		p.input = nil
	case tea.KeySpace:
		p.appendRunes([]rune{' '})
	case tea.KeyRunes:
		p.appendRunes(msg.Runes)
	}
	return p, ""
}

func (p *InfoPanel) appendRunes(rs []rune) {
	for _, r := range rs {
		if len(p.input) >= maxQuestionLen {
			return
		}
		p.input = append(p.input, r)
	}
}

// View renders the panel.
func (p InfoPanel) View() string {
	snap := p.snapshot
	if !snap.HasSelection() || p.width < 10 {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(snap.Selected.Color)).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(p.width - 2)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(p.width - 2)
	questionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Width(p.width - 2)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Width(p.width - 2)

	var lines []string
	lines = append(lines, titleStyle.Render(snap.Selected.DisplayName), dimStyle.Render(string(snap.Selected.Kind)), "")

	desc := snap.Description
	if snap.DescriptionPending {
		desc += " …"
	}
	lines = append(lines, textStyle.Render(desc), "")

	lines = append(lines, sectionStyle.Render("Archive"))
	switch {
	case snap.ImagePending:
		lines = append(lines, dimStyle.Render("searching…"))
	case snap.Image == nil:
		lines = append(lines, dimStyle.Render("no image found"))
	default:
		lines = append(lines,
			textStyle.Render(snap.Image.Title),
			dimStyle.Render(snap.Image.Date),
			dimStyle.Render(snap.Image.URL),
		)
	}
	lines = append(lines, "")

	lines = append(lines, sectionStyle.Render("Ask"))
	history := snap.History
	if len(history) > 3 {
		history = history[len(history)-3:]
	}
	for _, ex := range history {
		lines = append(lines, questionStyle.Render("? "+ex.Question))
		if ex.Failed {
			lines = append(lines, errorStyle.Render(ex.Answer))
		} else {
			lines = append(lines, textStyle.Render(ex.Answer))
		}
	}
	if snap.Question.Pending {
		lines = append(lines, questionStyle.Render("? "+snap.Question.Question), dimStyle.Render("thinking…"))
	}

	prompt := "› " + string(p.input)
	if p.focused {
		prompt += "█"
		lines = append(lines, questionStyle.Render(prompt))
	} else {
		lines = append(lines, dimStyle.Render("/ to ask a question"))
	}

	out := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.NewStyle().
		Width(p.width).
		MaxHeight(p.height).
		PaddingLeft(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("238")).
		Render(out)
}
