// Package state provides thread-safe state management for the application.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ali-sdg/cosmos-walker/internal/archive"
	"github.com/ali-sdg/cosmos-walker/internal/catalog"
	"github.com/ali-sdg/cosmos-walker/internal/guide"
)

// ErrNoSelection is returned when an operation needs a selected body.
var ErrNoSelection = errors.New("no body selected")

// ErrNotLandable is returned when landing on a body without a surface.
var ErrNotLandable = errors.New("body has no walkable surface")

// View is the active scene.
type View int

const (
	ViewOrbit View = iota
	ViewSurface
)

func (v View) String() string {
	if v == ViewSurface {
		return "surface"
	}
	return "orbit"
}

// EventType represents the type of state change event.
type EventType string

const (
	EventSelected    EventType = "SELECTED"
	EventDeselected  EventType = "DESELECTED"
	EventLanded      EventType = "LANDED"
	EventLifted      EventType = "LIFTED_OFF"
	EventDescribed   EventType = "DESCRIBED"
	EventImageFound  EventType = "IMAGE_FOUND"
	EventNoImage     EventType = "NO_IMAGE"
	EventAnswered    EventType = "ANSWERED"
	EventAskFailed   EventType = "ASK_FAILED"
	EventStaleResult EventType = "STALE_RESULT"
)

// Event records one state change.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Ticket identifies the selection an asynchronous request was issued for.
// Results carrying an out-of-date ticket are dropped.
type Ticket struct {
	Generation uint64
	BodyID     string
}

// QuestionTicket additionally identifies one question within a selection.
type QuestionTicket struct {
	Ticket
	Seq uint64
}

// Exchange is one question and its answer.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Pending  bool   `json:"pending,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu  sync.RWMutex
	now func() time.Time

	// Selection
	selected   *catalog.Body
	generation uint64
	view       View

	// Info panel
	description        string
	descriptionPending bool
	image              *archive.ImageRecord
	imagePending       bool

	// Q&A
	current    Exchange
	questionAt uint64
	history    []Exchange
	maxHistory int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents  int
	MaxHistory int // answered questions kept per selection
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:  50,
		MaxHistory: 10,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &Manager{
		now:        time.Now,
		maxEvents:  maxEvents,
		maxHistory: maxHistory,
		events:     make([]Event, 0, maxEvents),
	}
}

// Select makes b the selected body, invalidating every outstanding request,
// and returns the ticket new requests must carry.
func (m *Manager) Select(b catalog.Body) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	body := b
	m.selected = &body
	m.view = ViewOrbit
	m.description = b.Description
	m.descriptionPending = true
	m.image = nil
	m.imagePending = true
	m.current = Exchange{}
	m.history = nil
	m.addEvent(EventSelected, b.ID, "")
	return Ticket{Generation: m.generation, BodyID: b.ID}
}

// Deselect clears the selection and returns to the orbital view.
func (m *Manager) Deselect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return
	}
	id := m.selected.ID
	m.generation++
	m.selected = nil
	m.view = ViewOrbit
	m.description = ""
	m.descriptionPending = false
	m.image = nil
	m.imagePending = false
	m.current = Exchange{}
	m.history = nil
	m.addEvent(EventDeselected, id, "")
}

// Land switches to the surface view of the selected body.
func (m *Manager) Land() (catalog.Body, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return catalog.Body{}, ErrNoSelection
	}
	if !m.selected.Kind.Landable() {
		return catalog.Body{}, ErrNotLandable
	}
	m.view = ViewSurface
	m.addEvent(EventLanded, m.selected.ID, "")
	return *m.selected, nil
}

// LiftOff returns to the orbital view, keeping the selection.
func (m *Manager) LiftOff() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.view != ViewSurface {
		return
	}
	m.view = ViewOrbit
	id := ""
	if m.selected != nil {
		id = m.selected.ID
	}
	m.addEvent(EventLifted, id, "")
}

// Current reports whether t still matches the selection.
func (m *Manager) Current(t Ticket) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLocked(t)
}

func (m *Manager) currentLocked(t Ticket) bool {
	return m.selected != nil && t.Generation == m.generation && t.BodyID == m.selected.ID
}

// SetDescription stores a generated description. It reports false and
// changes nothing when t is stale.
func (m *Manager) SetDescription(t Ticket, text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(t) {
		m.addEvent(EventStaleResult, t.BodyID, "description")
		return false
	}
	if text != "" {
		m.description = text
	}
	m.descriptionPending = false
	m.addEvent(EventDescribed, t.BodyID, "")
	return true
}

// SetImage stores an image lookup result; nil means no image. It reports
// false and changes nothing when t is stale.
func (m *Manager) SetImage(t Ticket, rec *archive.ImageRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(t) {
		m.addEvent(EventStaleResult, t.BodyID, "image")
		return false
	}
	m.imagePending = false
	if rec == nil {
		m.image = nil
		m.addEvent(EventNoImage, t.BodyID, "")
		return true
	}
	cp := *rec
	m.image = &cp
	m.addEvent(EventImageFound, t.BodyID, rec.Title)
	return true
}

// Ask records a pending question about the selected body. A newer question
// supersedes any answer still in flight.
func (m *Manager) Ask(question string) (QuestionTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == nil {
		return QuestionTicket{}, ErrNoSelection
	}
	m.questionAt++
	m.current = Exchange{Question: question, Pending: true}
	return QuestionTicket{
		Ticket: Ticket{Generation: m.generation, BodyID: m.selected.ID},
		Seq:    m.questionAt,
	}, nil
}

// SetAnswer completes the question identified by qt. A non-nil err stores
// guide.AnswerFallback. It reports false when qt is stale.
func (m *Manager) SetAnswer(qt QuestionTicket, answer string, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(qt.Ticket) || qt.Seq != m.questionAt {
		m.addEvent(EventStaleResult, qt.BodyID, "answer")
		return false
	}
	m.current.Pending = false
	if err != nil {
		m.current.Answer = guide.AnswerFallback
		m.current.Failed = true
		m.addEvent(EventAskFailed, qt.BodyID, err.Error())
	} else {
		m.current.Answer = answer
		m.addEvent(EventAnswered, qt.BodyID, "")
	}
	m.history = append(m.history, m.current)
	if len(m.history) > m.maxHistory {
		m.history = m.history[1:]
	}
	return true
}

// addEvent adds an event to the ring buffer. Callers hold the lock.
func (m *Manager) addEvent(t EventType, body, detail string) {
	e := Event{Type: t, Timestamp: m.now(), Body: body, Detail: detail}
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Selected           *catalog.Body
	Generation         uint64
	View               View
	Description        string
	DescriptionPending bool
	Image              *archive.ImageRecord
	ImagePending       bool
	Question           Exchange
	History            []Exchange
	Events             []Event
}

// HasSelection reports whether a body is selected.
func (s Snapshot) HasSelection() bool { return s.Selected != nil }

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Generation:         m.generation,
		View:               m.view,
		Description:        m.description,
		DescriptionPending: m.descriptionPending,
		ImagePending:       m.imagePending,
		Question:           m.current,
		Events:             m.getEventsOrdered(),
	}
	if m.selected != nil {
		b := *m.selected
		snap.Selected = &b
	}
	if m.image != nil {
		rec := *m.image
		snap.Image = &rec
	}
	if len(m.history) > 0 {
		snap.History = make([]Exchange, len(m.history))
		copy(snap.History, m.history)
	}
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
