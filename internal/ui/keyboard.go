package ui

import (
	"time"

	"github.com/ali-sdg/cosmos-walker/internal/controller"
)

// Hold timeouts. A terminal sends one key-down, waits for the OS repeat
// delay (roughly 375-660ms), then repeats every 30-50ms. A fresh key is held
// for DefaultRepeatDelay; once it repeats, DefaultHoldTimeout after each
// repeat.
const (
	DefaultRepeatDelay = 600 * time.Millisecond
	DefaultHoldTimeout = 180 * time.Millisecond
)

// Keyboard turns the key-down stream of a terminal into press and release
// events. Every key-down refreshes the hold; a key not refreshed within its
// timeout is released on the next frame.
type Keyboard struct {
	delay  time.Duration
	repeat time.Duration
	held   map[controller.Action]hold
}

type hold struct {
	at        time.Time
	repeating bool
}

// NewKeyboard creates an adapter that holds a fresh key for delay and a
// repeating key for repeat. Non-positive values take the defaults.
func NewKeyboard(delay, repeat time.Duration) *Keyboard {
	if delay <= 0 {
		delay = DefaultRepeatDelay
	}
	if repeat <= 0 {
		repeat = DefaultHoldTimeout
	}
	return &Keyboard{
		delay:  delay,
		repeat: repeat,
		held:   make(map[controller.Action]hold),
	}
}

// movementKeys maps key names to the actions they hold. Shifted letters
// sprint.
var movementKeys = map[string][]controller.Action{
	"w":     {controller.Forward},
	"up":    {controller.Forward},
	"s":     {controller.Back},
	"down":  {controller.Back},
	"a":     {controller.Left},
	"left":  {controller.Left},
	"d":     {controller.Right},
	"right": {controller.Right},

	"W":           {controller.Forward, controller.Sprint},
	"S":           {controller.Back, controller.Sprint},
	"A":           {controller.Left, controller.Sprint},
	"D":           {controller.Right, controller.Sprint},
	"shift+up":    {controller.Forward, controller.Sprint},
	"shift+down":  {controller.Back, controller.Sprint},
	"shift+left":  {controller.Left, controller.Sprint},
	"shift+right": {controller.Right, controller.Sprint},
}

// ActionsFor returns the actions a key holds, or nil for non-movement keys.
func ActionsFor(key string) []controller.Action {
	return movementKeys[key]
}

// Press refreshes the hold on a.
func (k *Keyboard) Press(a controller.Action, now time.Time) {
	_, ok := k.held[a]
	k.held[a] = hold{at: now, repeating: ok}
}

// Held reports whether a is currently held.
func (k *Keyboard) Held(a controller.Action) bool {
	_, ok := k.held[a]
	return ok
}

// Expire drops and returns every action whose hold ran out before now.
func (k *Keyboard) Expire(now time.Time) []controller.Action {
	var released []controller.Action
	for a, h := range k.held {
		timeout := k.delay
		if h.repeating {
			timeout = k.repeat
		}
		if now.Sub(h.at) >= timeout {
			released = append(released, a)
			delete(k.held, a)
		}
	}
	return released
}

// Clear releases everything.
func (k *Keyboard) Clear() {
	clear(k.held)
}
