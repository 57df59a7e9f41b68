// Package input turns SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a viewer event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventDrag
	EventZoom
	EventClick
)

// Drag buttons.
const (
	ButtonLeft  = sdl.BUTTON_LEFT
	ButtonRight = sdl.BUTTON_RIGHT
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  sdl.Scancode
	// Shift is set on key events with a shift key held.
	Shift  bool
	Width  int
	Height int
	// DX and DY are the mouse motion of a drag.
	DX, DY float32
	// X and Y are the window position of a click.
	X, Y   float32
	Button uint8
	// Zoom is the wheel delta, positive away from the user.
	Zoom float32
}

// Input handles all input processing.
type Input struct {
	events []Event
	// button is the mouse button held down, or 0.
	button uint8
	// dragged is set once the held button has moved the mouse.
	dragged bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type:  EventKeyDown,
					Key:   e.Keysym.Scancode,
					Shift: e.Keysym.Mod&sdl.KMOD_SHIFT != 0,
				})
			}

		case *sdl.MouseButtonEvent:
			switch {
			case e.Type == sdl.MOUSEBUTTONDOWN && i.button == 0:
				i.button, i.dragged = e.Button, false
			case e.Type == sdl.MOUSEBUTTONUP && e.Button == i.button:
				if !i.dragged {
					i.events = append(i.events, Event{
						Type:   EventClick,
						X:      float32(e.X),
						Y:      float32(e.Y),
						Button: e.Button,
					})
				}
				i.button = 0
			}

		case *sdl.MouseMotionEvent:
			if i.button != 0 {
				i.dragged = true
				i.events = append(i.events, Event{
					Type:   EventDrag,
					DX:     float32(e.XRel),
					DY:     float32(e.YRel),
					Button: i.button,
				})
			}

		case *sdl.MouseWheelEvent:
			zoom := float32(e.Y)
			if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
				zoom = -zoom
			}
			i.events = append(i.events, Event{Type: EventZoom, Zoom: zoom})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
