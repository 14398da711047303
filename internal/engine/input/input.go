// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/pulpcarousel/internal/arcball"
)

// EventType identifies a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventWindowLeave
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Input polls SDL and forwards left-button drags to a pointer handler.
type Input struct {
	events   []Event
	pointer  arcball.PointerHandler
	dragging bool
}

// New creates a new input handler. pointer may be nil.
func New(pointer arcball.PointerHandler) *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		pointer: pointer,
	}
}

// SetPointer replaces the pointer handler.
func (i *Input) SetPointer(p arcball.PointerHandler) {
	if i.pointer != nil && i.dragging {
		i.pointer.PointerUp()
	}
	i.dragging = false
	i.pointer = p
}

// Dragging reports whether the left button is held over the window.
func (i *Input) Dragging() bool {
	return i.dragging
}

// Update polls SDL events, dispatches them and returns true on quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	quit := false
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev := translate(event)
		if ev.Type == EventNone {
			continue
		}
		i.Dispatch(ev)
		if ev.Type == EventQuit {
			quit = true
		}
	}
	return quit
}

func translate(event sdl.Event) Event {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}
		case sdl.WINDOWEVENT_LEAVE, sdl.WINDOWEVENT_FOCUS_LOST:
			return Event{Type: EventWindowLeave}
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}
		}

	case *sdl.MouseMotionEvent:
		return Event{Type: EventMouseMove, MouseX: int(e.X), MouseY: int(e.Y)}

	case *sdl.MouseButtonEvent:
		t := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventMouseDown
		}
		return Event{Type: t, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
	}
	return Event{}
}

// Dispatch records ev and forwards pointer activity.
func (i *Input) Dispatch(ev Event) {
	i.events = append(i.events, ev)
	if i.pointer == nil {
		return
	}

	switch ev.Type {
	case EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			i.dragging = true
			i.pointer.PointerDown(float32(ev.MouseX), float32(ev.MouseY))
		}
	case EventMouseMove:
		i.pointer.PointerMove(float32(ev.MouseX), float32(ev.MouseY))
	case EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT && i.dragging {
			i.dragging = false
			i.pointer.PointerUp()
		}
	case EventWindowLeave:
		if i.dragging {
			i.dragging = false
			i.pointer.PointerUp()
		}
	}
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
