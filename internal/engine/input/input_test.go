package input

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

type recorder struct {
	calls []string
}

func (r *recorder) PointerDown(x, y float32) { r.calls = append(r.calls, fmt.Sprintf("down %v,%v", x, y)) }
func (r *recorder) PointerMove(x, y float32) { r.calls = append(r.calls, fmt.Sprintf("move %v,%v", x, y)) }
func (r *recorder) PointerUp()               { r.calls = append(r.calls, "up") }

func TestDispatchDrag(t *testing.T) {
	rec := &recorder{}
	in := New(rec)

	in.Dispatch(Event{Type: EventMouseMove, MouseX: 5, MouseY: 6})
	in.Dispatch(Event{Type: EventMouseDown, MouseX: 10, MouseY: 20, Button: sdl.BUTTON_LEFT})
	if !in.Dragging() {
		t.Error("Dragging() = false after left press")
	}
	in.Dispatch(Event{Type: EventMouseMove, MouseX: 30, MouseY: 20})
	in.Dispatch(Event{Type: EventMouseUp, MouseX: 30, MouseY: 20, Button: sdl.BUTTON_LEFT})

	want := []string{"move 5,6", "down 10,20", "move 30,20", "up"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if in.Dragging() {
		t.Error("Dragging() = true after release")
	}
}

func TestDispatchIgnoresOtherButtons(t *testing.T) {
	rec := &recorder{}
	in := New(rec)

	in.Dispatch(Event{Type: EventMouseDown, Button: sdl.BUTTON_RIGHT})
	in.Dispatch(Event{Type: EventMouseUp, Button: sdl.BUTTON_RIGHT})
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
}

func TestLeaveEndsDrag(t *testing.T) {
	rec := &recorder{}
	in := New(rec)

	in.Dispatch(Event{Type: EventMouseDown, MouseX: 1, MouseY: 1, Button: sdl.BUTTON_LEFT})
	in.Dispatch(Event{Type: EventWindowLeave})
	in.Dispatch(Event{Type: EventWindowLeave})

	want := []string{"down 1,1", "up"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestSetPointerReleasesDrag(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	in := New(first)
	in.Dispatch(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT})
	in.SetPointer(second)

	if got := first.calls[len(first.calls)-1]; got != "up" {
		t.Errorf("old handler last call = %q, want up", got)
	}
	in.Dispatch(Event{Type: EventMouseMove, MouseX: 2, MouseY: 3})
	if !reflect.DeepEqual(second.calls, []string{"move 2,3"}) {
		t.Errorf("new handler calls = %v", second.calls)
	}
}

func TestKeyPressed(t *testing.T) {
	in := New(nil)
	in.Dispatch(Event{Type: EventKeyDown, Key: sdl.SCANCODE_ESCAPE})
	if !in.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		t.Error("IsKeyPressed(ESC) = false")
	}
	if in.IsKeyPressed(sdl.SCANCODE_A) {
		t.Error("IsKeyPressed(A) = true")
	}
	if len(in.Events()) != 1 {
		t.Errorf("Events() = %v", in.Events())
	}
}
