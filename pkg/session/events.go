package session

import "fmt"

// Event names a pointer interaction on a marker.
type Event string

const (
	EventClick      Event = "click"
	EventMouseDown  Event = "mousedown"
	EventMouseEnter Event = "mouseenter"
	EventMouseLeave Event = "mouseleave"
	EventMouseMove  Event = "mousemove"
	EventMouseOut   Event = "mouseout"
	EventMouseOver  Event = "mouseover"
	EventMouseUp    Event = "mouseup"
)

// Events lists every supported event.
var Events = []Event{
	EventClick, EventMouseDown, EventMouseEnter, EventMouseLeave,
	EventMouseMove, EventMouseOut, EventMouseOver, EventMouseUp,
}

// ParseEvent validates an event name.
func ParseEvent(s string) (Event, error) {
	for _, e := range Events {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown event: %q", s)
}

// Handler receives an event together with the marker's placement.
type Handler func(ev Event, p Placement)

// Handlers is the set of optional event callbacks for a marker.
type Handlers struct {
	OnClick      Handler
	OnMouseDown  Handler
	OnMouseEnter Handler
	OnMouseLeave Handler
	OnMouseMove  Handler
	OnMouseOut   Handler
	OnMouseOver  Handler
	OnMouseUp    Handler
}

// For returns the handler registered for ev, or nil.
func (h Handlers) For(ev Event) Handler {
	switch ev {
	case EventClick:
		return h.OnClick
	case EventMouseDown:
		return h.OnMouseDown
	case EventMouseEnter:
		return h.OnMouseEnter
	case EventMouseLeave:
		return h.OnMouseLeave
	case EventMouseMove:
		return h.OnMouseMove
	case EventMouseOut:
		return h.OnMouseOut
	case EventMouseOver:
		return h.OnMouseOver
	case EventMouseUp:
		return h.OnMouseUp
	default:
		return nil
	}
}

// Dispatch calls the handler for ev if one is set and reports whether it did.
func (h Handlers) Dispatch(ev Event, p Placement) bool {
	fn := h.For(ev)
	if fn == nil {
		return false
	}
	fn(ev, p)
	return true
}
