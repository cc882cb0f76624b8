package windowserver

import "time"

// EventType identifies a kind of event delivered into the tree.
type EventType uint8

const (
	EventMousePress       EventType = iota // a button went down (dispatched top-down)
	EventMouseRelease                      // a button went up (dispatched top-down)
	EventMouseMove                         // pointer moved with no drag capture (top-down)
	EventMouseDrag                         // pointer moved while a node holds the capture (bubbled)
	EventMouseDragRelease                  // capture ended by a release (bubbled)
	EventMouseEnter                        // pointer entered a node (bubbled)
	EventMouseLeave                        // pointer left a node (bubbled)
	EventFocusGained                       // node became the focus target (bubbled)
	EventFocusLost                         // node lost the focus (bubbled)
	EventKey                               // keyboard input for the focused node
)

var eventTypeNames = [...]string{
	EventMousePress:       "press",
	EventMouseRelease:     "release",
	EventMouseMove:        "move",
	EventMouseDrag:        "drag",
	EventMouseDragRelease: "drag-release",
	EventMouseEnter:       "enter",
	EventMouseLeave:       "leave",
	EventFocusGained:      "focus-gained",
	EventFocusLost:        "focus-lost",
	EventKey:              "key",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MouseButton is a bitmask of pressed pointer buttons.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = 1 << iota // primary (left) mouse button
	MouseButtonRight                          // secondary (right) mouse button
	MouseButtonMiddle                         // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Key identifies a non-printable key. Printable input travels as a rune.
type Key uint8

const (
	KeyNone Key = iota
	KeyBackspace
	KeyDelete
	KeyEnter
	KeyTab
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// KeyEvent is a raw keyboard sample.
type KeyEvent struct {
	Key       Key
	Rune      rune
	Down      bool
	Modifiers KeyModifiers
}

// PointerSample is a raw pointer sample: where the pointer is and which
// buttons are held. A zero Time is replaced by the server clock.
type PointerSample struct {
	Position Point
	Buttons  MouseButton
	Time     time.Time
}

// Event is delivered into the tree. Position is relative to the node that
// is currently offered the event and is rewritten while the event travels.
type Event struct {
	Type           EventType
	Position       Point
	ScreenPosition Point
	Buttons        MouseButton
	ClickCount     int
	Key            KeyEvent
}

// Locatable reports whether the event carries a pointer position that
// hit-testing applies to.
func (e *Event) Locatable() bool {
	switch e.Type {
	case EventMousePress, EventMouseRelease, EventMouseMove, EventMouseDrag,
		EventMouseDragRelease, EventMouseEnter, EventMouseLeave:
		return true
	}
	return false
}
