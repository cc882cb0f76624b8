package windowserver

import "time"

// CursorState is the interaction state of the single pointer.
type CursorState uint8

const (
	CursorIdle CursorState = iota
	CursorHovering
	CursorPressed
)

func (s CursorState) String() string {
	switch s {
	case CursorHovering:
		return "hovering"
	case CursorPressed:
		return "pressed"
	}
	return "idle"
}

// Cursor turns raw pointer and keyboard samples into semantic events. It
// tracks hover, focus and drag capture for one display. The node
// references are lookup only; Server.destroy clears them when their node
// goes away.
type Cursor struct {
	screen *Node

	position Point
	previous Point
	buttons  MouseButton

	hovered *Node
	focused *Node
	dragged *Node

	multiClick time.Duration
	lastPress  time.Time
	clicks     int
}

func newCursor(screen *Node, multiClick time.Duration) *Cursor {
	return &Cursor{screen: screen, multiClick: multiClick}
}

// Position returns the pointer position in screen coordinates.
func (c *Cursor) Position() Point { return c.position }

// Previous returns the position before the last sample.
func (c *Cursor) Previous() Point { return c.previous }

// Buttons returns the buttons currently held.
func (c *Cursor) Buttons() MouseButton { return c.buttons }

// Hovered returns the component under the pointer, if any.
func (c *Cursor) Hovered() *Node { return c.hovered }

// Focused returns the component receiving key input, if any.
func (c *Cursor) Focused() *Node { return c.focused }

// Dragged returns the component holding drag capture, if any.
func (c *Cursor) Dragged() *Node { return c.dragged }

// ClickCount returns the click count of the last press.
func (c *Cursor) ClickCount() int { return c.clicks }

// State derives the interaction state from the tracked references.
func (c *Cursor) State() CursorState {
	switch {
	case c.buttons != 0:
		return CursorPressed
	case c.hovered != nil:
		return CursorHovering
	}
	return CursorIdle
}

// processPointer applies one pointer sample. A sample carries at most one
// transition: a press wins over a release in the same sample (one button up,
// another down), and either edge wins over movement.
func (c *Cursor) processPointer(sample PointerSample) {
	pressed := sample.Buttons &^ c.buttons
	released := c.buttons &^ sample.Buttons
	moved := sample.Position != c.position

	c.previous = c.position
	c.position = sample.Position
	c.buttons = sample.Buttons

	switch {
	case pressed != 0:
		c.press(sample.Time)
	case released != 0:
		c.release()
	case moved:
		c.move()
	}
}

func (c *Cursor) event(typ EventType) *Event {
	return &Event{
		Type:           typ,
		Position:       c.position,
		ScreenPosition: c.position,
		Buttons:        c.buttons,
		ClickCount:     c.clicks,
	}
}

func (c *Cursor) press(t time.Time) {
	if c.clicks > 0 && t.Sub(c.lastPress) < c.multiClick {
		c.clicks++
	} else {
		c.clicks = 1
	}
	c.lastPress = t

	Dispatch(c.screen, c.event(EventMousePress))

	hit := c.screen.NodeAt(c.position)
	if hit == nil {
		return
	}
	if hit != c.screen {
		c.dragged = hit
	}
	if hit != c.focused {
		c.transferFocus(hit)
	}
}

func (c *Cursor) transferFocus(hit *Node) {
	if c.focused != nil {
		DispatchUpwards(c.focused, c.event(EventFocusLost))
	}
	if w := hit.Window(); w != nil {
		w.BringToFront()
	}
	accepted := DispatchUpwards(hit, c.event(EventFocusGained))
	if accepted == nil {
		accepted = hit
	}
	c.focused = accepted
}

func (c *Cursor) release() {
	if c.dragged != nil {
		target := c.dragged
		c.dragged = nil
		DispatchUpwards(target, c.event(EventMouseDragRelease))
	}
	Dispatch(c.screen, c.event(EventMouseRelease))
}

func (c *Cursor) move() {
	if c.dragged != nil {
		DispatchUpwards(c.dragged, c.event(EventMouseDrag))
		return
	}
	hit := c.screen.NodeAt(c.position)
	if hit != c.hovered {
		if c.hovered != nil {
			DispatchUpwards(c.hovered, c.event(EventMouseLeave))
		}
		c.hovered = hit
		if hit != nil {
			DispatchUpwards(hit, c.event(EventMouseEnter))
		}
	}
	Dispatch(c.screen, c.event(EventMouseMove))
}

// processKey delivers k to the focused component only. Without focus the
// sample is dropped.
func (c *Cursor) processKey(k KeyEvent) bool {
	if c.focused == nil || !c.focused.CanReceiveEvents() {
		return false
	}
	return c.focused.handle(&Event{Type: EventKey, Key: k})
}

// forget clears every reference to n.
func (c *Cursor) forget(n *Node) {
	if c.hovered == n {
		c.hovered = nil
	}
	if c.focused == n {
		c.focused = nil
	}
	if c.dragged == n {
		c.dragged = nil
	}
}
