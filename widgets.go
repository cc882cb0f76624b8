package windowserver

import (
	"image"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ComponentType distinguishes the behavior and visuals of a Node.
type ComponentType uint8

const (
	TypeScreen     ComponentType = iota // root of the display, owns everything on screen
	TypeBackground                      // desktop backdrop with a drag selection rectangle
	TypeWindow                          // titled top-level container, moved by its title bar
	TypeLabel                           // a line of text
	TypeButton                          // titled action source with hover/pressed states
	TypeTextField                       // single line text input; its title is its text
	TypeCheckbox                        // toggle with an internal label child
	TypePanel                           // plain container
)

var componentTypeNames = [...]string{
	TypeScreen:     "screen",
	TypeBackground: "background",
	TypeWindow:     "window",
	TypeLabel:      "label",
	TypeButton:     "button",
	TypeTextField:  "textfield",
	TypeCheckbox:   "checkbox",
	TypePanel:      "panel",
}

func (t ComponentType) String() string {
	if int(t) < len(componentTypeNames) {
		return componentTypeNames[t]
	}
	return "unknown"
}

// ParseComponentType resolves a type name as used in scripts and config.
func ParseComponentType(s string) (ComponentType, bool) {
	for i, name := range componentTypeNames {
		if strings.EqualFold(name, s) {
			return ComponentType(i), true
		}
	}
	return 0, false
}

// clientCreatable reports whether clients may create nodes of type t.
func clientCreatable(t ComponentType) bool {
	switch t {
	case TypeWindow, TypeLabel, TypeButton, TypeTextField, TypeCheckbox, TypePanel:
		return true
	}
	return false
}

const (
	titleBarHeight  = 24
	checkboxBoxSize = 15
	checkboxTextGap = 5
	textPadding     = 4
)

// --- Capability payloads ---

type titleState struct {
	text string
}

type actionState struct {
	listener   ProcessID
	registered bool
}

// pressState tracks hover/press visuals of clickable nodes.
type pressState struct {
	hovered bool
	pressed bool
}

type focusState struct {
	focused bool
}

type checkState struct {
	checked bool
}

type windowDragState struct {
	active bool
	anchor Point
}

type desktopState struct {
	image     image.Image
	selecting bool
	start     Point
	selection Rect
}

// attachCapabilities creates the payloads that n's type carries.
func attachCapabilities(n *Node) {
	switch n.Type {
	case TypeBackground:
		n.desktop = &desktopState{}
	case TypeWindow:
		n.title = &titleState{}
		n.focus = &focusState{}
		n.drag = &windowDragState{}
	case TypeLabel:
		n.title = &titleState{}
	case TypeButton:
		n.title = &titleState{}
		n.action = &actionState{}
		n.press = &pressState{}
	case TypeTextField:
		n.title = &titleState{}
		n.focus = &focusState{}
	case TypeCheckbox:
		n.check = &checkState{}
		n.press = &pressState{}
		n.label = newNode(n.Name+".label", TypeLabel)
		n.AddChild(n.label)
	}
}

// --- Titles ---

// SupportsTitle reports whether the node carries a title.
func (n *Node) SupportsTitle() bool {
	return n.title != nil || (n.Type == TypeCheckbox && n.label != nil)
}

// Title returns the node's title. ok is false if the node has none.
func (n *Node) Title() (title string, ok bool) {
	switch {
	case n.title != nil:
		return n.title.text, true
	case n.Type == TypeCheckbox && n.label != nil:
		return n.label.Title()
	}
	return "", false
}

// SetTitle changes the node's title. It returns false if the node does not
// support titles.
func (n *Node) SetTitle(title string) bool {
	switch {
	case n.title != nil:
		if n.title.text != title {
			n.title.text = title
			n.MarkFor(RequireUpdate)
		}
		return true
	case n.Type == TypeCheckbox && n.label != nil:
		if old, _ := n.label.Title(); old != title {
			n.label.SetTitle(title)
			n.MarkFor(RequireLayout)
		}
		return true
	}
	return false
}

// --- Actions ---

// SupportsActions reports whether the node can fire actions.
func (n *Node) SupportsActions() bool {
	return n.action != nil
}

// SetActionListener registers the process that receives this node's actions.
// It returns false if the node is not an action source.
func (n *Node) SetActionListener(target ProcessID) bool {
	if n.action == nil {
		return false
	}
	n.action.listener = target
	n.action.registered = true
	return true
}

// ActionListener returns the registered listener.
func (n *Node) ActionListener() (ProcessID, bool) {
	if n.action == nil || !n.action.registered {
		return 0, false
	}
	return n.action.listener, true
}

func (n *Node) fireAction() {
	if n.action == nil || !n.action.registered {
		return
	}
	if h := n.hostOf(); h != nil {
		h.FireAction(n)
	}
}

// --- Other state accessors ---

// Checked reports whether a checkbox is checked.
func (n *Node) Checked() bool {
	return n.check != nil && n.check.checked
}

// Hovered reports whether the pointer is over a clickable node.
func (n *Node) Hovered() bool {
	return n.press != nil && n.press.hovered
}

// Pressed reports whether a clickable node is held down.
func (n *Node) Pressed() bool {
	return n.press != nil && n.press.pressed
}

// Focused reports whether a focusable node currently holds the focus.
func (n *Node) Focused() bool {
	return n.focus != nil && n.focus.focused
}

// Selection returns the background's current selection rectangle; the zero
// Rect means no selection.
func (n *Node) Selection() Rect {
	if n.desktop == nil {
		return Rect{}
	}
	return n.desktop.selection
}

// --- Type behavior ---

func handleType(n *Node, e *Event) bool {
	switch n.Type {
	case TypeWindow:
		return handleWindow(n, e)
	case TypeButton:
		return handleClickable(n, e, func() { n.fireAction() })
	case TypeCheckbox:
		return handleClickable(n, e, func() {
			n.check.checked = !n.check.checked
		})
	case TypeTextField:
		return handleTextField(n, e)
	case TypeBackground:
		return handleBackground(n, e)
	}
	return false
}

func handleWindow(n *Node, e *Event) bool {
	switch e.Type {
	case EventMousePress:
		if e.Position.Y < titleBarHeight {
			n.drag.active = true
			n.drag.anchor = e.Position
		}
		return true
	case EventMouseDrag:
		if !n.drag.active {
			return false
		}
		origin := Point{}
		if n.parent != nil {
			origin = n.parent.LocationOnScreen()
		}
		pos := e.ScreenPosition.Sub(origin).Sub(n.drag.anchor)
		b := n.bounds
		b.X, b.Y = pos.X, pos.Y
		n.SetBounds(b)
		return true
	case EventMouseDragRelease:
		was := n.drag.active
		n.drag.active = false
		return was
	case EventFocusGained:
		n.focus.focused = true
		n.MarkFor(RequirePaint)
		return true
	case EventFocusLost:
		n.focus.focused = false
		n.MarkFor(RequirePaint)
		return true
	}
	return false
}

// handleClickable implements the press/release cycle shared by buttons and
// checkboxes. activate runs when a press is released inside the node.
func handleClickable(n *Node, e *Event, activate func()) bool {
	p := n.press
	switch e.Type {
	case EventMouseEnter:
		p.hovered = true
	case EventMouseLeave:
		p.hovered = false
	case EventMousePress:
		p.pressed = true
	case EventMouseRelease, EventMouseDragRelease:
		if !p.pressed {
			return true
		}
		p.pressed = false
		if n.LocalBounds().Contains(e.Position) {
			activate()
		}
	case EventMouseMove, EventMouseDrag:
		return true
	default:
		return false
	}
	n.MarkFor(RequirePaint)
	return true
}

func handleTextField(n *Node, e *Event) bool {
	switch e.Type {
	case EventFocusGained:
		n.focus.focused = true
	case EventFocusLost:
		n.focus.focused = false
	case EventKey:
		if !e.Key.Down {
			return true
		}
		text := n.title.text
		switch {
		case e.Key.Key == KeyBackspace:
			if _, size := utf8.DecodeLastRuneInString(text); size > 0 {
				text = text[:len(text)-size]
			}
		case e.Key.Rune != 0 && unicode.IsPrint(e.Key.Rune):
			text += string(e.Key.Rune)
		default:
			return false
		}
		n.SetTitle(text)
		return true
	case EventMousePress, EventMouseRelease:
		return true
	default:
		return false
	}
	n.MarkFor(RequirePaint)
	return true
}

func handleBackground(n *Node, e *Event) bool {
	d := n.desktop
	switch e.Type {
	case EventMousePress:
		d.selecting = true
		d.start = e.Position
		return true
	case EventMouseDrag:
		if !d.selecting {
			return false
		}
		d.selection = normalizedRect(d.start, e.Position)
	case EventMouseDragRelease:
		d.selecting = false
		d.selection = Rect{}
	default:
		return false
	}
	n.MarkFor(RequirePaint)
	return true
}

// normalizedRect spans the two corners regardless of drag direction.
func normalizedRect(a, b Point) Rect {
	left, right := min(a.X, b.X), max(a.X, b.X)
	top, bottom := min(a.Y, b.Y), max(a.Y, b.Y)
	return Rect{left, top, right - left, bottom - top}
}

// layoutType runs type specific layout after the layout manager.
func layoutType(n *Node) {
	if n.Type != TypeCheckbox || n.label == nil {
		return
	}
	pref := n.label.PreferredSize
	pref.Height = max(pref.Height, checkboxBoxSize+checkboxTextGap)
	pref.Width += pref.Height
	n.PreferredSize = pref
}

// updateType recomputes derived state such as preferred sizes from text.
func updateType(n *Node) {
	switch n.Type {
	case TypeLabel, TypeButton, TypeTextField:
		w, h := measureText(n.title.text)
		pref := Size{w + 2*textPadding, h + 2*textPadding}
		if pref == n.PreferredSize {
			return
		}
		n.PreferredSize = pref
		// A checkbox sizes itself from its label during layout.
		if n.parent != nil && n.parent.label == n {
			n.parent.MarkFor(RequireLayout)
		}
	}
}

// SetBackgroundImage sets the image centered on a background node. It
// returns false for other types.
func (n *Node) SetBackgroundImage(img image.Image) bool {
	if n.desktop == nil {
		return false
	}
	n.desktop.image = img
	n.MarkFor(RequirePaint)
	return true
}
