package windowserver

import (
	"image"
)

// ComponentID is the opaque handle clients use to address a node. Zero means
// "not registered".
type ComponentID uint32

// ProcessID identifies a client process on the other side of the IPC boundary.
type ProcessID uint32

// Host is the invalidation context of a tree. Only a root node carries one;
// nodes reach it by walking up their parent chain, so an unattached subtree
// raises requirements and dirty regions without waking anybody.
type Host interface {
	// RequestFrame signals that a new tick is needed. Multiple calls before
	// the next tick coalesce.
	RequestFrame()
	// Invalidate registers a region, in root coordinates, for the next
	// compositor pass.
	Invalidate(r Rect)
	// FireAction delivers an action of n to its registered listener.
	FireAction(n *Node)
}

// Node is the fundamental scene graph element. A single flat struct is used
// for every component type; type specific state lives in optional payloads
// that double as capability markers (a nil payload means the capability is
// absent).
type Node struct {
	// Identity
	ID   ComponentID
	Name string
	Type ComponentType

	// Hierarchy. parent is a lookup-only back reference; children are owned.
	parent   *Node
	children []*Node

	// Geometry, relative to the parent's origin.
	bounds        Rect
	PreferredSize Size
	MinimumSize   Size
	MaximumSize   Size

	visible bool
	reqs    requirementState

	// surface holds the node's own pixels, sized to bounds. Only the node's
	// paint and resize logic write it; the compositor reads it.
	surface *image.RGBA

	layout LayoutManager

	// Capability payloads
	title   *titleState
	action  *actionState
	press   *pressState
	focus   *focusState
	check   *checkState
	drag    *windowDragState
	desktop *desktopState

	// label is the internal text child of a checkbox.
	label *Node

	// OnEvent, when set, is offered every event before the type's own
	// handling. Returning true marks the event as handled.
	OnEvent func(n *Node, e *Event) bool

	// OnBoundsChanged runs after the type's own bounds-changed handling.
	OnBoundsChanged func(n *Node, old Rect)

	host      Host
	destroyed bool
}

// newNode creates a visible node of the given type with its capability
// payloads attached. Bounds stay zero until SetBounds is called.
func newNode(name string, typ ComponentType) *Node {
	n := &Node{Name: name, Type: typ, visible: true}
	attachCapabilities(n)
	return n
}

// NewComponent creates an unattached node of the given type.
func NewComponent(name string, typ ComponentType) *Node {
	return newNode(name, typ)
}

// NewPanel creates a plain container with no visuals of its own.
func NewPanel(name string) *Node {
	return newNode(name, TypePanel)
}

// --- Accessors ---

// Parent returns the node's parent, or nil for a root or unattached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child list in z-order (back to front). The returned
// slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Bounds returns the node's bounds in parent coordinates.
func (n *Node) Bounds() Rect {
	return n.bounds
}

// LocalBounds returns the node's bounds at its own origin.
func (n *Node) LocalBounds() Rect {
	return Rect{0, 0, n.bounds.Width, n.bounds.Height}
}

// Visible reports the node's own visibility flag. Visibility is not
// inherited; see CanReceiveEvents.
func (n *Node) Visible() bool {
	return n.visible
}

// Surface returns the node's offscreen buffer, or nil when it has no area.
func (n *Node) Surface() *image.RGBA {
	return n.surface
}

// IsDestroyed reports whether the node has been torn down.
func (n *Node) IsDestroyed() bool {
	return n.destroyed
}

// Root returns the topmost ancestor of n (n itself when unattached).
func (n *Node) Root() *Node {
	top := n
	for p := n.parent; p != nil; p = p.parent {
		top = p
	}
	return top
}

// hostOf returns the host of n's tree, or nil.
func (n *Node) hostOf() Host {
	return n.Root().host
}

// --- Geometry ---

// SetBounds moves and/or resizes the node. Both the old and the new area are
// invalidated. A size change reallocates the surface and raises layout and
// update; a pure move does neither.
func (n *Node) SetBounds(b Rect) {
	b.Width = max(b.Width, 0)
	b.Height = max(b.Height, 0)
	old := n.bounds

	n.MarkDirty()
	n.bounds = b
	n.MarkDirty()

	if old.Width != b.Width || old.Height != b.Height {
		n.resizeSurface()
		n.MarkFor(RequireLayout)
		n.MarkFor(RequireUpdate)
	}

	n.boundsChanged(old)
}

func (n *Node) resizeSurface() {
	if n.bounds.Empty() {
		n.surface = nil
		return
	}
	n.surface = image.NewRGBA(image.Rect(0, 0, n.bounds.Width, n.bounds.Height))
}

// boundsChanged lets types reposition internal children.
func (n *Node) boundsChanged(old Rect) {
	if n.Type == TypeCheckbox && n.label != nil {
		inner := n.bounds
		inner.X = checkboxBoxSize + checkboxTextGap
		inner.Y = 0
		n.label.SetBounds(inner)
	}
	if n.OnBoundsChanged != nil {
		n.OnBoundsChanged(n, old)
	}
}

// SetVisible shows or hides the node. The covered area is invalidated and
// every requirement is raised so the node is settled once it shows again.
func (n *Node) SetVisible(visible bool) {
	n.visible = visible
	n.MarkDirty()
	n.MarkFor(RequireAll)
}

// LocationOnScreen returns the node's origin in root coordinates.
func (n *Node) LocationOnScreen() Point {
	loc := n.bounds.Pos()
	for p := n.parent; p != nil; p = p.parent {
		loc = loc.Add(p.bounds.Pos())
	}
	return loc
}

// MarkDirty invalidates the node's whole area.
func (n *Node) MarkDirty() {
	n.MarkDirtyRect(n.LocalBounds())
}

// MarkDirtyRect invalidates r, given in n's local coordinates. The region is
// translated upward until it reaches the root, which hands it to the host.
func (n *Node) MarkDirtyRect(r Rect) {
	if r.Empty() {
		return
	}
	cur := n
	for {
		r = r.Translate(cur.bounds.Pos())
		if cur.parent == nil {
			break
		}
		cur = cur.parent
	}
	if cur.host != nil {
		cur.host.Invalidate(r)
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children, on top of its siblings.
// If child already has a parent, it is removed from that parent first.
// Whatever child still has pending is recorded on the new ancestors.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("windowserver: cannot add nil child")
	}
	if globalDebug {
		debugCheckDestroyed(n, "AddChild (parent)")
		debugCheckDestroyed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		invariantViolation("adding child %q to %q would create a cycle", child.Name, n.Name)
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)

	if pending := child.reqs.all(); pending != RequireNone {
		for p := n; p != nil; p = p.parent {
			p.reqs.descendant |= pending
		}
	}
	n.MarkFor(RequireLayout)
	child.MarkDirty()

	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node. The area it covered is
// invalidated. Removing a node that is not a child is a no-op.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n {
		if child != nil && globalDebug {
			invariantViolation("%q is not a child of %q", child.Name, n.Name)
		}
		return
	}
	n.MarkDirtyRect(child.bounds)
	n.removeChildByPtr(child)
	child.parent = nil
	n.MarkFor(RequireLayout)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	n.parent.RemoveChild(n)
}

// BringChildToFront moves child to the end of the child list, giving it the
// top paint and hit-test priority.
func (n *Node) BringChildToFront(child *Node) {
	for i, c := range n.children {
		if c != child {
			continue
		}
		if i == len(n.children)-1 {
			return
		}
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = child
		n.MarkDirtyRect(child.bounds)
		return
	}
}

// BringToFront raises this node above its siblings.
func (n *Node) BringToFront() {
	if n.parent != nil {
		n.parent.BringChildToFront(n)
	}
}

// Window returns the nearest window containing n (n itself if it is one).
func (n *Node) Window() *Node {
	for c := n; c != nil; c = c.parent {
		if c.Type == TypeWindow {
			return c
		}
	}
	return nil
}

// --- Hit testing ---

// NodeAt returns the deepest visible node under p, given in n's local
// coordinates. Children are scanned front to back; if none contains p the
// node itself is returned. An invisible node returns nil, which makes its
// whole subtree unreachable.
func (n *Node) NodeAt(p Point) *Node {
	if !n.visible {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if c.visible && c.bounds.Contains(p) {
			return c.NodeAt(p.Sub(c.bounds.Pos()))
		}
	}
	return n
}

// CanReceiveEvents reports whether n and all of its ancestors are visible.
func (n *Node) CanReceiveEvents() bool {
	for c := n; c != nil; c = c.parent {
		if !c.visible {
			return false
		}
	}
	return true
}

// --- Layout, update and paint ---

// SetLayoutManager binds lm to this node and raises layout.
func (n *Node) SetLayoutManager(lm LayoutManager) {
	n.layout = lm
	n.MarkFor(RequireLayout)
}

// LayoutManager returns the node's layout strategy, or nil.
func (n *Node) LayoutManager() LayoutManager {
	return n.layout
}

// Layout positions the node's children with its layout manager, if any, and
// raises update on the node.
func (n *Node) Layout() {
	if n.layout != nil {
		n.layout.Layout(n)
	}
	layoutType(n)
	n.MarkFor(RequireUpdate)
}

// Update recomputes derived state and raises paint.
func (n *Node) Update() {
	updateType(n)
	n.MarkFor(RequirePaint)
}

// Paint redraws the node's own surface. Containers without visuals leave it
// transparent. Children's surfaces are never touched.
func (n *Node) Paint() {
	if n.surface == nil {
		return
	}
	paintType(n)
}

// --- Destruction ---

// destroy marks n and its subtree as destroyed and calls visit for every
// node of the subtree (parents before children). The caller detaches n from
// its parent beforehand.
func (n *Node) destroy(visit func(*Node)) {
	if n.destroyed {
		return
	}
	if visit != nil {
		visit(n)
	}
	n.destroyed = true
	for _, c := range n.children {
		c.parent = nil
		c.destroy(visit)
	}
	n.children = nil
	n.parent = nil
	n.surface = nil
	n.layout = nil
	n.label = nil
	n.OnEvent = nil
	n.OnBoundsChanged = nil
	n.host = nil
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing its parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
