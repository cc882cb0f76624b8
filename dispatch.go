package windowserver

// Dispatch delivers e top-down starting at root. Positional events go into
// the front-most child containing the position, with the position translated
// into that child's space and restored if the child declines; non-positional
// events are offered to every child front to back. A node handles the event
// itself only after all of its children declined. Returns whether any node
// handled it.
func Dispatch(root *Node, e *Event) bool {
	if root == nil || !root.CanReceiveEvents() {
		return false
	}
	return deliver(root, e)
}

func deliver(n *Node, e *Event) bool {
	for i := len(n.children) - 1; i >= 0; i-- {
		// A handler may have reordered or removed siblings.
		if i >= len(n.children) {
			continue
		}
		c := n.children[i]
		if !c.visible {
			continue
		}
		if !e.Locatable() {
			if deliver(c, e) {
				return true
			}
			continue
		}
		if !c.bounds.Contains(e.Position) {
			continue
		}
		origin := c.bounds.Pos()
		e.Position = e.Position.Sub(origin)
		if deliver(c, e) {
			return true
		}
		e.Position = e.Position.Add(origin)
	}
	return n.handle(e)
}

// DispatchUpwards offers e to target and then to each ancestor in turn until
// one handles it. Positional events are translated into each node's local
// space. Nodes that cannot receive events are skipped. Returns the node that
// accepted the event, or nil if none did.
func DispatchUpwards(target *Node, e *Event) *Node {
	for n := target; n != nil; n = n.parent {
		if n.destroyed || !n.CanReceiveEvents() {
			continue
		}
		if e.Locatable() {
			e.Position = e.ScreenPosition.Sub(n.LocationOnScreen())
		}
		if n.handle(e) {
			return n
		}
	}
	return nil
}

// handle offers e to the node's callback and then to its type's behavior.
func (n *Node) handle(e *Event) bool {
	if n.OnEvent != nil && n.OnEvent(n, e) {
		return true
	}
	return handleType(n, e)
}
