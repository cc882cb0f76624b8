package windowserver

import "strings"

// Requirement is a pending obligation on a node. Requirements are resolved
// once per tick across the whole visible tree, always in the order
// RequireLayout, RequireUpdate, RequirePaint.
type Requirement uint8

const (
	RequireLayout Requirement = 1 << iota // reposition children
	RequireUpdate                         // recompute derived state (text metrics, preferred size)
	RequirePaint                          // redraw the node's own surface

	RequireNone Requirement = 0
	RequireAll              = RequireLayout | RequireUpdate | RequirePaint
)

// requirementOrder is the fixed resolution order of a tick.
var requirementOrder = [...]Requirement{RequireLayout, RequireUpdate, RequirePaint}

// Has reports whether every bit of o is set in r.
func (r Requirement) Has(o Requirement) bool {
	return o != 0 && r&o == o
}

func (r Requirement) String() string {
	if r == RequireNone {
		return "none"
	}
	var parts []string
	if r&RequireLayout != 0 {
		parts = append(parts, "layout")
	}
	if r&RequireUpdate != 0 {
		parts = append(parts, "update")
	}
	if r&RequirePaint != 0 {
		parts = append(parts, "paint")
	}
	return strings.Join(parts, "|")
}

// requirementState is the two-level requirement set of a node: what the node
// itself must do, and the union of what anything below it must do.
type requirementState struct {
	own        Requirement
	descendant Requirement
}

// pending reports whether req is outstanding anywhere in the subtree.
func (s requirementState) pending(req Requirement) bool {
	return (s.own|s.descendant)&req != 0
}

// all returns everything outstanding in the subtree.
func (s requirementState) all() Requirement {
	return s.own | s.descendant
}

// maxResolveRounds bounds how often a node re-enters its subtree when
// resolving a requirement re-raises it below.
const maxResolveRounds = 8

// MarkFor raises req on n and records it as a descendant requirement on every
// ancestor. If the tree is hosted, the host is asked for a new frame.
// Visibility is not consulted here; it is re-checked when resolving.
func (n *Node) MarkFor(req Requirement) {
	if req == RequireNone {
		return
	}
	n.reqs.own |= req
	top := n
	for p := n.parent; p != nil; p = p.parent {
		p.reqs.descendant |= req
		top = p
	}
	if top.host != nil {
		top.host.RequestFrame()
	}
}

// Requirements returns the node's own and descendant requirement sets.
func (n *Node) Requirements() (own, descendant Requirement) {
	return n.reqs.own, n.reqs.descendant
}

// ResolveRequirement settles a single requirement class in n's subtree.
// Visible children are resolved before the node itself so that geometry and
// content below are settled when the node runs. If resolving the node raises
// the same class again below it (a layout resizing children), the subtree is
// re-entered until nothing is left or maxResolveRounds is hit.
func (n *Node) ResolveRequirement(req Requirement) {
	for round := 0; n.reqs.pending(req); round++ {
		if round == maxResolveRounds {
			debugResolveStalled(n, req)
			return
		}
		if n.reqs.descendant&req != 0 {
			// Cleared up front so a bit raised on an already visited sibling
			// while the children run survives into the next round.
			n.reqs.descendant &^= req
			for i := 0; i < len(n.children); i++ {
				c := n.children[i]
				if c.visible {
					c.ResolveRequirement(req)
				}
			}
		}
		if n.reqs.own&req != 0 {
			n.reqs.own &^= req
			switch req {
			case RequireLayout:
				n.Layout()
			case RequireUpdate:
				n.Update()
			case RequirePaint:
				n.Paint()
				n.MarkDirty()
			}
		}
	}
}

// resolveAll runs the three passes over the tree rooted at n in order. An
// update or paint that raises layout again (a label growing inside a
// checkbox) gets another round, so the tree is settled on return.
func (n *Node) resolveAll() {
	for round := 0; round < maxResolveRounds && n.reqs.all() != RequireNone; round++ {
		for _, req := range requirementOrder {
			n.ResolveRequirement(req)
		}
	}
}
