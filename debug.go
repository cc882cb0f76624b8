package windowserver

import (
	"fmt"
	"log/slog"
	"time"
)

// globalDebug mirrors the most recently set Server debug flag so that node
// operations (which lack a Server pointer) can check it cheaply. Only valid
// with a single Server; multiple Servers with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// frameStats holds per-tick timing. Only populated when the server is in
// debug mode.
type frameStats struct {
	drainTime  time.Duration
	layoutTime time.Duration
	updateTime time.Duration
	paintTime  time.Duration
	blitTime   time.Duration
	requests   int
	samples    int
	damage     Rect
}

func (s *Server) debugLog(stats frameStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		"drain", stats.drainTime,
		"layout", stats.layoutTime,
		"update", stats.updateTime,
		"paint", stats.paintTime,
		"blit", stats.blitTime,
		"requests", stats.requests,
		"samples", stats.samples,
		"damage", stats.damage,
	)
}

// invariantViolation reports a broken tree invariant. In debug mode it
// panics; otherwise the caller skips the offending operation.
func invariantViolation(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if globalDebug {
		panic("windowserver: " + msg)
	}
	slog.Warn("tree invariant violated", "detail", msg)
}

// debugCheckDestroyed panics when a destroyed node is used in a tree
// operation. Callers only invoke it in debug mode.
func debugCheckDestroyed(n *Node, op string) {
	if n.destroyed {
		panic(fmt.Sprintf("windowserver: %s on destroyed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		slog.Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.Name)
	}
}

const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		slog.Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

// debugResolveStalled is called when a node still has pending requirements
// after maxResolveRounds. Handlers that keep re-raising a requirement on
// every resolution would otherwise spin forever.
func debugResolveStalled(n *Node, req Requirement) {
	own, desc := n.Requirements()
	invariantViolation("requirement %s on %q did not settle after %d rounds (own=%s descendant=%s)",
		req, n.Name, maxResolveRounds, own, desc)
}
