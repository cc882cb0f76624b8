package windowserver

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingHost is a Host that remembers what the tree asked of it.
type recordingHost struct {
	frames  int
	dirty   []Rect
	actions []*Node
}

func (h *recordingHost) RequestFrame()      { h.frames++ }
func (h *recordingHost) Invalidate(r Rect)  { h.dirty = append(h.dirty, r) }
func (h *recordingHost) FireAction(n *Node) { h.actions = append(h.actions, n) }

func (h *recordingHost) reset() {
	h.frames = 0
	h.dirty = nil
	h.actions = nil
}

// hostedRoot returns a panel root bound to a recording host.
func hostedRoot(w, h int) (*Node, *recordingHost) {
	host := &recordingHost{}
	root := NewPanel("root")
	root.host = host
	root.SetBounds(Rect{0, 0, w, h})
	return root, host
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingSink keeps every presented region.
type recordingSink struct {
	regions []image.Rectangle
}

func (s *recordingSink) Present(_ *image.RGBA, region image.Rectangle) {
	s.regions = append(s.regions, region)
}

type testServer struct {
	*Server
	clock *testClock
	out   *QueueOutbox
	sink  *recordingSink
}

// newTestServer returns a 640x480 server with a manual clock and no
// software cursor, settled by one tick.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clock := newTestClock()
	out := &QueueOutbox{}
	sink := &recordingSink{}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 640, 480
	cfg.Cursor = false
	cfg.MultiClick = 300 * time.Millisecond
	cfg.ScreenshotDir = t.TempDir()
	cfg.Clock = clock.Now
	s, err := NewServer(cfg, out, sink)
	require.NoError(t, err)
	s.Tick()
	sink.regions = nil
	t.Cleanup(func() { s.SetDebugMode(false) })
	return &testServer{Server: s, clock: clock, out: out, sink: sink}
}

// create submits a CREATE request, ticks, and returns the new node.
func (ts *testServer) create(t *testing.T, typ ComponentType, bounds Rect) *Node {
	t.Helper()
	ts.Submit(Request{Kind: CommandCreateComponent, Type: typ})
	ts.Tick()
	resps, _ := ts.out.Drain()
	require.Len(t, resps, 1)
	require.Equal(t, StatusSuccess, resps[0].Status)
	n := ts.registry.Get(resps[0].ID)
	require.NotNil(t, n)
	n.SetBounds(bounds)
	ts.Tick()
	return n
}

// pointer pushes one sample at (x, y) and ticks.
func (ts *testServer) pointer(x, y int, buttons MouseButton) {
	ts.PushPointer(PointerSample{Position: Point{x, y}, Buttons: buttons})
	ts.Tick()
}

// eventLog records the event types a node's OnEvent sees.
type eventLog struct {
	types []EventType
	pos   []Point
}

func (l *eventLog) hook(accept bool) func(*Node, *Event) bool {
	return func(_ *Node, e *Event) bool {
		l.types = append(l.types, e.Type)
		l.pos = append(l.pos, e.Position)
		return accept
	}
}

func (l *eventLog) count(typ EventType) int {
	n := 0
	for _, t := range l.types {
		if t == typ {
			n++
		}
	}
	return n
}
