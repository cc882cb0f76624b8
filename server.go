package windowserver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

var (
	// ErrUnknownComponent is returned when an id is not registered.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrUnsupported is returned for requests or script steps the server
	// does not know how to carry out.
	ErrUnsupported = errors.New("unsupported")
)

// FrameSink receives composited frames. region is the part of frame that
// changed since the previous call. Present runs on the render thread and
// must not retain frame past the call.
type FrameSink interface {
	Present(frame *image.RGBA, region image.Rectangle)
}

type discardOutbox struct{}

func (discardOutbox) Respond(Response) {}
func (discardOutbox) Notify(Action)    {}

// Server owns the component tree, the cursor and the framebuffer. The tree
// is only touched from the goroutine that calls Tick (or Run); the Push and
// Submit methods are safe to call from anywhere.
type Server struct {
	cfg   Config
	log   *slog.Logger
	debug bool

	screen     *Node
	background *Node
	registry   *Registry
	cursor     *Cursor

	outbox Outbox
	sink   FrameSink

	mu            sync.Mutex
	requests      []Request
	pointers      []PointerSample
	keys          []KeyEvent
	injectQueue   []PointerSample
	pendingConfig *Config

	frameNeeded atomic.Bool
	wake        chan struct{}

	// Render thread only.
	ticking         bool
	damage          Rect
	framebuffer     *image.RGBA
	screenshotQueue []string
	script          *ScriptRunner
	frames          uint64
}

// NewServer creates a server with a screen and desktop background sized to
// cfg. A nil outbox discards responses; a nil sink skips presentation.
func NewServer(cfg Config, outbox Outbox, sink FrameSink) (*Server, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if outbox == nil {
		outbox = discardOutbox{}
	}

	s := &Server{
		cfg:         cfg,
		log:         cfg.Logger,
		registry:    NewRegistry(),
		outbox:      outbox,
		sink:        sink,
		wake:        make(chan struct{}, 1),
		framebuffer: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}
	s.SetDebugMode(cfg.Debug)

	full := Rect{Width: cfg.Width, Height: cfg.Height}
	s.screen = newNode("screen", TypeScreen)
	s.screen.host = treeHost{s}
	s.screen.SetBounds(full)

	s.background = newNode("background", TypeBackground)
	s.screen.AddChild(s.background)
	s.background.SetBounds(full)
	if cfg.Background != "" {
		img, err := gg.LoadImage(cfg.Background)
		if err != nil {
			return nil, fmt.Errorf("load background: %w", err)
		}
		s.background.SetBackgroundImage(img)
	}

	s.cursor = newCursor(s.screen, cfg.MultiClick)
	s.cursor.position = Point{cfg.Width / 2, cfg.Height / 2}
	s.Invalidate(full)
	return s, nil
}

// Config returns the active configuration.
func (s *Server) Config() Config { return s.cfg }

// Screen returns the root of the tree.
func (s *Server) Screen() *Node { return s.screen }

// Background returns the desktop node.
func (s *Server) Background() *Node { return s.background }

// Registry returns the id registry used by the IPC handlers.
func (s *Server) Registry() *Registry { return s.registry }

// Cursor returns the pointer state.
func (s *Server) Cursor() *Cursor { return s.cursor }

// Framebuffer returns the composited output. Only valid between ticks.
func (s *Server) Framebuffer() *image.RGBA { return s.framebuffer }

// Frames returns how many frames have been presented.
func (s *Server) Frames() uint64 { return s.frames }

// Component resolves a registered id.
func (s *Server) Component(id ComponentID) (*Node, error) {
	n := s.registry.Get(id)
	if n == nil {
		return nil, fmt.Errorf("component %d: %w", id, ErrUnknownComponent)
	}
	return n, nil
}

// SetDebugMode enables or disables debug mode. When enabled, invariant
// violations panic and per-frame stats are logged at debug level.
func (s *Server) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// --- Producers (any goroutine) ---

// PushPointer queues a raw pointer sample.
func (s *Server) PushPointer(p PointerSample) {
	s.mu.Lock()
	s.pointers = append(s.pointers, p)
	s.mu.Unlock()
	s.RequestFrame()
}

// PushKey queues a raw key sample.
func (s *Server) PushKey(k KeyEvent) {
	s.mu.Lock()
	s.keys = append(s.keys, k)
	s.mu.Unlock()
	s.RequestFrame()
}

// Submit queues a client request. Its response goes to the outbox during
// the next tick.
func (s *Server) Submit(req Request) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	s.log.Debug("request queued", req.logAttrs()...)
	s.RequestFrame()
}

// UpdateConfig replaces the runtime-adjustable settings (multi-click
// threshold, debug mode, default bounds, title maximum, software cursor)
// at the start of the next tick. Screen size and background are fixed.
func (s *Server) UpdateConfig(cfg Config) {
	s.mu.Lock()
	s.pendingConfig = &cfg
	s.mu.Unlock()
	s.RequestFrame()
}

// RequestFrame asks for a new tick. Calls before the next tick coalesce.
func (s *Server) RequestFrame() {
	s.frameNeeded.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// FrameNeeded reports whether a tick has been requested since the last one.
func (s *Server) FrameNeeded() bool {
	return s.frameNeeded.Load()
}

// --- Host (render thread) ---

// treeHost is the Host of the screen tree. While a tick runs, the tree's
// own frame requests are folded into the end-of-tick check instead of
// scheduling another tick.
type treeHost struct{ s *Server }

func (h treeHost) RequestFrame() {
	if !h.s.ticking {
		h.s.RequestFrame()
	}
}

func (h treeHost) Invalidate(r Rect) { h.s.Invalidate(r) }

func (h treeHost) FireAction(n *Node) {
	target, ok := n.ActionListener()
	if !ok {
		return
	}
	h.s.outbox.Notify(Action{Target: target, Component: n.ID})
}

// Invalidate adds r, in screen coordinates, to the damage of the next
// frame. Render thread only.
func (s *Server) Invalidate(r Rect) {
	r = r.Intersect(s.screen.bounds)
	if r.Empty() {
		return
	}
	s.damage = s.damage.Union(r)
	treeHost{s}.RequestFrame()
}

// --- Loop ---

// Run ticks whenever a frame is requested until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-s.wake:
		}
		s.Tick()
	}
}

// Tick runs one frame: drain queued requests and input, resolve layout,
// update and paint, then composite and present the damaged region. It
// returns false without doing anything if no frame was requested, and
// otherwise whether a frame was presented.
func (s *Server) Tick() bool {
	if !s.frameNeeded.Swap(false) {
		return false
	}
	s.ticking = true
	defer s.endTick()

	var stats frameStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	if s.script != nil {
		s.script.step(s)
	}

	s.mu.Lock()
	requests, pointers, keys := s.requests, s.pointers, s.keys
	s.requests, s.pointers, s.keys = nil, nil, nil
	// Injected samples are consumed one per tick so that handlers see the
	// same sequence of frames real input would produce.
	var injected []PointerSample
	if len(s.injectQueue) > 0 {
		injected = append(injected, s.injectQueue[0])
		s.injectQueue = s.injectQueue[1:]
	}
	moreInjected := len(s.injectQueue) > 0
	pending := s.pendingConfig
	s.pendingConfig = nil
	s.mu.Unlock()

	if moreInjected {
		s.RequestFrame()
	}

	if pending != nil {
		s.applyConfig(*pending)
	}
	for _, req := range requests {
		if resp, ok := s.handleRequest(req); ok {
			s.outbox.Respond(resp)
		}
	}
	// Keys first: a key typed before a click goes to the focus it was
	// typed into, not to the component the click focuses.
	for _, k := range keys {
		s.cursor.processKey(k)
	}
	for _, p := range append(pointers, injected...) {
		s.processPointer(p)
	}

	if s.debug {
		stats.drainTime = time.Since(t0)
		stats.requests = len(requests)
		stats.samples = len(pointers) + len(injected) + len(keys)
	}

	s.resolve(&stats)
	presented := s.composite(&stats)
	s.flushScreenshots()

	if s.debug {
		s.debugLog(stats)
	}
	return presented
}

// endTick schedules another tick if the tree still has work that this one
// could not finish, such as a layout raised by a paint handler.
func (s *Server) endTick() {
	s.ticking = false
	if s.screen.reqs.all() != RequireNone || !s.damage.Empty() {
		s.RequestFrame()
	}
}

func (s *Server) applyConfig(cfg Config) {
	s.cfg.MultiClick = cfg.MultiClick
	if s.cfg.MultiClick <= 0 {
		s.cfg.MultiClick = DefaultConfig().MultiClick
	}
	s.cursor.multiClick = s.cfg.MultiClick
	if !cfg.DefaultBounds.Empty() {
		s.cfg.DefaultBounds = cfg.DefaultBounds
	}
	if cfg.TitleMaximum > 0 {
		s.cfg.TitleMaximum = cfg.TitleMaximum
	}
	if s.cfg.Cursor != cfg.Cursor {
		s.cfg.Cursor = cfg.Cursor
		s.Invalidate(cursorArea(s.cursor.position))
	}
	s.SetDebugMode(cfg.Debug)
	s.log.Info("configuration reloaded", "multiclick", s.cfg.MultiClick, "debug", cfg.Debug)
}

func (s *Server) processPointer(p PointerSample) {
	if p.Time.IsZero() {
		p.Time = s.cfg.Clock()
	}
	old := s.cursor.position
	s.cursor.processPointer(p)
	if s.cfg.Cursor {
		s.Invalidate(cursorArea(old))
		s.Invalidate(cursorArea(s.cursor.position))
	}
}

func (s *Server) resolve(stats *frameStats) {
	passes := [...]struct {
		req Requirement
		dst *time.Duration
	}{
		{RequireLayout, &stats.layoutTime},
		{RequireUpdate, &stats.updateTime},
		{RequirePaint, &stats.paintTime},
	}
	for round := 0; round < maxResolveRounds && s.screen.reqs.all() != RequireNone; round++ {
		for _, p := range passes {
			var t0 time.Time
			if s.debug {
				t0 = time.Now()
			}
			s.screen.ResolveRequirement(p.req)
			if s.debug {
				*p.dst += time.Since(t0)
			}
		}
	}
}

// composite redraws the damaged region of the framebuffer back to front
// and hands it to the sink.
func (s *Server) composite(stats *frameStats) bool {
	region := s.damage.Intersect(s.screen.bounds)
	s.damage = Rect{}
	if region.Empty() {
		return false
	}

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
		stats.damage = region
	}

	clearRect(s.framebuffer, region)
	s.screen.Blit(s.framebuffer, region, s.screen.bounds.Pos())
	if s.cfg.Cursor {
		area := cursorArea(s.cursor.position).Intersect(region)
		if !area.Empty() {
			src := image.Point{area.X - s.cursor.position.X, area.Y - s.cursor.position.Y}
			draw.Draw(s.framebuffer, area.Image(), cursorImage(), src, draw.Over)
		}
	}

	if s.debug {
		stats.blitTime = time.Since(t0)
	}
	if s.sink != nil {
		s.sink.Present(s.framebuffer, region.Image())
	}
	s.frames++
	return true
}

// destroy tears down n's subtree, evicting registry entries and cursor
// references for every node in it.
func (s *Server) destroy(n *Node) {
	n.RemoveFromParent()
	n.destroy(func(d *Node) {
		if d.ID != 0 {
			s.registry.Remove(d.ID)
		}
		s.cursor.forget(d)
	})
}

// --- Tree snapshot ---

// TreeEntry is a read-only snapshot of one node.
type TreeEntry struct {
	ID         ComponentID
	Name       string
	Type       ComponentType
	Bounds     Rect
	Visible    bool
	Title      string
	HasTitle   bool
	Own        Requirement
	Descendant Requirement
	Children   []TreeEntry
}

// Tree snapshots the whole tree. It must not run concurrently with Tick.
func (s *Server) Tree() TreeEntry {
	return snapshot(s.screen)
}

func snapshot(n *Node) TreeEntry {
	e := TreeEntry{
		ID:      n.ID,
		Name:    n.Name,
		Type:    n.Type,
		Bounds:  n.bounds,
		Visible: n.visible,
	}
	e.Title, e.HasTitle = n.Title()
	e.Own, e.Descendant = n.Requirements()
	for _, c := range n.children {
		e.Children = append(e.Children, snapshot(c))
	}
	return e
}
