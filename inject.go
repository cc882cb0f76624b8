package windowserver

// Injected input goes through the same cursor state machine as real
// samples, one sample per tick. Coordinates are screen coordinates, which
// is what a screenshot of the framebuffer shows.

func (s *Server) inject(p PointerSample) {
	s.mu.Lock()
	s.injectQueue = append(s.injectQueue, p)
	s.mu.Unlock()
	s.RequestFrame()
}

// InjectPress queues a left-button press at (x, y).
func (s *Server) InjectPress(x, y int) {
	s.inject(PointerSample{Position: Point{x, y}, Buttons: MouseButtonLeft})
}

// InjectMove queues a move to (x, y) with the left button held. Use it
// between InjectPress and InjectRelease to simulate a drag.
func (s *Server) InjectMove(x, y int) {
	s.inject(PointerSample{Position: Point{x, y}, Buttons: MouseButtonLeft})
}

// InjectHover queues a move to (x, y) with no button held.
func (s *Server) InjectHover(x, y int) {
	s.inject(PointerSample{Position: Point{x, y}})
}

// InjectRelease queues a release of all buttons at (x, y).
func (s *Server) InjectRelease(x, y int) {
	s.inject(PointerSample{Position: Point{x, y}})
}

// InjectClick queues a press followed by a release at the same position.
// Consumes two ticks.
func (s *Server) InjectClick(x, y int) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate ticks, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (s *Server) InjectDrag(fromX, fromY, toX, toY, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		x := fromX + (toX-fromX)*i/(steps+1)
		y := fromY + (toY-fromY)*i/(steps+1)
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// InjectKey queues a key press (and matching release) for the focused
// component. Printable text is delivered through r; use KeyNone with it.
func (s *Server) InjectKey(key Key, r rune, mods KeyModifiers) {
	s.PushKey(KeyEvent{Key: key, Rune: r, Down: true, Modifiers: mods})
	s.PushKey(KeyEvent{Key: key, Rune: r, Down: false, Modifiers: mods})
}

// InjectText queues one key press per rune of text.
func (s *Server) InjectText(text string) {
	for _, r := range text {
		s.InjectKey(KeyNone, r, 0)
	}
}

// pendingInjections reports how many injected samples are still queued.
func (s *Server) pendingInjections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.injectQueue)
}
