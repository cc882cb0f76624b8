package windowserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sample(x, y int, buttons MouseButton, at time.Duration) PointerSample {
	return PointerSample{Position: Point{x, y}, Buttons: buttons, Time: t0.Add(at)}
}

// cursorTree builds screen(0,0,200,200) > [a(0,0,50,50), b(100,100,50,50)].
func cursorTree() (screen, a, b *Node) {
	screen = NewPanel("screen")
	screen.SetBounds(Rect{0, 0, 200, 200})
	a = NewPanel("a")
	b = NewPanel("b")
	screen.AddChild(a)
	screen.AddChild(b)
	a.SetBounds(Rect{0, 0, 50, 50})
	b.SetBounds(Rect{100, 100, 50, 50})
	return
}

func TestMultiClickCount(t *testing.T) {
	tests := []struct {
		name  string
		times []time.Duration
		want  []int
	}{
		{"reset after slow press", []time.Duration{0, 50 * time.Millisecond, 700 * time.Millisecond}, []int{1, 2, 1}},
		{"triple click", []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}, []int{1, 2, 3}},
		{"threshold is exclusive", []time.Duration{0, 300 * time.Millisecond}, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen, _, _ := cursorTree()
			var counts []int
			screen.OnEvent = func(_ *Node, e *Event) bool {
				if e.Type == EventMousePress {
					counts = append(counts, e.ClickCount)
				}
				return false
			}
			c := newCursor(screen, 300*time.Millisecond)
			for _, at := range tt.times {
				c.processPointer(sample(180, 180, MouseButtonLeft, at))
				c.processPointer(sample(180, 180, 0, at+time.Millisecond))
			}
			assert.Equal(t, tt.want, counts)
			assert.Equal(t, tt.want[len(tt.want)-1], c.ClickCount())
		})
	}
}

func TestDragCapture(t *testing.T) {
	screen, a, b := cursorTree()
	var la, lb eventLog
	a.OnEvent = la.hook(false)
	b.OnEvent = lb.hook(false)
	c := newCursor(screen, time.Second)

	c.processPointer(sample(10, 10, MouseButtonLeft, 0))
	require.Same(t, a, c.Dragged())
	assert.Equal(t, CursorPressed, c.State())

	c.processPointer(sample(120, 120, MouseButtonLeft, 10))
	c.processPointer(sample(130, 130, MouseButtonLeft, 20))
	assert.Equal(t, 2, la.count(EventMouseDrag), "drag goes to the captured node")
	assert.Empty(t, lb.types, "node under the pointer sees nothing during capture")
	assert.Equal(t, Point{130, 130}, la.pos[len(la.pos)-1], "positions stay local to the captured node")

	c.processPointer(sample(130, 130, 0, 30))
	assert.Equal(t, 1, la.count(EventMouseDragRelease))
	assert.Nil(t, c.Dragged())
	assert.Equal(t, 1, lb.count(EventMouseRelease), "release is dispatched top-down")

	c.processPointer(sample(135, 135, 0, 40))
	assert.Equal(t, 1, lb.count(EventMouseEnter), "hover resumes after release")
	assert.Same(t, b, c.Hovered())
	assert.Equal(t, 1, la.count(EventMouseDragRelease))
}

func TestButtonSwapKeepsCapture(t *testing.T) {
	screen, a, b := cursorTree()
	var la, lb eventLog
	a.OnEvent = la.hook(false)
	b.OnEvent = lb.hook(false)
	c := newCursor(screen, time.Second)

	c.processPointer(sample(10, 10, MouseButtonLeft, 0))
	// Left goes up and right goes down in the same sample.
	c.processPointer(sample(10, 10, MouseButtonRight, 10))
	require.Same(t, a, c.Dragged())
	assert.Equal(t, MouseButtonRight, c.Buttons())
	assert.Zero(t, la.count(EventMouseDragRelease))

	c.processPointer(sample(120, 120, MouseButtonRight, 20))
	assert.Equal(t, 1, la.count(EventMouseDrag))
	assert.Empty(t, lb.types)

	c.processPointer(sample(120, 120, 0, 30))
	assert.Equal(t, 1, la.count(EventMouseDragRelease))
	assert.Nil(t, c.Dragged())
}

func TestPressOnScreenDoesNotCapture(t *testing.T) {
	screen, _, _ := cursorTree()
	c := newCursor(screen, time.Second)
	c.processPointer(sample(180, 10, MouseButtonLeft, 0))
	assert.Nil(t, c.Dragged())
}

func TestHoverEnterLeave(t *testing.T) {
	screen, a, b := cursorTree()
	var la, lb, ls eventLog
	a.OnEvent = la.hook(false)
	b.OnEvent = lb.hook(false)
	screen.OnEvent = ls.hook(false)
	c := newCursor(screen, time.Second)

	c.processPointer(sample(10, 10, 0, 0))
	assert.Same(t, a, c.Hovered())
	assert.Equal(t, CursorHovering, c.State())
	assert.Equal(t, []EventType{EventMouseEnter, EventMouseMove}, la.types)

	c.processPointer(sample(20, 20, 0, 1))
	assert.Equal(t, 1, la.count(EventMouseEnter), "no enter while staying on a")

	c.processPointer(sample(110, 110, 0, 2))
	assert.Same(t, b, c.Hovered())
	assert.Equal(t, 1, la.count(EventMouseLeave))
	assert.Equal(t, 1, lb.count(EventMouseEnter))

	// Same position: nothing happens.
	n := len(lb.types)
	c.processPointer(sample(110, 110, 0, 3))
	assert.Len(t, lb.types, n)
	assert.Equal(t, Point{110, 110}, c.Position())
	assert.Equal(t, Point{110, 110}, c.Previous())
}

func TestFocusTransfer(t *testing.T) {
	screen := NewPanel("screen")
	screen.SetBounds(Rect{0, 0, 300, 300})
	w1 := NewComponent("w1", TypeWindow)
	w2 := NewComponent("w2", TypeWindow)
	screen.AddChild(w1)
	screen.AddChild(w2)
	w1.SetBounds(Rect{0, 0, 100, 100})
	w2.SetBounds(Rect{50, 50, 100, 100})
	btn := NewComponent("btn", TypeButton)
	w1.AddChild(btn)
	btn.SetBounds(Rect{10, 30, 40, 20})
	c := newCursor(screen, time.Second)

	// Pressing a button focuses its window and raises it.
	c.processPointer(sample(20, 40, MouseButtonLeft, 0))
	c.processPointer(sample(20, 40, 0, 1))
	assert.Same(t, w1, c.Focused())
	assert.True(t, w1.Focused())
	assert.Same(t, w1, screen.ChildAt(1), "w1 raised to front")

	c.processPointer(sample(140, 140, MouseButtonLeft, 2))
	c.processPointer(sample(140, 140, 0, 3))
	assert.Same(t, w2, c.Focused())
	assert.False(t, w1.Focused(), "old focus lost")
	assert.True(t, w2.Focused())
	assert.Same(t, w2, screen.ChildAt(1))

	// Nobody accepts focus on the bare screen: the hit target keeps it.
	c.processPointer(sample(250, 250, MouseButtonLeft, 4))
	assert.Same(t, screen, c.Focused())
	assert.False(t, w2.Focused())
}

func TestKeysGoToFocusOnly(t *testing.T) {
	screen := NewPanel("screen")
	screen.SetBounds(Rect{0, 0, 200, 200})
	field := NewComponent("field", TypeTextField)
	other := NewComponent("other", TypeTextField)
	screen.AddChild(field)
	screen.AddChild(other)
	field.SetBounds(Rect{0, 0, 100, 20})
	other.SetBounds(Rect{0, 50, 100, 20})
	c := newCursor(screen, time.Second)

	assert.False(t, c.processKey(KeyEvent{Rune: 'x', Down: true}), "dropped without focus")

	c.processPointer(sample(5, 5, MouseButtonLeft, 0))
	c.processPointer(sample(5, 5, 0, 1))
	require.Same(t, field, c.Focused())

	for _, r := range "hi!" {
		c.processKey(KeyEvent{Rune: r, Down: true})
		c.processKey(KeyEvent{Rune: r})
	}
	c.processKey(KeyEvent{Key: KeyBackspace, Down: true})

	title, _ := field.Title()
	assert.Equal(t, "hi", title)
	title, _ = other.Title()
	assert.Empty(t, title)

	field.SetVisible(false)
	assert.False(t, c.processKey(KeyEvent{Rune: 'z', Down: true}), "hidden focus drops keys")
}

func TestCursorForget(t *testing.T) {
	screen, a, _ := cursorTree()
	c := newCursor(screen, time.Second)
	c.processPointer(sample(10, 10, 0, 0))
	c.processPointer(sample(10, 10, MouseButtonLeft, 1))
	require.Same(t, a, c.Hovered())
	require.Same(t, a, c.Dragged())
	require.Same(t, a, c.Focused())

	c.forget(a)
	assert.Nil(t, c.Hovered())
	assert.Nil(t, c.Dragged())
	assert.Nil(t, c.Focused())
}
