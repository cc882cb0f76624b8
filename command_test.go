package windowserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// roundTrip submits req, ticks, and returns the only response.
func (ts *testServer) roundTrip(t *testing.T, req Request) Response {
	t.Helper()
	ts.Submit(req)
	ts.Tick()
	resps, _ := ts.out.Drain()
	require.Len(t, resps, 1)
	return resps[0]
}

func TestCreateComponent(t *testing.T) {
	tests := []struct {
		typ      ComponentType
		status   Status
		attached bool
	}{
		{TypeWindow, StatusSuccess, true},
		{TypeLabel, StatusSuccess, false},
		{TypeButton, StatusSuccess, false},
		{TypeTextField, StatusSuccess, false},
		{TypeCheckbox, StatusSuccess, false},
		{TypePanel, StatusSuccess, false},
		{TypeScreen, StatusFail, false},
		{TypeBackground, StatusFail, false},
		{ComponentType(200), StatusFail, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.roundTrip(t, Request{Sender: 7, Transaction: 3, Kind: CommandCreateComponent, Type: tt.typ})

			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, ProcessID(7), resp.Target)
			assert.Equal(t, uint32(3), resp.Transaction)
			assert.Equal(t, CommandCreateComponent, resp.Kind)
			if tt.status == StatusFail {
				assert.Zero(t, resp.ID)
				assert.Equal(t, 0, ts.registry.Len(), "no registry entry on failure")
				return
			}
			n := ts.registry.Get(resp.ID)
			require.NotNil(t, n)
			assert.Equal(t, tt.typ, n.Type)
			assert.Equal(t, ts.cfg.DefaultBounds, n.Bounds())
			if tt.attached {
				assert.Same(t, ts.Screen(), n.Parent())
			} else {
				assert.Nil(t, n.Parent())
			}
		})
	}
}

func TestAddComponent(t *testing.T) {
	ts := newTestServer(t)
	win := ts.create(t, TypeWindow, Rect{0, 0, 200, 200})
	label := ts.create(t, TypeLabel, Rect{5, 30, 50, 20})

	resp := ts.roundTrip(t, Request{Kind: CommandAddComponent, Parent: win.ID, Child: 999})
	assert.Equal(t, StatusFail, resp.Status)
	assert.Equal(t, 0, win.NumChildren(), "parent unchanged on unknown child")

	resp = ts.roundTrip(t, Request{Kind: CommandAddComponent, Parent: 999, Child: label.ID})
	assert.Equal(t, StatusFail, resp.Status)
	assert.Nil(t, label.Parent())

	resp = ts.roundTrip(t, Request{Kind: CommandAddComponent, Parent: win.ID, Child: label.ID})
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Same(t, win, label.Parent())

	resp = ts.roundTrip(t, Request{Kind: CommandAddComponent, Parent: label.ID, Child: win.ID})
	assert.Equal(t, StatusFail, resp.Status, "cycles are refused")
	assert.Same(t, ts.Screen(), win.Parent())
}

func TestSetBoundsAndVisible(t *testing.T) {
	ts := newTestServer(t)
	win := ts.create(t, TypeWindow, Rect{0, 0, 10, 10})

	resp := ts.roundTrip(t, Request{Kind: CommandSetBounds, ID: win.ID, Bounds: Rect{5, 6, 70, 80}})
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, Rect{5, 6, 70, 80}, win.Bounds())

	resp = ts.roundTrip(t, Request{Kind: CommandSetBounds, ID: 999, Bounds: Rect{1, 1, 1, 1}})
	assert.Equal(t, StatusFail, resp.Status)

	resp = ts.roundTrip(t, Request{Kind: CommandSetVisible, ID: win.ID, Visible: false})
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.False(t, win.Visible())

	resp = ts.roundTrip(t, Request{Kind: CommandSetVisible, ID: 999, Visible: true})
	assert.Equal(t, StatusFail, resp.Status)
}

func TestSetActionListener(t *testing.T) {
	ts := newTestServer(t)
	btn := ts.create(t, TypeButton, Rect{0, 0, 10, 10})
	lbl := ts.create(t, TypeLabel, Rect{0, 0, 10, 10})

	tests := []struct {
		name string
		id   ComponentID
		want Status
	}{
		{"action source", btn.ID, StatusSuccess},
		{"lacks capability", lbl.ID, StatusFail},
		{"unknown id", 999, StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.roundTrip(t, Request{Kind: CommandSetActionListener, ID: tt.id, Target: 42})
			assert.Equal(t, tt.want, resp.Status)
		})
	}
	target, ok := btn.ActionListener()
	assert.True(t, ok)
	assert.Equal(t, ProcessID(42), target)
}

func TestTitles(t *testing.T) {
	ts := newTestServer(t)
	win := ts.create(t, TypeWindow, Rect{0, 0, 100, 100})
	panel := ts.create(t, TypePanel, Rect{0, 0, 10, 10})
	box := ts.create(t, TypeCheckbox, Rect{0, 0, 100, 20})

	resp := ts.roundTrip(t, Request{Kind: CommandSetTitle, ID: win.ID, Title: "Editor"})
	assert.Equal(t, StatusSuccess, resp.Status)
	resp = ts.roundTrip(t, Request{Kind: CommandGetTitle, ID: win.ID})
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "Editor", resp.Title)

	resp = ts.roundTrip(t, Request{Kind: CommandSetTitle, ID: panel.ID, Title: "x"})
	assert.Equal(t, StatusFail, resp.Status, "panels have no title")
	resp = ts.roundTrip(t, Request{Kind: CommandGetTitle, ID: panel.ID})
	assert.Equal(t, StatusFail, resp.Status)
	resp = ts.roundTrip(t, Request{Kind: CommandGetTitle, ID: 999})
	assert.Equal(t, StatusFail, resp.Status)

	resp = ts.roundTrip(t, Request{Kind: CommandSetTitle, ID: box.ID, Title: "Remember me"})
	assert.Equal(t, StatusSuccess, resp.Status)
	resp = ts.roundTrip(t, Request{Kind: CommandGetTitle, ID: box.ID})
	assert.Equal(t, "Remember me", resp.Title, "checkbox title lives on its label")
}

func TestGetTitleTruncates(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.TitleMaximum = 4
	lbl := ts.create(t, TypeLabel, Rect{0, 0, 10, 10})
	lbl.SetTitle("héllo")

	resp := ts.roundTrip(t, Request{Kind: CommandGetTitle, ID: lbl.ID})
	assert.Equal(t, "hél", resp.Title)
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "h"},
		{"日本語", 4, "日"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateTitle(tt.in, tt.limit), "truncateTitle(%q, %d)", tt.in, tt.limit)
	}
}

func TestDestroyComponent(t *testing.T) {
	ts := newTestServer(t)
	win := ts.create(t, TypeWindow, Rect{0, 0, 200, 200})
	btn := ts.create(t, TypeButton, Rect{10, 30, 50, 20})
	ts.roundTrip(t, Request{Kind: CommandAddComponent, Parent: win.ID, Child: btn.ID})

	ts.pointer(20, 40, 0)
	ts.pointer(20, 40, MouseButtonLeft)
	require.Same(t, btn, ts.Cursor().Dragged())

	resp := ts.roundTrip(t, Request{Kind: CommandDestroyComponent, ID: win.ID})
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Nil(t, ts.registry.Get(win.ID))
	assert.Nil(t, ts.registry.Get(btn.ID), "subtree evicted")
	assert.True(t, btn.IsDestroyed())
	assert.Nil(t, ts.Cursor().Dragged())
	assert.Nil(t, ts.Cursor().Hovered())
	assert.Nil(t, ts.Cursor().Focused())
	assert.NotContains(t, ts.Screen().Children(), win)

	resp = ts.roundTrip(t, Request{Kind: CommandDestroyComponent, ID: win.ID})
	assert.Equal(t, StatusFail, resp.Status)

	// The release after teardown must not reach the destroyed button.
	assert.NotPanics(t, func() { ts.pointer(20, 40, 0) })
}

func TestUnknownCommandGetsNoResponse(t *testing.T) {
	ts := newTestServer(t)
	ts.Submit(Request{Kind: CommandKind(99)})
	ts.Submit(Request{Kind: CommandUnknown})
	ts.Tick()
	resps, _ := ts.out.Drain()
	assert.Empty(t, resps)
}

func TestRequestsDrainOldestFirst(t *testing.T) {
	ts := newTestServer(t)
	for i := uint32(1); i <= 5; i++ {
		ts.Submit(Request{Transaction: i, Kind: CommandCreateComponent, Type: TypeLabel})
	}
	ts.Tick()
	resps, _ := ts.out.Drain()
	require.Len(t, resps, 5)
	for i, r := range resps {
		assert.Equal(t, uint32(i+1), r.Transaction)
		assert.Equal(t, ComponentID(i+1), r.ID)
	}
}

func TestRequestYAML(t *testing.T) {
	src := `
kind: set-bounds
id: 3
bounds: {x: 1, y: 2, width: 30, height: 40}
`
	var req Request
	require.NoError(t, yaml.Unmarshal([]byte(src), &req))
	assert.Equal(t, CommandSetBounds, req.Kind)
	assert.Equal(t, ComponentID(3), req.ID)
	assert.Equal(t, Rect{1, 2, 30, 40}, req.Bounds)

	require.NoError(t, yaml.Unmarshal([]byte("kind: create\ntype: Button\n"), &req))
	assert.Equal(t, CommandCreateComponent, req.Kind)
	assert.Equal(t, TypeButton, req.Type)

	require.NoError(t, yaml.Unmarshal([]byte("kind: explode\ntype: rocket\n"), &req))
	assert.Equal(t, CommandUnknown, req.Kind)
	assert.False(t, clientCreatable(req.Type))

	out, err := yaml.Marshal(Request{Kind: CommandGetTitle, Type: TypeLabel, ID: 9})
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: get-title")
	assert.Contains(t, string(out), "type: label")
}

func TestQueueOutbox(t *testing.T) {
	var q QueueOutbox
	q.Respond(Response{Transaction: 1})
	q.Notify(Action{Target: 2, Component: 3})
	q.Respond(Response{Transaction: 2})

	resps, actions := q.Drain()
	assert.Equal(t, []Response{{Transaction: 1}, {Transaction: 2}}, resps)
	assert.Equal(t, []Action{{Target: 2, Component: 3}}, actions)

	resps, actions = q.Drain()
	assert.Empty(t, resps)
	assert.Empty(t, actions)
}
