package windowserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonScript = `
steps:
  - action: request
    request: {kind: create, type: window}
    as: main
  - action: request
    request: {kind: set-bounds, bounds: {x: 0, y: 0, width: 300, height: 200}}
    ref: main
  - action: request
    request: {kind: set-title, title: Demo}
    ref: main
  - action: request
    request: {kind: create, type: button}
    as: ok
  - action: request
    request: {kind: set-bounds, bounds: {x: 20, y: 40, width: 80, height: 30}}
    ref: ok
  - action: request
    request: {kind: add}
    parent_ref: main
    child_ref: ok
  - action: request
    request: {kind: set-action-listener}
    ref: ok
  - action: request
    request: {kind: set-title}
    ref: missing
    expect: fail
  - action: click
    x: 30
    y: 50
  - action: wait
    frames: 2
  - action: screenshot
    label: after click
`

// runScript ticks until the runner is done.
func runScript(t *testing.T, ts *testServer, r *ScriptRunner) {
	t.Helper()
	ts.SetScriptRunner(r)
	for i := 0; !r.Done(); i++ {
		require.Less(t, i, 200, "script did not finish")
		ts.Tick()
	}
}

func TestScriptRunsRequestsAndInput(t *testing.T) {
	ts := newTestServer(t)
	r, err := LoadScript([]byte(buttonScript))
	require.NoError(t, err)

	runScript(t, ts, r)

	require.NoError(t, r.Err())
	mainID, ok := r.Lookup("main")
	require.True(t, ok)
	okID, ok := r.Lookup("ok")
	require.True(t, ok)

	win := ts.registry.Get(mainID)
	btn := ts.registry.Get(okID)
	require.NotNil(t, win)
	require.NotNil(t, btn)
	assert.Same(t, win, btn.Parent())
	assert.Equal(t, Rect{0, 0, 300, 200}, win.Bounds())
	title, _ := win.Title()
	assert.Equal(t, "Demo", title)

	assert.Equal(t, []Action{{Target: scriptSender, Component: okID}}, r.Actions())
	assert.Len(t, r.Responses(), 8)

	// Responses still reach the server's outbox.
	resps, _ := ts.out.Drain()
	assert.Len(t, resps, 8)

	files, err := filepath.Glob(filepath.Join(ts.cfg.ScreenshotDir, "*_after_click.png"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScriptExpectationFailure(t *testing.T) {
	ts := newTestServer(t)
	r, err := LoadScript([]byte(`
steps:
  - action: request
    request: {kind: set-visible, id: 4242}
    expect: success
`))
	require.NoError(t, err)
	runScript(t, ts, r)
	assert.ErrorContains(t, r.Err(), "returned fail, expected success")
}

func TestScriptUnknownReference(t *testing.T) {
	ts := newTestServer(t)
	r, err := LoadScript([]byte(`
steps:
  - action: request
    request: {kind: get-title}
    ref: nobody
`))
	require.NoError(t, err)
	runScript(t, ts, r)
	assert.ErrorIs(t, r.Err(), ErrUnknownComponent)
}

func TestScriptUnansweredRequest(t *testing.T) {
	ts := newTestServer(t)
	r, err := LoadScript([]byte(`
steps:
  - action: request
    request: {kind: teleport}
  - action: wait
    frames: 1
`))
	require.NoError(t, err)
	runScript(t, ts, r)
	assert.ErrorIs(t, r.Err(), ErrUnsupported)
}

func TestScriptTyping(t *testing.T) {
	ts := newTestServer(t)
	r, err := LoadScript([]byte(`
steps:
  - action: request
    request: {kind: create, type: window}
    as: w
  - action: request
    request: {kind: set-bounds, bounds: {x: 0, y: 0, width: 300, height: 200}}
    ref: w
  - action: request
    request: {kind: create, type: textfield}
    as: f
  - action: request
    request: {kind: set-bounds, bounds: {x: 10, y: 40, width: 200, height: 24}}
    ref: f
  - action: request
    request: {kind: add}
    parent_ref: w
    child_ref: f
  - action: click
    x: 20
    y: 50
  - action: text
    text: abc
  - action: key
    key: backspace
`))
	require.NoError(t, err)
	runScript(t, ts, r)
	require.NoError(t, r.Err())

	id, _ := r.Lookup("f")
	title, _ := ts.registry.Get(id).Title()
	assert.Equal(t, "ab", title)
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"invalid yaml", "steps: [", "parse script"},
		{"no steps", "steps: []", "no steps"},
		{"unknown action", "steps:\n  - action: dance\n", "unsupported"},
		{"request without body", "steps:\n  - action: request\n", "without request"},
		{"unknown key", "steps:\n  - action: key\n    key: hyper\n", "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.src))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sender: 12\nsteps:\n  - action: wait\n    frames: 3\n"), 0o644))
	r, err := LoadScriptFile(path)
	require.NoError(t, err)
	assert.Equal(t, ProcessID(12), r.sender)

	_, err = LoadScriptFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read script")
}
