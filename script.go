package windowserver

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// scriptSender is the process id scripts submit requests as unless the
// script names its own.
const scriptSender ProcessID = 0xFFFF

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string `yaml:"action"`

	// request
	Request   *Request `yaml:"request,omitempty"`
	As        string   `yaml:"as,omitempty"`
	Ref       string   `yaml:"ref,omitempty"`
	ParentRef string   `yaml:"parent_ref,omitempty"`
	ChildRef  string   `yaml:"child_ref,omitempty"`
	Expect    string   `yaml:"expect,omitempty"`

	// pointer
	X      int `yaml:"x,omitempty"`
	Y      int `yaml:"y,omitempty"`
	FromX  int `yaml:"from_x,omitempty"`
	FromY  int `yaml:"from_y,omitempty"`
	ToX    int `yaml:"to_x,omitempty"`
	ToY    int `yaml:"to_y,omitempty"`
	Frames int `yaml:"frames,omitempty"`

	// keyboard
	Key  string `yaml:"key,omitempty"`
	Text string `yaml:"text,omitempty"`

	// screenshot
	Label string `yaml:"label,omitempty"`
}

// script is the top-level YAML structure.
type script struct {
	Sender ProcessID    `yaml:"sender,omitempty"`
	Steps  []scriptStep `yaml:"steps"`
}

// ScriptRunner sequences requests, injected input and screenshots across
// ticks for automated and headless runs. Components created by a request
// step can be bound to a name with "as" and referenced by later steps.
// Attach it with Server.SetScriptRunner.
type ScriptRunner struct {
	sender    ProcessID
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool

	next     Outbox
	names    map[string]ComponentID
	awaiting *scriptStep
	txn      uint32

	responses []Response
	actions   []Action
	errs      []error
}

var scriptActions = map[string]bool{
	"request": true, "click": true, "press": true, "release": true, "move": true,
	"hover": true, "drag": true, "key": true, "text": true, "wait": true, "screenshot": true,
}

// LoadScript parses a YAML script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: action %q: %w", i, st.Action, ErrUnsupported)
		}
		if st.Action == "request" && st.Request == nil {
			return nil, fmt.Errorf("parse script: step %d: request step without request", i)
		}
		if st.Action == "key" {
			if _, ok := parseKey(st.Key); !ok {
				return nil, fmt.Errorf("parse script: step %d: key %q: %w", i, st.Key, ErrUnsupported)
			}
		}
	}
	if sc.Sender == 0 {
		sc.Sender = scriptSender
	}
	return &ScriptRunner{
		sender: sc.Sender,
		steps:  sc.Steps,
		names:  make(map[string]ComponentID),
	}, nil
}

// LoadScriptFile reads and parses a YAML script file.
func LoadScriptFile(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return LoadScript(data)
}

// SetScriptRunner attaches r. Its step method runs at the start of every
// tick, and it sees every response and action before the server's outbox
// does. Must not be called concurrently with Tick.
func (s *Server) SetScriptRunner(r *ScriptRunner) {
	r.next = s.outbox
	s.outbox = r
	s.script = r
	s.RequestFrame()
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns every failed expectation and unresolved reference so far.
func (r *ScriptRunner) Err() error {
	return errors.Join(r.errs...)
}

// Lookup returns the id bound to name by an "as" clause.
func (r *ScriptRunner) Lookup(name string) (ComponentID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// Responses returns the responses to the script's own requests.
func (r *ScriptRunner) Responses() []Response {
	return r.responses
}

// Actions returns the action notifications addressed to the script.
func (r *ScriptRunner) Actions() []Action {
	return r.actions
}

// Respond implements Outbox.
func (r *ScriptRunner) Respond(resp Response) {
	if resp.Target == r.sender && r.awaiting != nil && resp.Transaction == r.txn {
		st := r.awaiting
		r.awaiting = nil
		r.responses = append(r.responses, resp)
		if resp.Status == StatusSuccess && st.As != "" {
			r.names[st.As] = resp.ID
		}
		if st.Expect != "" && !strings.EqualFold(st.Expect, resp.Status.String()) {
			r.errs = append(r.errs, fmt.Errorf("step %d: %s returned %s, expected %s",
				r.cursor-1, resp.Kind, resp.Status, st.Expect))
		}
	}
	r.next.Respond(resp)
}

// Notify implements Outbox.
func (r *ScriptRunner) Notify(a Action) {
	if a.Target == r.sender {
		r.actions = append(r.actions, a)
	}
	r.next.Notify(a)
}

// step advances the runner by one tick. Called from Server.Tick.
func (r *ScriptRunner) step(s *Server) {
	if r.done {
		return
	}
	defer func() {
		if !r.done {
			s.RequestFrame()
		}
	}()

	// Responses arrive in the tick that drains the request, so anything
	// still awaited here was never answered.
	if r.awaiting != nil {
		r.errs = append(r.errs, fmt.Errorf("step %d: %s: no response: %w",
			r.cursor-1, r.awaiting.Request.Kind, ErrUnsupported))
		r.awaiting = nil
	}
	if s.pendingInjections() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := &r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "request":
		req := *st.Request
		req.Sender = r.sender
		r.txn++
		req.Transaction = r.txn
		var missing []string
		req.ID = r.resolve(st.Ref, req.ID, &missing)
		req.Parent = r.resolve(st.ParentRef, req.Parent, &missing)
		req.Child = r.resolve(st.ChildRef, req.Child, &missing)
		// A step expecting failure may name components on purpose.
		if !strings.EqualFold(st.Expect, StatusFail.String()) {
			for _, name := range missing {
				r.errs = append(r.errs, fmt.Errorf("step %d: %q: %w", r.cursor-1, name, ErrUnknownComponent))
			}
		}
		if req.Target == 0 && req.Kind == CommandSetActionListener {
			req.Target = r.sender
		}
		r.awaiting = st
		s.Submit(req)
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "press":
		s.InjectPress(st.X, st.Y)
	case "release":
		s.InjectRelease(st.X, st.Y)
	case "move":
		s.InjectMove(st.X, st.Y)
	case "hover":
		s.InjectHover(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "key":
		k, _ := parseKey(st.Key)
		s.InjectKey(k, 0, 0)
	case "text":
		s.InjectText(st.Text)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}
}

// resolve maps a name bound earlier to its id. An empty name keeps id;
// an unbound one resolves to 0 and is appended to missing.
func (r *ScriptRunner) resolve(name string, id ComponentID, missing *[]string) ComponentID {
	if name == "" {
		return id
	}
	if v, ok := r.names[name]; ok {
		return v
	}
	*missing = append(*missing, name)
	return 0
}

var keyNames = map[string]Key{
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"enter":     KeyEnter,
	"tab":       KeyTab,
	"escape":    KeyEscape,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"home":      KeyHome,
	"end":       KeyEnd,
}

func parseKey(s string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(s)]
	return k, ok
}
