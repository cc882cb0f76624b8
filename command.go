package windowserver

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// CommandKind identifies an IPC request.
type CommandKind uint16

const (
	CommandUnknown CommandKind = iota
	CommandCreateComponent
	CommandAddComponent
	CommandSetBounds
	CommandSetVisible
	CommandSetActionListener
	CommandSetTitle
	CommandGetTitle
	CommandDestroyComponent
)

var commandKindNames = [...]string{
	CommandUnknown:           "unknown",
	CommandCreateComponent:   "create",
	CommandAddComponent:      "add",
	CommandSetBounds:         "set-bounds",
	CommandSetVisible:        "set-visible",
	CommandSetActionListener: "set-action-listener",
	CommandSetTitle:          "set-title",
	CommandGetTitle:          "get-title",
	CommandDestroyComponent:  "destroy",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return fmt.Sprintf("command(%d)", uint16(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k CommandKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized names
// decode to CommandUnknown so they reach the server and get logged there.
func (k *CommandKind) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range commandKindNames {
		if strings.EqualFold(name, s) {
			*k = CommandKind(i)
			return nil
		}
	}
	*k = CommandUnknown
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ComponentType) UnmarshalText(b []byte) error {
	v, ok := ParseComponentType(string(b))
	if !ok {
		// Out of range on purpose: CREATE answers it with StatusFail.
		*t = ComponentType(len(componentTypeNames))
		return nil
	}
	*t = v
	return nil
}

// Status is the outcome carried by every response.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusFail
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "fail"
}

// TitleMaximum is the default limit applied by GET_TITLE.
const TitleMaximum = 1024

// Request is a client command. Which fields are meaningful depends on Kind.
type Request struct {
	Sender      ProcessID     `yaml:"sender,omitempty"`
	Transaction uint32        `yaml:"transaction,omitempty"`
	Kind        CommandKind   `yaml:"kind"`
	Type        ComponentType `yaml:"type,omitempty"`
	ID          ComponentID   `yaml:"id,omitempty"`
	Parent      ComponentID   `yaml:"parent,omitempty"`
	Child       ComponentID   `yaml:"child,omitempty"`
	Bounds      Rect          `yaml:"bounds,omitempty"`
	Visible     bool          `yaml:"visible,omitempty"`
	Title       string        `yaml:"title,omitempty"`
	Target      ProcessID     `yaml:"target,omitempty"`
}

// Response answers a Request. It is routed back to the sender's transaction.
type Response struct {
	Target      ProcessID
	Transaction uint32
	Kind        CommandKind
	Status      Status
	ID          ComponentID
	Title       string
}

// Action notifies a listener process that a component fired.
type Action struct {
	Target    ProcessID
	Component ComponentID
}

// Outbox receives everything the server sends to clients. Implementations
// must not block; the render loop calls them inline.
type Outbox interface {
	Respond(Response)
	Notify(Action)
}

// QueueOutbox is a mutex-guarded Outbox drained by a responder.
type QueueOutbox struct {
	mu        sync.Mutex
	responses []Response
	actions   []Action
}

// Respond implements Outbox.
func (q *QueueOutbox) Respond(r Response) {
	q.mu.Lock()
	q.responses = append(q.responses, r)
	q.mu.Unlock()
}

// Notify implements Outbox.
func (q *QueueOutbox) Notify(a Action) {
	q.mu.Lock()
	q.actions = append(q.actions, a)
	q.mu.Unlock()
}

// Drain removes and returns everything queued, oldest first.
func (q *QueueOutbox) Drain() ([]Response, []Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, a := q.responses, q.actions
	q.responses, q.actions = nil, nil
	return r, a
}

// handleRequest executes req against the tree. ok is false for requests
// that get no response at all.
func (s *Server) handleRequest(req Request) (resp Response, ok bool) {
	resp = Response{
		Target:      req.Sender,
		Transaction: req.Transaction,
		Kind:        req.Kind,
		Status:      StatusFail,
	}

	switch req.Kind {
	case CommandCreateComponent:
		if !clientCreatable(req.Type) {
			s.log.Warn("don't know how to create component",
				"type", req.Type, "sender", req.Sender, "transaction", req.Transaction)
			return resp, true
		}
		n := newNode(req.Type.String(), req.Type)
		if req.Type == TypeWindow {
			s.screen.AddChild(n)
		}
		resp.ID = s.registry.Add(n)
		n.SetBounds(s.cfg.DefaultBounds)
		resp.Status = StatusSuccess

	case CommandAddComponent:
		parent := s.registry.Get(req.Parent)
		child := s.registry.Get(req.Child)
		if parent == nil || child == nil {
			s.log.Warn("could not add component",
				"parent", req.Parent, "child", req.Child, "sender", req.Sender)
			return resp, true
		}
		if isAncestor(child, parent) {
			s.log.Warn("add would create a cycle", "parent", req.Parent, "child", req.Child)
			return resp, true
		}
		parent.AddChild(child)
		resp.Status = StatusSuccess

	case CommandSetBounds:
		n := s.registry.Get(req.ID)
		if n == nil {
			return resp, true
		}
		n.SetBounds(req.Bounds)
		resp.Status = StatusSuccess

	case CommandSetVisible:
		n := s.registry.Get(req.ID)
		if n == nil {
			return resp, true
		}
		n.SetVisible(req.Visible)
		resp.Status = StatusSuccess

	case CommandSetActionListener:
		n := s.registry.Get(req.ID)
		if n == nil || !n.SetActionListener(req.Target) {
			return resp, true
		}
		s.log.Info("registered action listener", "component", req.ID, "target", req.Target)
		resp.Status = StatusSuccess

	case CommandSetTitle:
		n := s.registry.Get(req.ID)
		if n == nil || !n.SetTitle(req.Title) {
			return resp, true
		}
		resp.Status = StatusSuccess

	case CommandGetTitle:
		n := s.registry.Get(req.ID)
		if n == nil {
			return resp, true
		}
		title, has := n.Title()
		if !has {
			return resp, true
		}
		resp.Title = truncateTitle(title, s.cfg.TitleMaximum)
		resp.Status = StatusSuccess

	case CommandDestroyComponent:
		n := s.registry.Get(req.ID)
		if n == nil {
			return resp, true
		}
		s.destroy(n)
		resp.Status = StatusSuccess

	default:
		s.log.Warn("unsupported request",
			"request", req.Kind, "sender", req.Sender, "transaction", req.Transaction)
		return Response{}, false
	}
	return resp, true
}

// truncateTitle cuts title to at most limit bytes without splitting a rune.
func truncateTitle(title string, limit int) string {
	if limit <= 0 || len(title) <= limit {
		return title
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(title[cut]) {
		cut--
	}
	return title[:cut]
}

// logAttrs is used for request logging outside handleRequest.
func (r Request) logAttrs() []any {
	return []any{
		slog.String("request", r.Kind.String()),
		slog.Uint64("sender", uint64(r.Sender)),
		slog.Uint64("transaction", uint64(r.Transaction)),
	}
}
