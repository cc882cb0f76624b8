// Package windowserver is the scene-graph runtime of a compositing display
// server: it owns a tree of client components, routes pointer and keyboard
// input to them, and recomposites only the screen regions that changed.
//
// # Quick start
//
// A [Server] owns the tree. Clients talk to it through [Request] values and
// receive [Response] and [Action] values through an [Outbox]:
//
//	out := &windowserver.QueueOutbox{}
//	srv, err := windowserver.NewServer(windowserver.DefaultConfig(), out, sink)
//	if err != nil {
//		return err
//	}
//	srv.Submit(windowserver.Request{Kind: windowserver.CommandCreateComponent, Type: windowserver.TypeWindow})
//	go srv.Run(ctx)
//
// The ebitendriver package runs a server in a desktop window, using
// Ebitengine for presentation and input.
//
// # Scene graph
//
// Every component is a [Node]. Bounds are relative to the parent; children
// are ordered back to front. Capabilities such as titles or action
// listeners are optional per-type payloads, queried with
// [Node.SupportsTitle] and [Node.SupportsActions].
//
// # Requirements
//
// Work on a node is raised with [Node.MarkFor] and settled once per tick in
// three full-tree passes: layout, then update, then paint. Each node keeps
// its own requirement bits and the union of its descendants' bits, so a
// pass only visits subtrees with pending work.
//
// # Input
//
// The [Cursor] turns raw [PointerSample] values into press, release, move,
// drag, enter, leave and focus events. Presses and moves go top-down from
// the screen with [Dispatch]; notifications for a specific component bubble
// up from it with [DispatchUpwards]. The component hit by a press captures
// the pointer until release.
//
// # Compositing
//
// Painted surfaces are combined into the framebuffer by [Node.Blit], which
// clips every node to the intersection of its ancestors' bounds. Only the
// union of the regions marked dirty since the last frame is redrawn and
// handed to the [FrameSink].
//
// # Threading
//
// The tree belongs to the goroutine calling [Server.Tick] or [Server.Run].
// [Server.PushPointer], [Server.PushKey] and [Server.Submit] may be called
// from any goroutine; they queue and wake the loop.
package windowserver
