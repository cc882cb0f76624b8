package windowserver

// Registry maps client-visible component ids to nodes. It does not own the
// nodes; the tree does. Entries are evicted when their node is destroyed.
type Registry struct {
	nodes  map[ComponentID]*Node
	nextID ComponentID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[ComponentID]*Node)}
}

// Add assigns n a fresh id and records it.
func (r *Registry) Add(n *Node) ComponentID {
	r.nextID++
	id := r.nextID
	n.ID = id
	r.nodes[id] = n
	return id
}

// Get resolves id. It returns nil for unknown ids.
func (r *Registry) Get(id ComponentID) *Node {
	return r.nodes[id]
}

// Remove evicts id.
func (r *Registry) Remove(id ComponentID) {
	delete(r.nodes, id)
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}
