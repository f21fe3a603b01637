package graph

import (
	"slices"
	"strconv"
)

// Node is a graph vertex.
type Node struct {
	ID    string
	Label string

	// Position, when set, is where a layout first places the node.
	Position []float64

	// Pinned nodes start pinned in a layout.
	Pinned bool
}

// Link is a directed edge between two nodes.
type Link struct {
	ID   string
	From string
	To   string

	// Length is the spring rest length; 0 means the layout default.
	Length float64
	Weight float64
}

// ChangeType tags an entry of a change batch.
type ChangeType uint8

const (
	Added ChangeType = iota + 1
	Removed
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "add"
	case Removed:
		return "remove"
	}
	return "unknown"
}

// Change records one mutation. Exactly one of Node and Link is set.
type Change struct {
	Type ChangeType
	Node *Node
	Link *Link
}

// Graph is an in-memory directed multigraph that reports its mutations to
// subscribers. Nodes and links are enumerated in insertion order. A Graph is
// not safe for concurrent use.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	links     map[string]*Link
	linkOrder []string
	incident  map[string][]*Link

	listeners []listener
	nextID    int
	pending   []Change
	depth     int
}

type listener struct {
	id int
	fn func([]Change)
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		links:    make(map[string]*Link),
		incident: make(map[string][]*Link),
	}
}

// NodeOption customizes a node created by AddNode.
type NodeOption func(*Node)

// At sets the initial position of a node.
func At(coords ...float64) NodeOption {
	return func(n *Node) { n.Position = slices.Clone(coords) }
}

// Pinned marks a node as pinned.
func Pinned() NodeOption {
	return func(n *Node) { n.Pinned = true }
}

// WithLabel sets a display label.
func WithLabel(label string) NodeOption {
	return func(n *Node) { n.Label = label }
}

// LinkOption customizes a link created by AddLink.
type LinkOption func(*Link)

// Length sets the rest length of the spring for a link.
func Length(l float64) LinkOption {
	return func(lk *Link) { lk.Length = l }
}

// Weight sets a link weight.
func Weight(w float64) LinkOption {
	return func(lk *Link) { lk.Weight = w }
}

// AddNode adds a node, or applies opts to the existing node with that id.
// Only a new node produces a change.
func (g *Graph) AddNode(id string, opts ...NodeOption) *Node {
	if n, ok := g.nodes[id]; ok {
		for _, opt := range opts {
			opt(n)
		}
		return n
	}
	n := &Node{ID: id}
	for _, opt := range opts {
		opt(n)
	}
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	g.emit(Change{Type: Added, Node: n})
	return n
}

// AddLink adds a link, creating missing endpoints. Parallel links get ids
// with a numeric suffix.
func (g *Graph) AddLink(from, to string, opts ...LinkOption) *Link {
	g.BeginUpdate()
	defer g.EndUpdate()

	g.AddNode(from)
	g.AddNode(to)

	id := from + "->" + to
	for i := 1; g.links[id] != nil; i++ {
		id = from + "->" + to + "#" + strconv.Itoa(i)
	}
	l := &Link{ID: id, From: from, To: to, Weight: 1}
	for _, opt := range opts {
		opt(l)
	}
	g.links[id] = l
	g.linkOrder = append(g.linkOrder, id)
	g.incident[from] = append(g.incident[from], l)
	if to != from {
		g.incident[to] = append(g.incident[to], l)
	}
	g.emit(Change{Type: Added, Link: l})
	return l
}

// RemoveLink removes a link by id and reports whether it existed.
func (g *Graph) RemoveLink(id string) bool {
	l, ok := g.links[id]
	if !ok {
		return false
	}
	delete(g.links, id)
	g.linkOrder = deleteValue(g.linkOrder, id)
	g.incident[l.From] = deleteValue(g.incident[l.From], l)
	if l.To != l.From {
		g.incident[l.To] = deleteValue(g.incident[l.To], l)
	}
	g.emit(Change{Type: Removed, Link: l})
	return true
}

// RemoveNode removes a node and its incident links. The link removals are
// reported before the node removal in the same batch.
func (g *Graph) RemoveNode(id string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	g.BeginUpdate()
	defer g.EndUpdate()

	for _, l := range slices.Clone(g.incident[id]) {
		g.RemoveLink(l.ID)
	}
	delete(g.incident, id)
	delete(g.nodes, id)
	g.nodeOrder = deleteValue(g.nodeOrder, id)
	g.emit(Change{Type: Removed, Node: n})
	return true
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Link returns the link with the given id, or nil.
func (g *Graph) Link(id string) *Link { return g.links[id] }

// HasLink returns the first link from one node to another, or nil.
func (g *Graph) HasLink(from, to string) *Link {
	for _, l := range g.incident[from] {
		if l.From == from && l.To == to {
			return l
		}
	}
	return nil
}

// Links returns the links touching a node in either direction.
func (g *Graph) Links(id string) []*Link {
	return slices.Clone(g.incident[id])
}

func (g *Graph) NodeCount() int { return len(g.nodes) }
func (g *Graph) LinkCount() int { return len(g.links) }

// ForEachNode calls fn for every node in insertion order.
func (g *Graph) ForEachNode(fn func(*Node)) {
	for _, id := range slices.Clone(g.nodeOrder) {
		if n, ok := g.nodes[id]; ok {
			fn(n)
		}
	}
}

// ForEachLink calls fn for every link in insertion order.
func (g *Graph) ForEachLink(fn func(*Link)) {
	for _, id := range slices.Clone(g.linkOrder) {
		if l, ok := g.links[id]; ok {
			fn(l)
		}
	}
}

// Subscribe registers fn for change batches and returns a function that
// removes the subscription.
func (g *Graph) Subscribe(fn func([]Change)) (unsubscribe func()) {
	id := g.nextID
	g.nextID++
	g.listeners = append(g.listeners, listener{id: id, fn: fn})
	return func() {
		g.listeners = slices.DeleteFunc(g.listeners, func(l listener) bool { return l.id == id })
	}
}

// BeginUpdate starts collecting changes into one batch. Calls nest; the
// batch is delivered by the outermost EndUpdate.
func (g *Graph) BeginUpdate() { g.depth++ }

// EndUpdate closes a BeginUpdate and delivers the batch when it is the
// outermost one.
func (g *Graph) EndUpdate() {
	if g.depth == 0 {
		return
	}
	g.depth--
	if g.depth == 0 {
		g.flush()
	}
}

// Clone returns a copy with the same nodes and links and no subscribers.
func (g *Graph) Clone() *Graph {
	c := New()
	g.ForEachNode(func(n *Node) {
		cp := *n
		cp.Position = slices.Clone(n.Position)
		c.nodes[cp.ID] = &cp
		c.nodeOrder = append(c.nodeOrder, cp.ID)
	})
	g.ForEachLink(func(l *Link) {
		cp := *l
		c.links[cp.ID] = &cp
		c.linkOrder = append(c.linkOrder, cp.ID)
		c.incident[cp.From] = append(c.incident[cp.From], &cp)
		if cp.To != cp.From {
			c.incident[cp.To] = append(c.incident[cp.To], &cp)
		}
	})
	return c
}

func (g *Graph) emit(c Change) {
	g.pending = append(g.pending, c)
	if g.depth == 0 {
		g.flush()
	}
}

func (g *Graph) flush() {
	if len(g.pending) == 0 {
		return
	}
	batch := g.pending
	g.pending = nil
	for _, l := range slices.Clone(g.listeners) {
		l.fn(batch)
	}
}

func deleteValue[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
