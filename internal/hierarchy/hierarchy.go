package hierarchy

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var (
	ErrEmptyHierarchy = errors.New("hierarchy has no nodes")
	ErrDuplicateNode  = errors.New("duplicate node name")
	ErrNodeNotFound   = errors.New("node not found")
	ErrLeafNode       = errors.New("node has no children")
	ErrPriorityLength = errors.New("local priorities do not match children")
	ErrPrioritySum    = errors.New("local priorities do not sum to 1")
)

// PriorityTolerance is the allowed drift when checking that a local
// priority vector sums to 1.
const PriorityTolerance = 1e-9

// Node represents one criterion, sub-criterion or alternative
type Node struct {
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Children        []string  `json:"children,omitempty"`
	LocalPriorities []float64 `json:"localPriorities,omitempty"`
}

// IsLeaf reports whether the node is an alternative (no children)
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Evaluated reports whether local priorities have been derived for the node
func (n Node) Evaluated() bool {
	return len(n.LocalPriorities) > 0
}

// ChildIndex returns the position of name in the node's children, or -1
func (n Node) ChildIndex(name string) int {
	for i, child := range n.Children {
		if child == name {
			return i
		}
	}
	return -1
}

func (n Node) clone() Node {
	c := n
	if n.Children != nil {
		c.Children = append([]string(nil), n.Children...)
	}
	if n.LocalPriorities != nil {
		c.LocalPriorities = append([]float64(nil), n.LocalPriorities...)
	}
	return c
}

// Hierarchy is an ordered set of nodes whose first element is the root.
// Name and parent lookups are indexed once at construction. The only
// mutable state is each node's local priorities, written through
// SetLocalPriorities.
type Hierarchy struct {
	mu     sync.RWMutex
	nodes  []*Node
	byName map[string]*Node
	parent map[string]string
}

// New builds a hierarchy from nodes. The input slice is copied.
func New(nodes []Node) (*Hierarchy, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyHierarchy
	}

	h := &Hierarchy{
		nodes:  make([]*Node, 0, len(nodes)),
		byName: make(map[string]*Node, len(nodes)),
		parent: make(map[string]string, len(nodes)),
	}

	for _, n := range nodes {
		if _, exists := h.byName[n.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name)
		}
		if dup := duplicateChild(n.Children); dup != "" {
			return nil, fmt.Errorf("%w: %q lists child %q twice", ErrDuplicateNode, n.Name, dup)
		}
		node := n.clone()
		h.nodes = append(h.nodes, &node)
		h.byName[node.Name] = &node
	}

	// First referencing node wins, matching a linear scan in hierarchy order.
	for _, n := range h.nodes {
		for _, child := range n.Children {
			if _, seen := h.parent[child]; !seen {
				h.parent[child] = n.Name
			}
		}
	}

	return h, nil
}

func duplicateChild(children []string) string {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if seen[c] {
			return c
		}
		seen[c] = true
	}
	return ""
}

// Root returns the first node
func (h *Hierarchy) Root() Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.nodes[0].clone()
}

// IsRoot reports whether name identifies the root node
func (h *Hierarchy) IsRoot(name string) bool {
	return h.nodes[0].Name == name
}

// Len returns the number of nodes
func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// Node resolves a node by name
func (h *Hierarchy) Node(name string) (Node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.byName[name]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return n.clone(), nil
}

// Parent returns the node whose children contain name. ok is false for the
// root and for names no node references.
func (h *Hierarchy) Parent(name string) (parent Node, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	parentName, ok := h.parent[name]
	if !ok {
		return Node{}, false
	}
	p, ok := h.byName[parentName]
	if !ok {
		return Node{}, false
	}
	return p.clone(), true
}

// Nodes returns a snapshot of every node in hierarchy order
func (h *Hierarchy) Nodes() []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Node, len(h.nodes))
	for i, n := range h.nodes {
		out[i] = n.clone()
	}
	return out
}

// Leaves returns the alternatives in hierarchy order
func (h *Hierarchy) Leaves() []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var leaves []Node
	for _, n := range h.nodes {
		if n.IsLeaf() {
			leaves = append(leaves, n.clone())
		}
	}
	return leaves
}

// Unevaluated returns the names of nodes that have children but no local
// priorities, in hierarchy order.
func (h *Hierarchy) Unevaluated() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var names []string
	for _, n := range h.nodes {
		if !n.IsLeaf() && !n.Evaluated() {
			names = append(names, n.Name)
		}
	}
	return names
}

// Dangling returns child names that no node in the hierarchy carries, in
// the order they are first referenced.
func (h *Hierarchy) Dangling() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var names []string
	seen := make(map[string]bool)
	for _, n := range h.nodes {
		for _, child := range n.Children {
			if _, ok := h.byName[child]; ok || seen[child] {
				continue
			}
			seen[child] = true
			names = append(names, child)
		}
	}
	return names
}

// SetLocalPriorities overwrites the local priorities of the named node.
// The vector must align with the node's children and sum to 1.
func (h *Hierarchy) SetLocalPriorities(name string, priorities []float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := h.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	if n.IsLeaf() {
		return fmt.Errorf("%w: %q", ErrLeafNode, name)
	}
	if len(priorities) != len(n.Children) {
		return fmt.Errorf("%w: %q has %d children, got %d priorities",
			ErrPriorityLength, name, len(n.Children), len(priorities))
	}
	if sum := floats.Sum(priorities); !scalar.EqualWithinAbs(sum, 1, PriorityTolerance) {
		return fmt.Errorf("%w: %q sums to %v", ErrPrioritySum, name, sum)
	}

	n.LocalPriorities = append([]float64(nil), priorities...)
	return nil
}
