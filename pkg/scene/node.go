package scene

import (
	"errors"

	"github.com/Faultbox/assetkit/pkg/math"
)

// NoNode marks an absent node reference.
const NoNode = -1

// Node tree errors.
var (
	ErrInvalidParent     = errors.New("invalid parent node")
	ErrRootAlreadyExists = errors.New("node tree already has a root")
)

// Node is one element of the scene graph.
type Node struct {
	Name        string
	Parent      int // NoNode for the root
	Children    []int
	MeshIndexes []int
	Transform   math.Mat4
	Metadata    *Metadata
}

// NewNode returns a parentless node with an identity transform.
func NewNode(name string) Node {
	return Node{
		Name:      name,
		Parent:    NoNode,
		Transform: math.Identity(),
	}
}

// NodeTree stores the scene graph in an append-only arena.
// Indices stay valid for the lifetime of the tree; nodes are never removed
// or re-parented.
type NodeTree struct {
	Root  int
	Arena []Node
}

// NewNodeTree returns an empty tree.
func NewNodeTree() NodeTree {
	return NodeTree{Root: NoNode}
}

// WithRoot returns a tree holding only the given node as root.
func WithRoot(node Node) NodeTree {
	node.Parent = NoNode
	return NodeTree{Root: 0, Arena: []Node{node}}
}

// HasRoot reports whether the tree has a root node.
func (t *NodeTree) HasRoot() bool {
	return t.Root >= 0 && t.Root < len(t.Arena)
}

// Len returns the number of nodes.
func (t *NodeTree) Len() int {
	return len(t.Arena)
}

// Insert appends node under parent (NoNode to make it the root) and returns
// its index.
func (t *NodeTree) Insert(node Node, parent int) (int, error) {
	idx := len(t.Arena)
	if parent == NoNode {
		if t.HasRoot() {
			return NoNode, ErrRootAlreadyExists
		}
	} else if parent < 0 || parent >= len(t.Arena) {
		return NoNode, ErrInvalidParent
	}

	node.Parent = parent
	if parent == NoNode {
		t.Root = idx
	} else {
		t.Arena[parent].Children = append(t.Arena[parent].Children, idx)
	}
	t.Arena = append(t.Arena, node)
	return idx, nil
}

// Merge appends other's nodes, shifting every reference by the current arena
// length, and attaches other's parentless nodes as children of t's root.
func (t *NodeTree) Merge(other NodeTree) {
	offset := len(t.Arena)
	var attach []int
	for i, node := range other.Arena {
		if node.Parent == NoNode {
			if t.HasRoot() {
				node.Parent = t.Root
			}
			attach = append(attach, i+offset)
		} else {
			node.Parent += offset
		}
		children := make([]int, len(node.Children))
		for j, c := range node.Children {
			children[j] = c + offset
		}
		node.Children = children
		t.Arena = append(t.Arena, node)
	}
	if t.HasRoot() {
		t.Arena[t.Root].Children = append(t.Arena[t.Root].Children, attach...)
	}
}

// Walk visits nodes breadth-first from the root, passing each node's depth.
// Returning false from fn stops the walk.
func (t *NodeTree) Walk(fn func(idx, depth int) bool) {
	if !t.HasRoot() {
		return
	}
	type entry struct{ idx, depth int }
	queue := []entry{{t.Root, 0}}
	seen := make(map[int]bool, len(t.Arena))
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if seen[e.idx] {
			continue
		}
		seen[e.idx] = true
		if !fn(e.idx, e.depth) {
			return
		}
		for _, c := range t.Arena[e.idx].Children {
			if c >= 0 && c < len(t.Arena) {
				queue = append(queue, entry{c, e.depth + 1})
			}
		}
	}
}

// GlobalTransform returns the product of transforms from the root down to idx.
func (t *NodeTree) GlobalTransform(idx int) math.Mat4 {
	m := math.Identity()
	for i := idx; i >= 0 && i < len(t.Arena); i = t.Arena[i].Parent {
		m = t.Arena[i].Transform.Mul(m)
	}
	return m
}

// FindByName returns the index of the first node with the given name.
func (t *NodeTree) FindByName(name string) (int, bool) {
	for i := range t.Arena {
		if t.Arena[i].Name == name {
			return i, true
		}
	}
	return NoNode, false
}
