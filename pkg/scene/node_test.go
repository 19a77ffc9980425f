package scene

import (
	"errors"
	"testing"

	"github.com/Faultbox/assetkit/pkg/math"
)

func TestInsert(t *testing.T) {
	tree := NewNodeTree()

	root, err := tree.Insert(NewNode("root"), NoNode)
	if err != nil {
		t.Fatalf("Insert root: %v", err)
	}
	child, err := tree.Insert(NewNode("child"), root)
	if err != nil {
		t.Fatalf("Insert child: %v", err)
	}

	if tree.Root != root {
		t.Errorf("Root = %d, want %d", tree.Root, root)
	}
	if got := tree.Arena[child].Parent; got != root {
		t.Errorf("child parent = %d, want %d", got, root)
	}
	if len(tree.Arena[root].Children) != 1 || tree.Arena[root].Children[0] != child {
		t.Errorf("root children = %v, want [%d]", tree.Arena[root].Children, child)
	}
}

func TestInsertErrors(t *testing.T) {
	tests := []struct {
		name   string
		parent int
		want   error
	}{
		{"second root", NoNode, ErrRootAlreadyExists},
		{"unknown parent", 7, ErrInvalidParent},
		{"negative parent", -3, ErrInvalidParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := WithRoot(NewNode("root"))
			_, err := tree.Insert(NewNode("n"), tt.parent)
			if !errors.Is(err, tt.want) {
				t.Errorf("Insert error = %v, want %v", err, tt.want)
			}
			if tree.Len() != 1 {
				t.Errorf("failed insert changed arena size to %d", tree.Len())
			}
		})
	}
}

func buildChain(names ...string) NodeTree {
	tree := NewNodeTree()
	parent := NoNode
	for _, n := range names {
		idx, err := tree.Insert(NewNode(n), parent)
		if err != nil {
			panic(err)
		}
		parent = idx
	}
	return tree
}

func TestMerge(t *testing.T) {
	tree := WithRoot(NewNode("ROOT"))
	a := buildChain("a", "a1", "a2")
	b := buildChain("b", "b1")

	tree.Merge(a)
	tree.Merge(b)

	if tree.Len() != 1+a.Len()+b.Len() {
		t.Fatalf("Len = %d, want %d", tree.Len(), 1+a.Len()+b.Len())
	}
	root := tree.Arena[tree.Root]
	if len(root.Children) != 2 {
		t.Fatalf("root children = %v, want 2 entries", root.Children)
	}
	if got := tree.Arena[root.Children[0]].Name; got != "a" {
		t.Errorf("first child = %q, want %q", got, "a")
	}
	if got := tree.Arena[root.Children[1]].Name; got != "b" {
		t.Errorf("second child = %q, want %q", got, "b")
	}

	// Every non-root node must be listed by its parent.
	for i, n := range tree.Arena {
		if i == tree.Root {
			if n.Parent != NoNode {
				t.Errorf("root has parent %d", n.Parent)
			}
			continue
		}
		found := false
		for _, c := range tree.Arena[n.Parent].Children {
			if c == i {
				found = true
			}
		}
		if !found {
			t.Errorf("node %d (%s) not listed by parent %d", i, n.Name, n.Parent)
		}
		if n.Parent > i {
			t.Errorf("node %d has parent %d with a larger index", i, n.Parent)
		}
	}
}

func TestMergeWithoutRoot(t *testing.T) {
	tree := NewNodeTree()
	tree.Merge(buildChain("x", "y"))
	if tree.HasRoot() {
		t.Error("merging into an empty tree should not create a root")
	}
	if tree.Arena[0].Parent != NoNode {
		t.Errorf("orphan parent = %d, want NoNode", tree.Arena[0].Parent)
	}
}

func TestWalk(t *testing.T) {
	tree := WithRoot(NewNode("ROOT"))
	tree.Merge(buildChain("a", "a1"))
	tree.Merge(buildChain("b"))

	var names []string
	var depths []int
	tree.Walk(func(idx, depth int) bool {
		names = append(names, tree.Arena[idx].Name)
		depths = append(depths, depth)
		return true
	})

	want := []string{"ROOT", "a", "b", "a1"}
	if len(names) != len(want) {
		t.Fatalf("walk visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visit %d = %q, want %q", i, names[i], want[i])
		}
	}
	if depths[3] != 2 {
		t.Errorf("depth of a1 = %d, want 2", depths[3])
	}
}

func TestGlobalTransform(t *testing.T) {
	tree := buildChain("p", "c")
	tree.Arena[0].Transform = math.Translate(1, 0, 0)
	tree.Arena[1].Transform = math.Translate(0, 2, 0)

	got := tree.GlobalTransform(1).TransformPoint(math.Vec3{})
	if got != (math.Vec3{X: 1, Y: 2}) {
		t.Errorf("global position = %v, want (1, 2, 0)", got)
	}
}
