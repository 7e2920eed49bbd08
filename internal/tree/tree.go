// Package tree links conversation messages into a forest by parent id.
package tree

import "github.com/psaban20/claude-conversation-manager/internal/model"

// Node is a message in the tree.
type Node struct {
	Msg      *model.Message
	Parent   *Node
	Children []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is the parent/child structure of one file's messages.
type Tree struct {
	Nodes map[string]*Node
	// Roots are messages without a parent in the file, in file order.
	Roots []*Node
	// Cycles lists the member ids of every parent loop, in parent order.
	Cycles [][]string

	order []*Node
}

// Build links the message records. A repeated uuid keeps its first position
// and the data of its last occurrence. A parent id that is not in the file
// makes the message a root.
func Build(records []model.Record) *Tree {
	t := &Tree{Nodes: make(map[string]*Node)}
	for _, r := range records {
		if r.Kind != model.KindMessage {
			continue
		}
		if n, ok := t.Nodes[r.Message.ID]; ok {
			n.Msg = r.Message
			continue
		}
		n := &Node{Msg: r.Message}
		t.Nodes[r.Message.ID] = n
		t.order = append(t.order, n)
	}

	for _, n := range t.order {
		p, ok := t.Nodes[n.Msg.ParentID]
		if n.Msg.ParentID == "" || !ok {
			t.Roots = append(t.Roots, n)
			continue
		}
		n.Parent = p
		p.Children = append(p.Children, n)
	}

	t.Cycles = findCycles(t.order)
	return t
}

// Len returns the number of distinct messages.
func (t *Tree) Len() int { return len(t.order) }

// Leaves returns every childless message in file order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	for _, n := range t.order {
		if n.IsLeaf() {
			out = append(out, n)
		}
	}
	return out
}

// VisibleLeaves returns the leaves that are not sidechain messages.
func (t *Tree) VisibleLeaves() []*Node {
	var out []*Node
	for _, n := range t.Leaves() {
		if !n.Msg.IsSidechain {
			out = append(out, n)
		}
	}
	return out
}

// Path walks from leaf to its root and returns the messages root first.
// If the walk revisits a message the path stops before the repeat and
// truncated is true.
func (t *Tree) Path(leaf *Node) (path []*Node, truncated bool) {
	seen := make(map[*Node]bool)
	for n := leaf; n != nil; n = n.Parent {
		if seen[n] {
			truncated = true
			break
		}
		seen[n] = true
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, truncated
}

// findCycles follows parent links from every node, colouring nodes as it
// goes, so each node is visited once.
func findCycles(order []*Node) [][]string {
	const (
		unseen = iota
		walking
		done
	)
	state := make(map[*Node]int, len(order))
	var cycles [][]string
	for _, start := range order {
		if state[start] != unseen {
			continue
		}
		var stack []*Node
		n := start
		for n != nil && state[n] == unseen {
			state[n] = walking
			stack = append(stack, n)
			n = n.Parent
		}
		if n != nil && state[n] == walking {
			i := len(stack) - 1
			for stack[i] != n {
				i--
			}
			ids := make([]string, 0, len(stack)-i)
			for _, c := range stack[i:] {
				ids = append(ids, c.Msg.ID)
			}
			cycles = append(cycles, ids)
		}
		for _, s := range stack {
			state[s] = done
		}
	}
	return cycles
}
