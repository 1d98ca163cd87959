package graph

import (
	"errors"
	"testing"
)

func TestGraph_AddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(Node{ID: "requirements.txt", Kind: KindFile}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}

	// Re-adding merges metadata rather than failing.
	if err := g.AddNode(Node{ID: "requirements.txt", Meta: Metadata{"lines": 10}}); err != nil {
		t.Fatal(err)
	}
	n, ok := g.Node("requirements.txt")
	if !ok {
		t.Fatal("node not found")
	}
	if n.Meta["lines"] != 10 {
		t.Errorf("Meta[lines] = %v, want 10", n.Meta["lines"])
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", g.NodeCount())
	}
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a", Kind: KindFile})
	_ = g.AddNode(Node{ID: "b", Kind: KindFile})

	if err := g.AddEdge(Edge{From: "a", To: "b", Label: "-r"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "b", Label: "-r"}); err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d after duplicate add, want 1", g.EdgeCount())
	}

	if err := g.AddEdge(Edge{From: "x", To: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge unknown source = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge unknown target = %v, want ErrUnknownTargetNode", err)
	}

	if children := g.Children("a"); len(children) != 1 || children[0] != "b" {
		t.Errorf("Children(a) = %v, want [b]", children)
	}
	if parents := g.Parents("b"); len(parents) != 1 || parents[0] != "a" {
		t.Errorf("Parents(b) = %v, want [a]", parents)
	}
}

func TestGraph_NodesOrdering(t *testing.T) {
	g := New()
	ids := []string{"zlib", "alpha", "middle"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id, Kind: KindPackage})
	}
	nodes := g.Nodes()
	for i, id := range ids {
		if nodes[i].ID != id {
			t.Errorf("Nodes()[%d] = %q, want %q (insertion order)", i, nodes[i].ID, id)
		}
	}
}

func TestGraph_FindCycle(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(Node{ID: id, Kind: KindFile})
	}
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})
	_ = g.AddEdge(Edge{From: "c", To: "d"})

	if cycle := g.FindCycle(); cycle != nil {
		t.Errorf("FindCycle on acyclic graph = %v, want nil", cycle)
	}

	_ = g.AddEdge(Edge{From: "d", To: "b"})
	cycle := g.FindCycle()
	if cycle == nil {
		t.Fatal("FindCycle = nil, want a cycle")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle %v does not start and end with the same node", cycle)
	}
	if len(cycle) != 4 { // b -> c -> d -> b
		t.Errorf("cycle %v has length %d, want 4", cycle, len(cycle))
	}
}
