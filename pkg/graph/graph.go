// Package graph provides the directed graph used to model manifest
// structure: include edges between requirement files and declaration
// edges from files to the packages they require.
//
// Unlike a general graph library, node and edge ordering is deterministic
// (insertion order) so lint reports and DOT exports are stable across runs.
package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Kind distinguishes the entities a node can represent.
type Kind int

const (
	// KindFile is a requirement file (or pyproject.toml).
	KindFile Kind = iota
	// KindPackage is a declared package.
	KindPackage
)

// Metadata stores arbitrary key-value pairs attached to nodes.
type Metadata map[string]any

// Node is a vertex in the manifest graph.
type Node struct {
	ID   string // unique identifier (file path or package name)
	Kind Kind
	Meta Metadata // never nil after AddNode
}

// Edge is a directed connection: file includes file, or file requires package.
type Edge struct {
	From  string
	To    string
	Label string // e.g. the specifier set or "-r"
}

// Graph is a directed graph keyed by node ID. Adding a node with an
// existing ID merges its metadata instead of failing; manifests routinely
// mention the same package from several files.
//
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string // insertion order of node IDs
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode inserts or updates a node. On update, metadata keys are merged
// and the kind is left unchanged.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if existing, ok := g.nodes[n.ID]; ok {
		for k, v := range n.Meta {
			existing.Meta[k] = v
		}
		return nil
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge connects two existing nodes. Duplicate edges (same From, To,
// and Label) are ignored.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(g.edges, e) {
		return nil
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Children returns the IDs of nodes reachable from id by one edge.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.outgoing[id])
}

// Parents returns the IDs of nodes with an edge into id.
func (g *Graph) Parents(id string) []string {
	return slices.Clone(g.incoming[id])
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// FindCycle returns a node sequence forming a cycle, or nil if the graph
// is acyclic. Detection uses depth-first search with white/gray/black
// coloring; the returned slice starts and ends with the same node.
func (g *Graph) FindCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // fully explored
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string)

	var cycle []string
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				parent[child] = id
				if visit(child) {
					return true
				}
			case gray:
				// Walk back from id to child to materialize the cycle.
				cycle = []string{child}
				for cur := id; cur != child; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, child)
				slices.Reverse(cycle[1 : len(cycle)-1])
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
