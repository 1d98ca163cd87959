package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pinfold/pinfold/pkg/graph"
)

var kindToString = map[graph.Kind]string{
	graph.KindFile:    "file",
	graph.KindPackage: "package",
}

var kindFromString = map[string]graph.Kind{
	"file":    graph.KindFile,
	"package": graph.KindPackage,
}

type graphDoc struct {
	Nodes []nodeDoc `json:"nodes"`
	Edges []edgeDoc `json:"edges"`
}

type nodeDoc struct {
	ID   string         `json:"id"`
	Kind string         `json:"kind,omitempty"`
	Meta graph.Metadata `json:"meta,omitempty"`
}

type edgeDoc struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// WriteGraphJSON encodes a manifest graph as JSON. The output includes
// all nodes (with kind and metadata) and edges, and can be re-imported
// with [ReadGraphJSON] for round-trip processing.
func WriteGraphJSON(g *graph.Graph, w io.Writer) error {
	out := graphDoc{
		Nodes: make([]nodeDoc, 0, g.NodeCount()),
		Edges: make([]edgeDoc, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		nd := nodeDoc{ID: n.ID, Kind: kindToString[n.Kind]}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edgeDoc{From: e.From, To: e.To, Label: e.Label})
	}
	return writeJSON(out, w)
}

// ReadGraphJSON decodes a JSON graph from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays. Each
// node needs an "id"; "kind" is "file" or "package" (defaulting to file).
// Edges reference node IDs and may carry a label.
func ReadGraphJSON(r io.Reader) (*graph.Graph, error) {
	var data graphDoc
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := graph.New()
	for _, n := range data.Nodes {
		nd := graph.Node{ID: n.ID, Meta: n.Meta}
		if k, ok := kindFromString[n.Kind]; ok {
			nd.Kind = k
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(graph.Edge{From: e.From, To: e.To, Label: e.Label}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}
