package render

import (
	"strings"
	"testing"

	"github.com/pinfold/pinfold/pkg/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "/tmp/requirements.txt", Kind: graph.KindFile}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "requests", Kind: graph.KindPackage}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(graph.Edge{From: "/tmp/requirements.txt", To: "requests", Label: ">=2.28"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	if !strings.HasPrefix(dot, "digraph manifest {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	if !strings.Contains(dot, `"/tmp/requirements.txt" [label="requirements.txt", shape=folder`) {
		t.Errorf("file node not rendered as folder:\n%s", dot)
	}
	if !strings.Contains(dot, `"requests" [label="requests"]`) {
		t.Errorf("package node missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"/tmp/requirements.txt" -> "requests";`) {
		t.Errorf("edge missing:\n%s", dot)
	}
	if strings.Contains(dot, ">=2.28") {
		t.Error("edge label rendered without Labels option")
	}
}

func TestToDOTWithLabels(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Labels: true})
	if !strings.Contains(dot, `label=">=2.28"`) {
		t.Errorf("edge label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="10.00 5.00 200.00 100.00">body</svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 200.00 100.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="200" height="100"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}

	plain := []byte(`<svg>no viewbox</svg>`)
	if got := string(normalizeViewBox(plain)); got != string(plain) {
		t.Errorf("svg without viewBox modified: %s", got)
	}
}
