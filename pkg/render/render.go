// Package render turns manifest graphs into visual output: Graphviz DOT
// text, and SVG or PNG rendered through Graphviz.
//
// # Usage
//
// Convert a graph to DOT format, then render:
//
//	dot := render.ToDOT(set.Graph, render.Options{})
//	svg, err := render.SVG(ctx, dot)
//	png, err := render.PNG(ctx, dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/pinfold/pinfold/pkg/graph"
)

// Options configures DOT generation.
type Options struct {
	// Labels draws edge labels (specifier sets, -r / -c markers).
	Labels bool
}

// ToDOT converts a manifest graph to Graphviz DOT format. Requirement
// files are drawn as folder shapes, packages as rounded boxes. The
// resulting DOT string can be rendered with [SVG] or [PNG].
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph manifest {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.Labels && e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n", e.From, e.To, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n *graph.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n))}
	if n.Kind == graph.KindFile {
		attrs = append(attrs, "shape=folder", "fillcolor=lightyellow")
	}
	return attrs
}

// nodeLabel shortens file paths to their basename; package nodes keep
// their normalized name.
func nodeLabel(n *graph.Node) string {
	if n.Kind != graph.KindFile {
		return n.ID
	}
	if i := strings.LastIndexByte(n.ID, '/'); i >= 0 {
		return n.ID[i+1:]
	}
	return n.ID
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the viewBox starts at the
// origin, which keeps embedding in HTML predictable across Graphviz versions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
