// Package pkg provides the core libraries for pinfold manifest analysis.
//
// # Overview
//
// pinfold parses pip-style requirement manifests, lints them for
// conflicts and environment-marker defects, and verifies declarations
// against PyPI. The pkg directory is organized into five main areas:
//
//  1. Parsing - [manifest], [pep440], and [marker] (requirement lines,
//     version specifiers, environment markers)
//  2. Analysis - [lint] and [verify] (rules over a parsed set, registry checks)
//  3. Infrastructure - [cache], [httputil], [registry], and [observability]
//  4. Output - [render], [report], and [graph]
//  5. Serving - [server] (the HTTP API)
//
// # Architecture
//
// The typical data flow through pinfold:
//
//	requirements.txt / pyproject.toml
//	         ↓
//	    [manifest] package (parse lines, expand -r/-c includes)
//	         ↓
//	    [lint] package (conflicts, duplicates, marker partitions)
//	    [verify] package (existence and satisfiability on PyPI)
//	         ↓
//	    [report] / [render] packages (JSON documents, DOT/SVG/PNG graphs)
//
// # Quick Start
//
// Expand and lint a manifest:
//
//	set, err := manifest.Expand("requirements.txt")
//	if err != nil {
//	    return err
//	}
//	rep := lint.Run(set, lint.Config{})
//	for _, f := range rep.Findings {
//	    fmt.Println(f)
//	}
//
// Verify it against PyPI with a file-backed cache:
//
//	backend, _ := cache.Open(ctx, dir)
//	client := pypi.NewClient(backend, 24*time.Hour)
//	results, err := verify.Run(ctx, client, set, verify.Options{})
package pkg
