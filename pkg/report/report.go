// Package report provides JSON export for parse results, lint reports,
// and verification runs, plus import of previously exported graphs.
//
// The JSON formats are stable so external tooling (CI annotations,
// dashboards) can consume them. Graph exports round-trip through
// [ReadGraphJSON] for re-rendering without re-parsing manifests.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pinfold/pinfold/pkg/lint"
	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/verify"
)

// ParseDocument is the JSON shape of an expanded manifest.
type ParseDocument struct {
	Root         string            `json:"root"`
	Files        []string          `json:"files"`
	Requirements []RequirementJSON `json:"requirements"`
	Problems     []ProblemJSON     `json:"problems,omitempty"`
}

// RequirementJSON is the exported form of a single requirement.
type RequirementJSON struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name,omitempty"`
	Extras     []string `json:"extras,omitempty"`
	Specifiers string   `json:"specifiers,omitempty"`
	Marker     string   `json:"marker,omitempty"`
	URL        string   `json:"url,omitempty"`
	VCS        string   `json:"vcs,omitempty"`
	Ref        string   `json:"ref,omitempty"`
	Constraint bool     `json:"constraint,omitempty"`
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
}

// ProblemJSON is the exported form of a parse problem.
type ProblemJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewParseDocument converts an expanded set to its exported form.
func NewParseDocument(set *manifest.Set) *ParseDocument {
	doc := &ParseDocument{Root: set.Root}
	for _, f := range set.Files {
		doc.Files = append(doc.Files, f.Path)
	}
	for _, req := range set.Requirements {
		doc.Requirements = append(doc.Requirements, RequirementJSON{
			Kind:       req.Kind.String(),
			Name:       req.Name,
			Extras:     req.Extras,
			Specifiers: req.Specifiers.String(),
			Marker:     req.MarkerText,
			URL:        req.URL,
			VCS:        req.VCS,
			Ref:        req.Ref,
			Constraint: req.Constraint,
			File:       req.File,
			Line:       req.Line,
		})
	}
	for _, p := range set.Problems {
		doc.Problems = append(doc.Problems, ProblemJSON{
			File: p.File, Line: p.Line, Code: p.Code, Message: p.Message,
		})
	}
	return doc
}

// WriteParseJSON encodes the expanded set as indented JSON.
func WriteParseJSON(set *manifest.Set, w io.Writer) error {
	return writeJSON(NewParseDocument(set), w)
}

// LintDocument is the JSON shape of a lint run. Roots lists every
// manifest the run covered; a lint command may take several files.
type LintDocument struct {
	Roots    []string       `json:"roots"`
	Findings []lint.Finding `json:"findings"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Infos    int            `json:"infos"`
}

// WriteLintJSON encodes a lint report as indented JSON.
func WriteLintJSON(roots []string, rep *lint.Report, w io.Writer) error {
	errs, warns, infos := rep.Counts()
	return writeJSON(LintDocument{
		Roots:    roots,
		Findings: rep.Findings,
		Errors:   errs,
		Warnings: warns,
		Infos:    infos,
	}, w)
}

// VerifyDocument is the JSON shape of a verification run.
type VerifyDocument struct {
	Root    string          `json:"root"`
	Results []verify.Result `json:"results"`
	Failed  bool            `json:"failed"`
}

// WriteVerifyJSON encodes verification results as indented JSON.
func WriteVerifyJSON(root string, results []verify.Result, w io.Writer) error {
	return writeJSON(VerifyDocument{
		Root:    root,
		Results: results,
		Failed:  verify.Failed(results),
	}, w)
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes any of the package's documents to a file at path.
func ExportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
