// Package verify checks declared requirements against the PyPI registry:
// every named package must exist and its specifier set must match at
// least one released version.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/pep440"
	"github.com/pinfold/pinfold/pkg/registry"
	"github.com/pinfold/pinfold/pkg/registry/pypi"
)

// Fetcher is the registry lookup verify depends on. *pypi.Client
// implements it.
type Fetcher interface {
	FetchPackage(ctx context.Context, pkg string, refresh bool) (*pypi.PackageInfo, error)
}

// Status classifies the outcome for one requirement.
type Status string

const (
	// StatusOK means the package exists and the specifiers are satisfiable.
	StatusOK Status = "ok"
	// StatusNotFound means the registry has no such package.
	StatusNotFound Status = "not-found"
	// StatusNoMatch means no released version satisfies the specifiers.
	StatusNoMatch Status = "no-match"
	// StatusSkipped marks URL and editable requirements, which have no
	// registry entry to check.
	StatusSkipped Status = "skipped"
	// StatusError means the registry could not be reached.
	StatusError Status = "error"
)

// Result is the verification outcome for a single requirement.
type Result struct {
	Name     string `json:"name"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Latest   string `json:"latest,omitempty"`   // latest version per the registry
	Matching int    `json:"matching,omitempty"` // released versions satisfying the specifiers
}

// Options tunes a verification run.
type Options struct {
	Refresh bool // bypass the response cache
}

// Run verifies every requirement in the set against the registry.
// Results come back in declaration order. Network failures mark the
// affected requirement as [StatusError] rather than aborting the run.
func Run(ctx context.Context, client Fetcher, set *manifest.Set, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(set.Requirements))
	infos := make(map[string]*pypi.PackageInfo)

	for _, req := range set.Requirements {
		res := Result{Name: req.DisplayName(), File: req.File, Line: req.Line}

		if req.Kind != manifest.KindNamed {
			res.Status = StatusSkipped
			res.Message = fmt.Sprintf("%s requirement; registry lookup not applicable", req.Kind)
			results = append(results, res)
			continue
		}

		info, ok := infos[req.Name]
		if !ok {
			var err error
			info, err = client.FetchPackage(ctx, req.Name, opts.Refresh)
			switch {
			case errors.Is(err, registry.ErrNotFound):
				info = nil
			case err != nil:
				if ctx.Err() != nil {
					return results, ctx.Err()
				}
				res.Status = StatusError
				res.Message = err.Error()
				results = append(results, res)
				continue
			}
			infos[req.Name] = info
		}

		if info == nil {
			res.Status = StatusNotFound
			res.Message = fmt.Sprintf("package %s not found on the registry", req.Name)
			results = append(results, res)
			continue
		}

		res.Latest = info.Version
		res.Matching = countMatching(req.Specifiers, info.Versions)
		if len(req.Specifiers) > 0 && res.Matching == 0 {
			res.Status = StatusNoMatch
			res.Message = fmt.Sprintf("no released version of %s satisfies %s", req.Name, req.Specifiers)
		} else {
			res.Status = StatusOK
		}
		results = append(results, res)
	}
	return results, nil
}

func countMatching(set pep440.SpecifierSet, versions []string) int {
	n := 0
	for _, raw := range versions {
		v, err := pep440.Parse(raw)
		if err != nil {
			continue
		}
		if set.Match(v) {
			n++
		}
	}
	return n
}

// Failed reports whether any result indicates a broken requirement.
// [StatusError] does not count: a registry that could not be reached
// says nothing about the manifest, so network failures degrade to
// warnings in the output instead of failing the run.
func Failed(results []Result) bool {
	for _, r := range results {
		switch r.Status {
		case StatusNotFound, StatusNoMatch:
			return true
		}
	}
	return false
}
