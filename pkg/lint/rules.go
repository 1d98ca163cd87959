package lint

import (
	"fmt"
	"strings"

	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/marker"
)

// conflictFindings flags pairs of declarations whose version ranges
// admit no common version. Pairs whose markers are mutually exclusive
// are fine: "tensorflow==2.6; python_version<'3.10'" and
// "tensorflow==2.9; python_version>='3.10'" never apply together.
func (l *linter) conflictFindings(name string, reqs []*manifest.Requirement) {
	for i := 0; i < len(reqs); i++ {
		for j := i + 1; j < len(reqs); j++ {
			a, b := reqs[i], reqs[j]
			if a.Kind != manifest.KindNamed || b.Kind != manifest.KindNamed {
				continue
			}
			if len(a.Specifiers) == 0 || len(b.Specifiers) == 0 {
				continue
			}
			if a.Marker != nil && b.Marker != nil && marker.Disjoint(a.Marker, b.Marker) {
				continue
			}
			if a.Specifiers.Conflicts(b.Specifiers) {
				l.add(Finding{
					Rule:     RuleConflict,
					Severity: SeverityError,
					File:     b.File,
					Line:     b.Line,
					Package:  name,
					Message: fmt.Sprintf("%s %s conflicts with %s at %s",
						name, b.Specifiers, a.Specifiers, position(a)),
				})
			}
		}
	}
}

// duplicateFindings flags repeated declarations that are not platform
// alternatives. A constraint (-c) entry paired with a regular entry is
// how constraints files work, so those pairs are skipped, as are pairs
// whose ranges conflict: those are the conflict rule's finding.
func (l *linter) duplicateFindings(name string, reqs []*manifest.Requirement) {
	seen := make(map[string]*manifest.Requirement)
	for _, req := range reqs {
		if req.Kind != manifest.KindNamed {
			continue
		}
		key := req.MarkerText
		prev, ok := seen[key]
		if !ok {
			seen[key] = req
			continue
		}
		if prev.Constraint != req.Constraint {
			continue
		}
		if len(prev.Specifiers) > 0 && len(req.Specifiers) > 0 && prev.Specifiers.Conflicts(req.Specifiers) {
			continue
		}
		l.add(Finding{
			Rule:     RuleDuplicate,
			Severity: SeverityWarning,
			File:     req.File,
			Line:     req.Line,
			Package:  name,
			Message:  fmt.Sprintf("%s already declared at %s", name, position(prev)),
		})
	}
}

// partitionFindings checks groups of marked declarations that split one
// package across platforms, like the pycocotools Windows/non-Windows
// pair. The split must be mutually exclusive (no environment installs
// two variants) and, when the split variable has a closed value set,
// exhaustive (no platform gets nothing).
func (l *linter) partitionFindings(name string, reqs []*manifest.Requirement) {
	var marked []*manifest.Requirement
	for _, req := range reqs {
		if req.Kind == manifest.KindNamed && req.Marker != nil && !req.Constraint {
			marked = append(marked, req)
		}
	}
	if len(marked) < 2 {
		return
	}

	markers := make([]*marker.Marker, len(marked))
	for i, req := range marked {
		markers[i] = req.Marker
	}

	variable := marker.SplitsOn(markers)
	if variable == "" || variable == "extra" {
		return
	}

	for i := 0; i < len(marked); i++ {
		for j := i + 1; j < len(marked); j++ {
			if !marker.Disjoint(marked[i].Marker, marked[j].Marker) {
				l.add(Finding{
					Rule:     RuleMarkerOverlap,
					Severity: SeverityError,
					File:     marked[j].File,
					Line:     marked[j].Line,
					Package:  name,
					Message: fmt.Sprintf("marker %q overlaps %q at %s; some environments install both variants of %s",
						marked[j].MarkerText, marked[i].MarkerText, position(marked[i]), name),
				})
			}
		}
	}

	domain, ok := marker.Domains[variable]
	if !ok {
		return
	}
	// An unmarked sibling declaration covers every environment already.
	for _, req := range reqs {
		if req.Kind == manifest.KindNamed && req.Marker == nil {
			return
		}
	}
	if !marker.CoversDomain(markers, variable, domain) {
		l.add(Finding{
			Rule:     RuleMarkerGap,
			Severity: SeverityWarning,
			File:     marked[0].File,
			Line:     marked[0].Line,
			Package:  name,
			Message: fmt.Sprintf("markers on %s split on %s but leave some %s values without any variant",
				name, variable, variable),
		})
	}
}

// platformSuffixes mark a package name as a platform-specific build of
// a sibling package, like pycocotools-windows next to pycocotools.
var platformSuffixes = []string{"-windows", "-win32", "-linux", "-macos"}

// variantBase returns the sibling name a platform-suffixed package
// splits from, or "" when the name carries no platform suffix.
func variantBase(name string) string {
	for _, suffix := range platformSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && base != "" {
			return base
		}
	}
	return ""
}

// variantFindings applies the overlap and gap checks across a platform
// split expressed as two package names instead of two markers on one
// name. Exactly one of the siblings should apply in any environment.
func (l *linter) variantFindings(base, variant string, baseReqs, variantReqs []*manifest.Requirement) {
	baseNamed := namedRequirements(baseReqs)
	variantNamed := namedRequirements(variantReqs)
	if len(baseNamed) == 0 || len(variantNamed) == 0 {
		return
	}

	for _, b := range baseNamed {
		for _, v := range variantNamed {
			if b.Marker == nil || v.Marker == nil || !marker.Disjoint(b.Marker, v.Marker) {
				l.add(Finding{
					Rule:     RuleMarkerOverlap,
					Severity: SeverityError,
					File:     v.File,
					Line:     v.Line,
					Package:  variant,
					Message: fmt.Sprintf("some environments install both %s at %s and %s",
						base, position(b), variant),
				})
			}
		}
	}

	markers := make([]*marker.Marker, 0, len(baseNamed)+len(variantNamed))
	for _, req := range baseNamed {
		if req.Marker == nil {
			return
		}
		markers = append(markers, req.Marker)
	}
	for _, req := range variantNamed {
		if req.Marker == nil {
			return
		}
		markers = append(markers, req.Marker)
	}

	variable := marker.SplitsOn(markers)
	if variable == "" || variable == "extra" {
		return
	}
	domain, ok := marker.Domains[variable]
	if !ok {
		return
	}
	if !marker.CoversDomain(markers, variable, domain) {
		l.add(Finding{
			Rule:     RuleMarkerGap,
			Severity: SeverityWarning,
			File:     baseNamed[0].File,
			Line:     baseNamed[0].Line,
			Package:  base,
			Message: fmt.Sprintf("markers on %s and %s split on %s but leave some %s values without either package",
				base, variant, variable, variable),
		})
	}
}

func namedRequirements(reqs []*manifest.Requirement) []*manifest.Requirement {
	var named []*manifest.Requirement
	for _, req := range reqs {
		if req.Kind == manifest.KindNamed && !req.Constraint {
			named = append(named, req)
		}
	}
	return named
}

func position(req *manifest.Requirement) string {
	if req.Line > 0 {
		return fmt.Sprintf("%s:%d", shortPath(req.File), req.Line)
	}
	return shortPath(req.File)
}

func shortPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
