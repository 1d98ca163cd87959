// Package lint checks parsed requirement sets for defects: syntax
// problems, conflicting version ranges for the same package, and
// environment-marker splits that overlap or leave a platform uncovered.
//
// [Run] applies every rule to a [manifest.Set] and returns a [Report].
// Findings carry a stable rule ID, a severity, and the source position
// of the offending declaration, so they can drive both terminal output
// and machine-readable reports.
package lint

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/observability"
)

// Severity ranks a finding.
type Severity int

const (
	// SeverityInfo is advisory (e.g. an unpinned dependency).
	SeverityInfo Severity = iota
	// SeverityWarning is a likely mistake that does not break installs.
	SeverityWarning
	// SeverityError is a defect: the manifest is malformed or unsatisfiable.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name ("info", "warning", "error")
// back to its value, for flags and config files.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return 0, fmt.Errorf("unknown severity %q (valid: info, warning, error)", s)
}

// Rule IDs, used in findings and in [Config.Disable].
const (
	RuleSyntax         = "syntax"
	RuleInvalidMarker  = "invalid-marker"
	RuleIncludeMissing = "include-missing"
	RuleIncludeCycle   = "include-cycle"
	RuleConflict       = "conflict"
	RuleDuplicate      = "duplicate"
	RuleMarkerOverlap  = "marker-overlap"
	RuleMarkerGap      = "marker-gap"
	RuleVCSNoRef       = "vcs-no-ref"
	RuleUnpinned       = "unpinned"
)

// Finding is a single lint result.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Package  string   `json:"package,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	pos := f.File
	if f.Line > 0 {
		pos = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return fmt.Sprintf("%s: %s: [%s] %s", pos, f.Severity, f.Rule, f.Message)
}

// Config tunes which rules run.
type Config struct {
	// Disable lists rule IDs to skip.
	Disable []string

	// Unpinned enables the advisory rule flagging dependencies without an
	// exact == pin. Off by default; most manifests use ranges on purpose.
	Unpinned bool
}

func (c Config) enabled(rule string) bool {
	if rule == RuleUnpinned && !c.Unpinned {
		return false
	}
	for _, d := range c.Disable {
		if d == rule {
			return false
		}
	}
	return true
}

// Report is the outcome of a lint run.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Counts returns the number of findings per severity.
func (r *Report) Counts() (errors, warnings, infos int) {
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

// HasErrors reports whether any finding has error severity. Commands use
// this for their exit status unless a lower threshold is configured.
func (r *Report) HasErrors() bool {
	return r.HasSeverity(SeverityError)
}

// Sort orders the findings by file, line, rule, then message. Run
// returns sorted reports; callers merging several runs re-sort.
func (r *Report) Sort() {
	sortFindings(r.Findings)
}

// HasSeverity reports whether any finding ranks at or above min.
func (r *Report) HasSeverity(min Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= min {
			return true
		}
	}
	return false
}

// Run applies all enabled rules to the set.
func Run(set *manifest.Set, cfg Config) *Report {
	observability.Lint().OnRunStart(context.Background(), set.Root, len(set.Requirements))
	start := time.Now()

	l := &linter{set: set, cfg: cfg}

	l.problemFindings()
	l.requirementFindings()

	groups := set.ByName()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l.conflictFindings(name, groups[name])
		l.duplicateFindings(name, groups[name])
		l.partitionFindings(name, groups[name])
	}
	// Platform splits can hide behind a name suffix instead of a pair
	// of markers on one name.
	for _, name := range names {
		if base := variantBase(name); base != "" {
			if baseReqs, ok := groups[base]; ok {
				l.variantFindings(base, name, baseReqs, groups[name])
			}
		}
	}

	sortFindings(l.findings)
	rep := &Report{Findings: l.findings}

	errs, warns, infos := rep.Counts()
	observability.Lint().OnRunComplete(context.Background(), set.Root, errs, warns, infos, time.Since(start))
	return rep
}

type linter struct {
	set      *manifest.Set
	cfg      Config
	findings []Finding
}

func (l *linter) add(f Finding) {
	if l.cfg.enabled(f.Rule) {
		l.findings = append(l.findings, f)
	}
}

// sortFindings orders by file, line, rule, then message for stable output.
func sortFindings(fs []Finding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}

// problemFindings converts parse-time problems into findings. Marker
// parse failures get their own rule ID so they can be disabled apart
// from general syntax errors.
func (l *linter) problemFindings() {
	for _, p := range l.set.Problems {
		rule := p.Code
		if p.Code == "syntax" && strings.Contains(p.Message, "invalid marker") {
			rule = RuleInvalidMarker
		}
		l.add(Finding{
			Rule:     rule,
			Severity: SeverityError,
			File:     p.File,
			Line:     p.Line,
			Message:  p.Message,
		})
	}
}

// requirementFindings applies the per-requirement rules.
func (l *linter) requirementFindings() {
	for _, req := range l.set.Requirements {
		if req.VCS != "" && req.Ref == "" {
			l.add(Finding{
				Rule:     RuleVCSNoRef,
				Severity: SeverityWarning,
				File:     req.File,
				Line:     req.Line,
				Package:  req.DisplayName(),
				Message:  fmt.Sprintf("%s URL has no pinned revision; builds are not reproducible", req.VCS),
			})
		}
		if req.Kind == manifest.KindNamed && !req.Constraint && !req.Pinned() {
			l.add(Finding{
				Rule:     RuleUnpinned,
				Severity: SeverityInfo,
				File:     req.File,
				Line:     req.Line,
				Package:  req.Name,
				Message:  fmt.Sprintf("%s is not pinned to an exact version", req.DisplayName()),
			})
		}
	}
}
