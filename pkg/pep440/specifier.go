package pep440

import (
	"fmt"
	"strings"
)

// Operator identifies a version clause comparator.
type Operator string

// Supported clause operators.
const (
	OpCompatible Operator = "~="  // compatible release
	OpEqual      Operator = "=="  // version matching (supports trailing .*)
	OpNotEqual   Operator = "!="  // version exclusion (supports trailing .*)
	OpLessEq     Operator = "<="
	OpGreaterEq  Operator = ">="
	OpLess       Operator = "<"
	OpGreater    Operator = ">"
	OpArbitrary  Operator = "===" // arbitrary string equality
)

// Specifier is a single version clause such as ">=2.28.0" or "==1.4.*".
type Specifier struct {
	Op       Operator
	Version  *Version // nil only for OpArbitrary
	Wildcard bool     // trailing .* (OpEqual/OpNotEqual only)
	Text     string   // version text as written (used by OpArbitrary)
}

// operators ordered longest-first so "===" is not read as "==".
var operators = []Operator{OpArbitrary, OpCompatible, OpEqual, OpNotEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater}

// ParseSpecifier parses a single clause like ">= 1.2" or "==1.4.*".
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	var op Operator
	for _, cand := range operators {
		if strings.HasPrefix(s, string(cand)) {
			op = cand
			break
		}
	}
	if op == "" {
		return Specifier{}, fmt.Errorf("invalid specifier %q: missing operator", s)
	}

	text := strings.TrimSpace(s[len(op):])
	if text == "" {
		return Specifier{}, fmt.Errorf("invalid specifier %q: missing version", s)
	}

	spec := Specifier{Op: op, Text: text}
	if op == OpArbitrary {
		return spec, nil
	}

	vt := text
	if strings.HasSuffix(vt, ".*") {
		if op != OpEqual && op != OpNotEqual {
			return Specifier{}, fmt.Errorf("invalid specifier %q: .* only valid with == and !=", s)
		}
		spec.Wildcard = true
		vt = strings.TrimSuffix(vt, ".*")
	}

	v, err := Parse(vt)
	if err != nil {
		return Specifier{}, fmt.Errorf("invalid specifier %q: %w", s, err)
	}
	if op == OpCompatible && len(v.Release) < 2 {
		return Specifier{}, fmt.Errorf("invalid specifier %q: ~= requires at least two release components", s)
	}
	if spec.Wildcard && (v.Pre != nil || v.Post != nil || v.Dev != nil || v.Local != "") {
		return Specifier{}, fmt.Errorf("invalid specifier %q: .* must follow a release segment", s)
	}
	spec.Version = v
	return spec, nil
}

// String returns the canonical clause text.
func (s Specifier) String() string {
	if s.Op == OpArbitrary {
		return string(s.Op) + s.Text
	}
	out := string(s.Op) + s.Version.String()
	if s.Wildcard {
		out += ".*"
	}
	return out
}

// Match reports whether v satisfies the clause.
//
// Equality comparisons pad the shorter release with zeros, so "==1.1"
// matches "1.1.0". Local segments are ignored unless the clause itself
// carries one. Ordered comparisons use the full PEP 440 ordering.
func (s Specifier) Match(v *Version) bool {
	switch s.Op {
	case OpArbitrary:
		return strings.EqualFold(strings.TrimPrefix(v.Original(), "v"), strings.TrimPrefix(s.Text, "v"))
	case OpEqual:
		if s.Wildcard {
			return s.prefixMatch(v)
		}
		return s.equalMatch(v)
	case OpNotEqual:
		if s.Wildcard {
			return !s.prefixMatch(v)
		}
		return !s.equalMatch(v)
	case OpCompatible:
		// ~= X.Y.Z is shorthand for >= X.Y.Z, == X.Y.*
		lower := Specifier{Op: OpGreaterEq, Version: s.Version}
		upper := Specifier{Op: OpEqual, Version: s.compatiblePrefix(), Wildcard: true}
		return lower.Match(v) && upper.Match(v)
	case OpLessEq:
		return v.WithoutLocal().Compare(s.Version) <= 0
	case OpGreaterEq:
		return v.WithoutLocal().Compare(s.Version) >= 0
	case OpLess:
		return v.WithoutLocal().Compare(s.Version) < 0
	case OpGreater:
		return v.WithoutLocal().Compare(s.Version) > 0
	}
	return false
}

func (s Specifier) equalMatch(v *Version) bool {
	a, b := v, s.Version
	if b.Local == "" {
		a = a.WithoutLocal()
	}
	// Zero-pad the shorter release.
	n := max(len(a.Release), len(b.Release))
	ac, bc := *a, *b
	ac.Release = a.truncatedRelease(n)
	bc.Release = b.truncatedRelease(n)
	return ac.Compare(&bc) == 0
}

// prefixMatch implements "==X.Y.*": epoch must match and the candidate's
// release must start with the clause's release components.
func (s Specifier) prefixMatch(v *Version) bool {
	if v.Epoch != s.Version.Epoch {
		return false
	}
	want := s.Version.Release
	got := v.truncatedRelease(max(len(want), len(v.Release)))
	for i, w := range want {
		if got[i] != w {
			return false
		}
	}
	return true
}

// compatiblePrefix returns the version with the last release component
// dropped, which forms the upper prefix bound of a ~= clause.
func (s Specifier) compatiblePrefix() *Version {
	prefix := *s.Version
	prefix.Release = s.Version.Release[:len(s.Version.Release)-1]
	prefix.Pre, prefix.Post, prefix.Dev, prefix.Local = nil, nil, nil, ""
	return &prefix
}

// SpecifierSet is a conjunction of clauses, e.g. ">=2.8,!=3.0.*,<4".
type SpecifierSet []Specifier

// ParseSpecifierSet parses a comma-separated clause list. The empty string
// parses to an empty set, which matches every version.
func ParseSpecifierSet(s string) (SpecifierSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var set SpecifierSet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			return nil, fmt.Errorf("invalid specifier set %q: empty clause", s)
		}
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	return set, nil
}

// String returns the canonical comma-joined form.
func (ss SpecifierSet) String() string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Match reports whether v satisfies every clause in the set.
func (ss SpecifierSet) Match(v *Version) bool {
	for _, s := range ss {
		if !s.Match(v) {
			return false
		}
	}
	return true
}

// Pin returns the exactly pinned version if the set contains an "=="
// clause without a wildcard, or nil.
func (ss SpecifierSet) Pin() *Version {
	for _, s := range ss {
		if s.Op == OpEqual && !s.Wildcard {
			return s.Version
		}
	}
	return nil
}

// Intersects reports whether some version can satisfy both sets.
//
// Exact pins (== or ===) are checked against every clause of the other
// set. Otherwise the sets are reduced to an interval from their ordered
// clauses and the interval is tested for emptiness, including exclusion
// by != clauses. The check is conservative for pathological combinations
// of wildcard exclusions: when in doubt it reports an intersection.
func (ss SpecifierSet) Intersects(other SpecifierSet) bool {
	all := make(SpecifierSet, 0, len(ss)+len(other))
	all = append(all, ss...)
	all = append(all, other...)

	// Arbitrary equality: every === must agree, then the pinned text must
	// satisfy the remaining clauses if it parses as a version.
	var arbitrary []Specifier
	for _, s := range all {
		if s.Op == OpArbitrary {
			arbitrary = append(arbitrary, s)
		}
	}
	if len(arbitrary) > 0 {
		for _, s := range arbitrary[1:] {
			if !strings.EqualFold(s.Text, arbitrary[0].Text) {
				return false
			}
		}
		v, err := Parse(arbitrary[0].Text)
		if err != nil {
			return true // not a PEP 440 version; cannot compare further
		}
		return matchAllExcept(all, v, OpArbitrary)
	}

	// Exact pin: the pinned version must satisfy everything else.
	for _, s := range all {
		if s.Op == OpEqual && !s.Wildcard {
			return all.Match(s.Version)
		}
	}

	lo, hi := intervalOf(all)
	if lo != nil && hi != nil {
		c := lo.v.Compare(hi.v)
		if c > 0 {
			return false
		}
		if c == 0 {
			if !lo.inclusive || !hi.inclusive {
				return false
			}
			// Single admissible point; it must survive the exclusions.
			return all.Match(lo.v)
		}
	}

	// A wildcard exclusion can empty the interval when the interval sits
	// entirely inside the excluded prefix range.
	for _, s := range all {
		if s.Op == OpNotEqual && s.Wildcard && lo != nil && hi != nil {
			exLo, exHi := wildcardRange(s.Version)
			below := lo.v.Compare(exLo) >= 0
			above := hi.v.Compare(exHi) < 0 || (hi.v.Compare(exHi) == 0 && !hi.inclusive)
			if below && above {
				return false
			}
		}
	}
	return true
}

type bound struct {
	v         *Version
	inclusive bool
}

// intervalOf folds ordered clauses (and the interval forms of ~= and
// ==X.*) into a lower and upper bound. Either bound may be nil.
func intervalOf(set SpecifierSet) (lo, hi *bound) {
	tightenLo := func(b bound) {
		if lo == nil || b.v.Compare(lo.v) > 0 || (b.v.Compare(lo.v) == 0 && !b.inclusive) {
			lo = &b
		}
	}
	tightenHi := func(b bound) {
		if hi == nil || b.v.Compare(hi.v) < 0 || (b.v.Compare(hi.v) == 0 && !b.inclusive) {
			hi = &b
		}
	}

	for _, s := range set {
		switch s.Op {
		case OpGreaterEq:
			tightenLo(bound{s.Version, true})
		case OpGreater:
			tightenLo(bound{s.Version, false})
		case OpLessEq:
			tightenHi(bound{s.Version, true})
		case OpLess:
			tightenHi(bound{s.Version, false})
		case OpCompatible:
			tightenLo(bound{s.Version, true})
			_, upper := wildcardRange(s.compatiblePrefix())
			tightenHi(bound{upper, false})
		case OpEqual:
			if s.Wildcard {
				lower, upper := wildcardRange(s.Version)
				tightenLo(bound{lower, true})
				tightenHi(bound{upper, false})
			}
		}
	}
	return lo, hi
}

// wildcardRange returns the half-open range [X, X+1) covered by the
// release prefix X, e.g. 1.4 -> [1.4, 1.5).
func wildcardRange(prefix *Version) (lower, upper *Version) {
	lower = prefix
	bumped := make([]int, len(prefix.Release))
	copy(bumped, prefix.Release)
	bumped[len(bumped)-1]++
	upper = &Version{Epoch: prefix.Epoch, Release: bumped}
	return lower, upper
}

func matchAllExcept(set SpecifierSet, v *Version, skip Operator) bool {
	for _, s := range set {
		if s.Op == skip {
			continue
		}
		if !s.Match(v) {
			return false
		}
	}
	return true
}

// Conflicts reports whether the two sets cannot be satisfied by any
// single version. It is the negation of [SpecifierSet.Intersects], kept
// for readable call sites in lint rules.
func (ss SpecifierSet) Conflicts(other SpecifierSet) bool {
	return !ss.Intersects(other)
}
