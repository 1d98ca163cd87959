// Package pep440 implements the Python version grammar used by pip-style
// requirement manifests.
//
// Versions follow the scheme [N!]N(.N)*[{a|b|rc}N][.postN][.devN][+local]
// with the usual spelling normalizations (case folding, "alpha" -> "a",
// "c"/"pre"/"preview" -> "rc", "-N" -> ".postN", an optional "v" prefix).
//
// The package provides a total ordering over versions and an implementation
// of version specifiers (==, !=, <=, >=, <, >, ~=, ===) and comma-separated
// specifier sets, including prefix matching ("==1.4.*") and compatible
// release clauses. Specifier sets can be intersected to detect manifests
// that pin a package into an empty range.
package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionRE matches a normalized-or-sloppy version string. Groups:
// epoch, release, pre letter, pre number, post segment (two spellings),
// dev segment, local segment.
var versionRE = regexp.MustCompile(`(?i)^v?` +
	`(?:(\d+)!)?` + // 1: epoch
	`(\d+(?:\.\d+)*)` + // 2: release
	`(?:[-._]?(a|b|c|rc|alpha|beta|pre|preview)[-._]?(\d+)?)?` + // 3, 4: pre
	`((?:-\d+)|(?:[-._]?(?:post|rev|r)[-._]?\d*))?` + // 5: post
	`([-._]?dev[-._]?\d*)?` + // 6: dev
	`(?:\+([a-z0-9]+(?:[-._][a-z0-9]+)*))?$`) // 7: local

// Version is a parsed PEP 440 version.
//
// The zero value is not meaningful; construct versions with [Parse] or
// [MustParse]. Versions are immutable after construction and safe for
// concurrent reads.
type Version struct {
	Epoch   int
	Release []int // at least one component
	Pre     *Tag  // nil if absent
	Post    *int  // nil if absent
	Dev     *int  // nil if absent
	Local   string

	original string
}

// Tag is a pre-release marker: a normalized letter ("a", "b", or "rc")
// and a number.
type Tag struct {
	Letter string
	Number int
}

// Parse parses a version string. It accepts the normalization variants
// allowed by the grammar (e.g. "1.0-alpha1", "V1.0.post") and returns the
// canonical representation via [Version.String].
func Parse(s string) (*Version, error) {
	s = strings.TrimSpace(s)
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", s)
	}

	v := &Version{original: s}
	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: release component %q", s, part)
		}
		v.Release = append(v.Release, n)
	}
	if m[3] != "" {
		v.Pre = &Tag{Letter: normalizePreLetter(m[3]), Number: atoiOrZero(m[4])}
	}
	if m[5] != "" {
		n := segmentNumber(m[5])
		v.Post = &n
	}
	if m[6] != "" {
		n := segmentNumber(m[6])
		v.Dev = &n
	}
	if m[7] != "" {
		v.Local = strings.ToLower(strings.NewReplacer("-", ".", "_", ".").Replace(m[7]))
	}
	return v, nil
}

// segmentNumber extracts the trailing number from a post/dev segment like
// ".post2", "-1", or "_dev"; a spelled segment with no digits means 0.
func segmentNumber(seg string) int {
	digits := strings.TrimLeftFunc(seg, func(r rune) bool { return r < '0' || r > '9' })
	return atoiOrZero(digits)
}

// MustParse is like [Parse] but panics on error. Intended for constants
// and tests.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s parses as a version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func normalizePreLetter(s string) string {
	switch strings.ToLower(s) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// String returns the canonical form of the version.
func (v *Version) String() string {
	var b strings.Builder
	if v.Epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	for i, r := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", r)
	}
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Letter, v.Pre.Number)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, ".dev%d", *v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}
	return b.String()
}

// Original returns the version string as written in the manifest.
func (v *Version) Original() string { return v.original }

// IsPreRelease reports whether the version has a pre-release or dev segment.
func (v *Version) IsPreRelease() bool { return v.Pre != nil || v.Dev != nil }

// Compare returns -1, 0, or +1 ordering v against o per the PEP 440 rules:
// epoch first, then the release segment (shorter releases padded with
// zeros), then dev < pre < final < post, then the local segment.
func (v *Version) Compare(o *Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}
	if c := cmpRelease(v.Release, o.Release); c != 0 {
		return c
	}
	if c := cmpPre(v, o); c != 0 {
		return c
	}
	if c := cmpOptional(v.Post, o.Post, -1); c != 0 {
		return c
	}
	if c := cmpOptional(v.Dev, o.Dev, 1); c != 0 {
		return c
	}
	return cmpLocal(v.Local, o.Local)
}

// Equal reports whether v and o compare equal (local segments included).
func (v *Version) Equal(o *Version) bool { return v.Compare(o) == 0 }

// Less reports whether v orders before o.
func (v *Version) Less(o *Version) bool { return v.Compare(o) < 0 }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return cmpInt(av, bv)
		}
	}
	return 0
}

// cmpPre orders the pre-release segment. A version with no pre tag but a
// dev tag sorts before any pre-release of the same release; a plain final
// release sorts after any pre-release.
func cmpPre(a, b *Version) int {
	ka, kb := preKey(a), preKey(b)
	if ka.rank != kb.rank {
		return cmpInt(ka.rank, kb.rank)
	}
	if ka.rank != 0 {
		return 0
	}
	if c := strings.Compare(ka.letter, kb.letter); c != 0 {
		return c
	}
	return cmpInt(ka.number, kb.number)
}

type preSortKey struct {
	rank   int // -1 dev-only, 0 pre tag, 1 final
	letter string
	number int
}

func preKey(v *Version) preSortKey {
	switch {
	case v.Pre != nil:
		return preSortKey{rank: 0, letter: v.Pre.Letter, number: v.Pre.Number}
	case v.Post == nil && v.Dev != nil:
		return preSortKey{rank: -1}
	default:
		return preSortKey{rank: 1}
	}
}

// cmpOptional compares optional numeric segments where absence sorts with
// the given sign: -1 means absent < present (post), +1 means absent >
// present (dev).
func cmpOptional(a, b *int, absent int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return absent
	case b == nil:
		return -absent
	default:
		return cmpInt(*a, *b)
	}
}

// cmpLocal compares local version segments: absence sorts first, then
// segment-wise with numeric segments ordering after lexical ones.
func cmpLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				return cmpInt(an, bn)
			}
		case aerr == nil: // numeric > lexical
			return 1
		case berr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}

// WithoutLocal returns a copy of v with the local segment cleared.
func (v *Version) WithoutLocal() *Version {
	if v.Local == "" {
		return v
	}
	c := *v
	c.Local = ""
	return &c
}

// truncatedRelease returns the first n release components, padding with
// zeros if the release is shorter.
func (v *Version) truncatedRelease(n int) []int {
	out := make([]int, n)
	copy(out, v.Release)
	return out
}
