// Package manifest parses pip-style requirement manifests.
//
// A manifest is a text file with one requirement per line: a package name
// with optional extras, version specifiers, and an environment marker
// after a semicolon; or a direct URL / VCS reference; or a directive such
// as -r (include another requirements file), -c (constraints file), and
// -e (editable install). Comments start with # and lines may continue
// with a trailing backslash.
//
// [ParseFile] reads a single file; [Expand] follows -r/-c includes and
// produces the flattened requirement set plus the include graph that the
// lint and render layers consume.
package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pinfold/pinfold/pkg/marker"
	"github.com/pinfold/pinfold/pkg/pep440"
)

// Kind classifies a requirement line.
type Kind int

const (
	// KindNamed is a registry requirement like "requests>=2.28".
	KindNamed Kind = iota
	// KindURL is a direct reference: "name @ url" or a bare VCS URL.
	KindURL
	// KindEditable is an editable install (-e path-or-url).
	KindEditable
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindURL:
		return "url"
	case KindEditable:
		return "editable"
	default:
		return "unknown"
	}
}

// Requirement is a single parsed requirement with its source position.
type Requirement struct {
	Kind       Kind
	Name       string // normalized per PEP 503; may be empty for URL/editable refs
	RawName    string // name as written
	Extras     []string
	Specifiers pep440.SpecifierSet
	Marker     *marker.Marker // nil when the line has no marker
	MarkerText string

	URL string // direct or VCS URL (KindURL/KindEditable)
	VCS string // "git", "hg", "svn", "bzr" for VCS URLs
	Ref string // revision from the @ref URL suffix

	Hashes     []string // --hash=algo:digest options on the line
	Constraint bool     // declared in a constraints (-c) context

	File string
	Line int
	Raw  string
}

// DisplayName returns the best available identifier for reports: the
// normalized name, or the URL for anonymous references.
func (r *Requirement) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.URL
}

// Pinned reports whether the requirement pins an exact version.
func (r *Requirement) Pinned() bool {
	return r.Specifiers.Pin() != nil
}

// normalizeRE collapses runs of the permitted separator characters.
var normalizeRE = regexp.MustCompile(`[-_.]+`)

// NormalizeName normalizes a package name per PEP 503: case-fold and
// collapse runs of "-", "_", "." into a single hyphen.
func NormalizeName(name string) string {
	return strings.ToLower(normalizeRE.ReplaceAllString(name, "-"))
}

// nameRE matches a package name with optional extras at the start of a
// requirement line.
var nameRE = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?`)

var vcsSchemes = []string{"git", "hg", "svn", "bzr"}

// ParseRequirement parses a single requirement line (without directives
// or comments, which [ParseFile] strips beforehand).
func ParseRequirement(line string) (*Requirement, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return nil, fmt.Errorf("empty requirement")
	}

	req := &Requirement{Raw: raw}
	rest, markerText := splitMarker(raw)
	if markerText != "" {
		m, err := marker.Parse(markerText)
		if err != nil {
			return nil, err
		}
		req.Marker = m
		req.MarkerText = m.Text()
	}
	rest = strings.TrimSpace(rest)

	switch {
	case isVCSURL(rest):
		return parseVCSURL(req, rest)
	case strings.Contains(rest, "://"):
		return parsePlainURL(req, rest)
	default:
		return parseNamed(req, rest)
	}
}

// splitMarker separates the marker from the requirement proper. For URL
// requirements the semicolon must be preceded by whitespace (URLs can
// contain semicolons); plain requirements split at the first semicolon.
func splitMarker(line string) (rest, markerText string) {
	if strings.Contains(line, "://") || strings.Contains(line, " @ ") {
		if i := strings.Index(line, " ;"); i >= 0 {
			return line[:i], strings.TrimSpace(line[i+2:])
		}
		return line, ""
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

func isVCSURL(s string) bool {
	for _, scheme := range vcsSchemes {
		if strings.HasPrefix(s, scheme+"+") {
			return true
		}
	}
	return false
}

// parseVCSURL handles bare VCS references like
// git+https://github.com/user/repo.git@v1.2#egg=name&subdirectory=sub.
func parseVCSURL(req *Requirement, s string) (*Requirement, error) {
	req.Kind = KindURL
	req.VCS = s[:strings.Index(s, "+")]
	req.URL = s

	base := s
	if i := strings.IndexByte(base, '#'); i >= 0 {
		fragment := base[i+1:]
		base = base[:i]
		for _, part := range strings.Split(fragment, "&") {
			if name, ok := strings.CutPrefix(part, "egg="); ok {
				req.RawName = name
				req.Name = NormalizeName(name)
			}
		}
	}

	// The revision follows the last @ after the path starts; git+ssh URLs
	// contain a user@host @ that must not be mistaken for a ref.
	if slash := strings.LastIndexByte(base, '/'); slash >= 0 {
		if at := strings.LastIndexByte(base[slash:], '@'); at >= 0 {
			req.Ref = base[slash+at+1:]
		}
	}
	return req, nil
}

// parsePlainURL handles "name @ url" and bare archive URLs.
func parsePlainURL(req *Requirement, s string) (*Requirement, error) {
	req.Kind = KindURL
	if at := strings.Index(s, " @ "); at >= 0 {
		namePart := strings.TrimSpace(s[:at])
		m := nameRE.FindStringSubmatch(namePart)
		if m == nil || m[0] != namePart {
			return nil, fmt.Errorf("invalid requirement %q: bad name before @", s)
		}
		req.RawName = m[1]
		req.Name = NormalizeName(m[1])
		req.Extras = splitExtras(m[2])
		req.URL = strings.TrimSpace(s[at+3:])
	} else {
		req.URL = s
	}
	if req.URL == "" {
		return nil, fmt.Errorf("invalid requirement %q: empty URL", s)
	}
	return req, nil
}

// parseNamed handles ordinary registry requirements:
// name[extras] specifiers, with optional legacy parentheses around the
// specifier set.
func parseNamed(req *Requirement, s string) (*Requirement, error) {
	m := nameRE.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid requirement %q: expected package name", s)
	}
	req.Kind = KindNamed
	req.RawName = m[1]
	req.Name = NormalizeName(m[1])
	req.Extras = splitExtras(m[2])

	rest := strings.TrimSpace(s[len(m[0]):])
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	if rest != "" {
		set, err := pep440.ParseSpecifierSet(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid requirement %q: %w", s, err)
		}
		req.Specifiers = set
	}
	return req, nil
}

func splitExtras(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, NormalizeName(p))
		}
	}
	return out
}
