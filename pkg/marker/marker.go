// Package marker implements the environment marker language used after the
// semicolon in requirement lines, e.g.
//
//	pycocotools-windows; platform_system == "Windows"
//	defusedxml; python_version >= "3.7" and os_name != "nt"
//
// Markers scope a dependency declaration to specific execution contexts.
// The grammar supports "and"/"or" with the usual precedence, parentheses,
// and comparisons between marker variables and quoted strings using
// ==, !=, <, <=, >, >=, ~=, ===, "in", and "not in".
//
// Beyond evaluation against a concrete [Environment], the package provides
// the satisfiability helpers lint rules need: [Disjoint] decides whether
// two markers can be true in the same environment, and [CoversDomain]
// checks that a set of platform-split alternatives leaves no gap.
package marker

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Known marker variable names.
var knownVariables = map[string]bool{
	"os_name":                        true,
	"sys_platform":                   true,
	"platform_machine":               true,
	"platform_python_implementation": true,
	"platform_release":               true,
	"platform_system":                true,
	"platform_version":               true,
	"python_version":                 true,
	"python_full_version":            true,
	"implementation_name":            true,
	"implementation_version":         true,
	"extra":                          true,
}

// versionVariables are compared with version ordering rather than as strings.
var versionVariables = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
	"platform_release":       false, // kernel strings often aren't versions
}

// Marker is a parsed marker expression.
type Marker struct {
	root expr
	text string
}

// Text returns the marker as written in the manifest.
func (m *Marker) Text() string { return m.text }

// String returns the marker text.
func (m *Marker) String() string { return m.text }

// expr is a node in the marker expression tree.
type expr interface {
	eval(env Environment) (bool, error)
	collectVars(set map[string]bool)
}

// boolOp joins sub-expressions with "and" or "or".
type boolOp struct {
	op    string // "and" or "or"
	terms []expr
}

// comparison is a single `lhs op rhs` test. Either side may be a variable
// or a quoted literal; pip allows both orders.
type comparison struct {
	lhs operand
	op  string
	rhs operand
}

type operand struct {
	value    string
	variable bool // true if value names a marker variable
}

// Parse parses a marker expression.
func Parse(text string) (*Marker, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("invalid marker %q: unexpected %q", text, p.peek().val)
	}
	return &Marker{root: root, text: strings.TrimSpace(text)}, nil
}

// Variables returns the sorted set of variable names the marker references.
func (m *Marker) Variables() []string {
	set := make(map[string]bool)
	m.root.collectVars(set)
	vars := make([]string, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// =============================================================================
// Lexer
// =============================================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	val  string
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("invalid marker %q: unterminated string", s)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("<>=!~", rune(c)):
			j := i
			for j < len(s) && strings.ContainsRune("<>=!~", rune(s[j])) {
				j++
			}
			op := s[i:j]
			switch op {
			case "==", "!=", "<", "<=", ">", ">=", "~=", "===":
			default:
				return nil, fmt.Errorf("invalid marker %q: bad operator %q", s, op)
			}
			toks = append(toks, token{tokOp, op})
			i = j
		case isIdentStart(rune(c)):
			j := i
			for j < len(s) && isIdentRune(rune(s[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("invalid marker %q: unexpected character %q", s, c)
		}
	}
	return toks, nil
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentRune(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' }

// =============================================================================
// Parser
// =============================================================================

type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) acceptIdent(word string) bool {
	if !p.done() && p.peek().kind == tokIdent && p.peek().val == word {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []expr{left}
	for p.acceptIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return &boolOp{op: "or", terms: terms}, nil
}

func (p *parser) parseAnd() (expr, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	terms := []expr{left}
	for p.acceptIdent("and") {
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return &boolOp{op: "and", terms: terms}, nil
}

func (p *parser) parseExpr() (expr, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("invalid marker: missing closing parenthesis")
		}
		p.next()
		return inner, nil
	}

	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseCompareOp()
	if err != nil {
		return nil, err
	}
	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if lhs.variable && rhs.variable {
		return nil, fmt.Errorf("invalid marker: comparison between two variables")
	}
	if !lhs.variable && !rhs.variable {
		return nil, fmt.Errorf("invalid marker: comparison between two literals")
	}
	return &comparison{lhs: lhs, op: op, rhs: rhs}, nil
}

func (p *parser) parseOperand() (operand, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return operand{value: t.val}, nil
	case tokIdent:
		if !knownVariables[t.val] {
			return operand{}, fmt.Errorf("invalid marker: unknown variable %q", t.val)
		}
		return operand{value: t.val, variable: true}, nil
	default:
		return operand{}, fmt.Errorf("invalid marker: expected variable or string, got %q", t.val)
	}
}

func (p *parser) parseCompareOp() (string, error) {
	t := p.peek()
	switch {
	case t.kind == tokOp:
		p.next()
		return t.val, nil
	case t.kind == tokIdent && t.val == "in":
		p.next()
		return "in", nil
	case t.kind == tokIdent && t.val == "not":
		p.next()
		if !p.acceptIdent("in") {
			return "", fmt.Errorf("invalid marker: expected 'in' after 'not'")
		}
		return "not in", nil
	default:
		return "", fmt.Errorf("invalid marker: expected comparison operator, got %q", t.val)
	}
}

func (c *comparison) collectVars(set map[string]bool) {
	if c.lhs.variable {
		set[c.lhs.value] = true
	}
	if c.rhs.variable {
		set[c.rhs.value] = true
	}
}

func (b *boolOp) collectVars(set map[string]bool) {
	for _, t := range b.terms {
		t.collectVars(set)
	}
}
