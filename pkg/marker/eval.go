package marker

import (
	"fmt"
	"strings"

	"github.com/pinfold/pinfold/pkg/pep440"
)

// Environment maps marker variable names to their values for evaluation,
// e.g. {"platform_system": "Linux", "python_version": "3.11"}.
type Environment map[string]string

// DefaultEnvironment returns a representative Linux/CPython environment.
// Lint rules use it as the baseline when the manifest author gave no
// target environment.
func DefaultEnvironment() Environment {
	return Environment{
		"os_name":                        "posix",
		"sys_platform":                   "linux",
		"platform_machine":               "x86_64",
		"platform_python_implementation": "CPython",
		"platform_release":               "",
		"platform_system":                "Linux",
		"platform_version":               "",
		"python_version":                 "3.11",
		"python_full_version":            "3.11.0",
		"implementation_name":            "cpython",
		"implementation_version":         "3.11.0",
		"extra":                          "",
	}
}

// Merge returns a copy of env with overrides applied on top.
func (env Environment) Merge(overrides Environment) Environment {
	out := make(Environment, len(env)+len(overrides))
	for k, v := range env {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Eval evaluates the marker against the environment. Variables missing
// from env evaluate as the empty string, matching pip's behavior for
// unset extras.
func (m *Marker) Eval(env Environment) (bool, error) {
	return m.root.eval(env)
}

func (b *boolOp) eval(env Environment) (bool, error) {
	for _, t := range b.terms {
		v, err := t.eval(env)
		if err != nil {
			return false, err
		}
		if b.op == "and" && !v {
			return false, nil
		}
		if b.op == "or" && v {
			return true, nil
		}
	}
	return b.op == "and", nil
}

func (c *comparison) eval(env Environment) (bool, error) {
	lhs, lhsVersion := c.resolve(c.lhs, env)
	rhs, rhsVersion := c.resolve(c.rhs, env)

	switch c.op {
	case "in":
		return strings.Contains(rhs, lhs), nil
	case "not in":
		return !strings.Contains(rhs, lhs), nil
	}

	// Version-typed variables compare with version ordering when both
	// sides parse; otherwise fall back to string comparison like pip.
	if lhsVersion || rhsVersion {
		lv, lerr := pep440.Parse(lhs)
		rv, rerr := pep440.Parse(rhs)
		if lerr == nil && rerr == nil {
			return compareVersions(lv, rv, c.op)
		}
	}
	return compareStrings(lhs, rhs, c.op)
}

// resolve produces the concrete value of an operand and whether it should
// be treated as a version.
func (c *comparison) resolve(o operand, env Environment) (string, bool) {
	if !o.variable {
		return o.value, false
	}
	return env[o.value], versionVariables[o.value]
}

func compareVersions(a, b *pep440.Version, op string) (bool, error) {
	switch op {
	case "~=":
		if len(b.Release) < 2 {
			return false, fmt.Errorf("marker ~= needs at least two release components, got %q", b.String())
		}
		spec := pep440.Specifier{Op: pep440.OpCompatible, Version: b}
		return spec.Match(a), nil
	case "===":
		return a.String() == b.String(), nil
	}
	cmp := a.Compare(b)
	return cmpResult(cmp, op)
}

func compareStrings(a, b, op string) (bool, error) {
	if op == "~=" || op == "===" {
		return a == b, nil
	}
	return cmpResult(strings.Compare(a, b), op)
}

func cmpResult(cmp int, op string) (bool, error) {
	switch op {
	case "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("unsupported marker operator %q", op)
}
