package marker

// Domains lists the closed value sets of marker variables, used by
// [CoversDomain] to detect platform splits that leave a gap. Variables
// with open domains (version numbers, machine names) are absent.
var Domains = map[string][]string{
	"platform_system": {"Windows", "Linux", "Darwin", "Java"},
	"os_name":         {"posix", "nt", "java"},
	"sys_platform":    {"linux", "darwin", "win32", "cygwin", "aix"},
}

// Disjoint reports whether a and b can never both be true in the same
// environment.
//
// The check enumerates candidate environments built from the string
// literals both markers mention (plus a synthetic "other" value per
// variable, and neighboring versions for version-typed variables) and
// evaluates both markers in each. This is exact for equality and
// membership tests over those literals; for exotic markers it errs on the
// side of reporting an overlap.
func Disjoint(a, b *Marker) bool {
	envs := candidateEnvironments(a, b)
	for _, env := range envs {
		av, aerr := a.Eval(env)
		bv, berr := b.Eval(env)
		if aerr != nil || berr != nil {
			return false // can't reason about it, assume overlap
		}
		if av && bv {
			return false
		}
	}
	return true
}

// CoversDomain reports whether, for every value of variable in domain,
// at least one of the markers can evaluate true. Used to detect splits
// like the Windows/non-Windows alternation leaving a platform uncovered.
func CoversDomain(markers []*Marker, variable string, domain []string) bool {
	for _, value := range domain {
		covered := false
		for _, m := range markers {
			if satisfiableWith(m, variable, value) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// satisfiableWith reports whether m can be true in some environment where
// variable is fixed to value.
func satisfiableWith(m *Marker, variable, value string) bool {
	fixed := Environment{variable: value}
	for _, env := range candidateEnvironments(m) {
		v, err := m.Eval(env.Merge(fixed))
		if err == nil && v {
			return true
		}
	}
	return false
}

// candidateEnvironments builds the cross product of interesting values for
// every variable the markers mention, seeded from the default environment.
// The product is bounded: each variable contributes its mentioned literals
// plus a couple of synthetic values, and real-world markers mention one or
// two variables.
func candidateEnvironments(markers ...*Marker) []Environment {
	values := make(map[string][]string)
	for _, m := range markers {
		for _, v := range m.Variables() {
			if _, ok := values[v]; !ok {
				values[v] = nil
			}
		}
		collectLiterals(m.root, values)
	}

	base := DefaultEnvironment()
	envs := []Environment{base}
	for variable, lits := range values {
		candidates := append([]string{}, lits...)
		candidates = append(candidates, syntheticValues(variable, lits)...)
		var next []Environment
		for _, env := range envs {
			for _, c := range candidates {
				next = append(next, env.Merge(Environment{variable: c}))
			}
		}
		envs = next
	}
	return envs
}

// collectLiterals records, for each variable, the literals it is compared
// against anywhere in the expression.
func collectLiterals(e expr, values map[string][]string) {
	switch n := e.(type) {
	case *boolOp:
		for _, t := range n.terms {
			collectLiterals(t, values)
		}
	case *comparison:
		variable, literal := n.lhs, n.rhs
		if !variable.variable {
			variable, literal = n.rhs, n.lhs
		}
		if variable.variable && !literal.variable {
			values[variable.value] = appendUnique(values[variable.value], literal.value)
		}
	}
}

// syntheticValues adds values outside the mentioned literals so that
// negations ("!= Windows") and open comparisons (">= 3.7") have a
// satisfying witness.
func syntheticValues(variable string, lits []string) []string {
	if versionVariables[variable] {
		out := []string{"0.1", "999.0"}
		for _, l := range lits {
			out = appendUnique(out, l+".1") // just above each mentioned version
		}
		return out
	}
	if domain, ok := Domains[variable]; ok {
		return domain
	}
	return []string{freshWitness(lits)}
}

// freshWitness returns a string distinct from every mentioned literal.
func freshWitness(lits []string) string {
	w := "pinfold-other"
	for containsString(lits, w) {
		w += "-x"
	}
	return w
}

func appendUnique(s []string, v string) []string {
	if containsString(s, v) {
		return s
	}
	return append(s, v)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// VersionTyped reports whether the variable compares with version ordering.
func VersionTyped(variable string) bool { return versionVariables[variable] }

// SplitsOn returns the single variable all markers reference, or "" when
// the markers reference differing or multiple variables. Lint partition
// checks only apply to clean single-variable splits.
func SplitsOn(markers []*Marker) string {
	common := ""
	for _, m := range markers {
		vars := m.Variables()
		if len(vars) != 1 {
			return ""
		}
		if common == "" {
			common = vars[0]
		} else if common != vars[0] {
			return ""
		}
	}
	return common
}
