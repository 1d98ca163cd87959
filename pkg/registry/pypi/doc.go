// Package pypi provides a client for the PyPI JSON API
// (https://pypi.org/pypi/<package>/json).
//
// The client is used by the verify command to check that declared
// requirements actually resolve: the package exists, its specifier set
// matches at least one released version, and pinned versions have not
// been yanked.
package pypi
