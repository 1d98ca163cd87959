package manifest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pinfold/pinfold/pkg/graph"
)

// Set is a fully expanded manifest: the root file plus everything
// reachable through -r/-c includes.
type Set struct {
	Root         string         // absolute path of the root file
	Files        []*File        // expansion (depth-first) order
	Requirements []*Requirement // flattened across all files
	Graph        *graph.Graph   // file include edges + file->package edges
	Problems     []Problem      // parse problems, missing includes, cycles
}

// expander tracks visit state during include resolution.
type expander struct {
	set      *Set
	visiting map[string]bool // on the current include chain
	done     map[string]bool
}

// Expand parses the file at path and recursively resolves its includes.
// Include cycles and missing files are recorded as Problems on the
// returned Set; only the root file must be readable.
func Expand(path string) (*Set, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	e := &expander{
		set:      &Set{Root: abs, Graph: graph.New()},
		visiting: make(map[string]bool),
		done:     make(map[string]bool),
	}
	if err := e.visit(abs, false, nil); err != nil {
		return nil, err
	}
	return e.set, nil
}

// visit parses one file and recurses into its includes. The from
// argument carries the including file and directive for error reporting;
// it is nil for the root.
func (e *expander) visit(path string, constraint bool, from *includeSite) error {
	if e.visiting[path] {
		e.set.Problems = append(e.set.Problems, Problem{
			File:    from.file,
			Line:    from.line,
			Code:    "include-cycle",
			Message: fmt.Sprintf("including %s creates a cycle", displayPath(path)),
		})
		// Still record the edge so the cycle is visible in the graph.
		_ = e.set.Graph.AddEdge(graph.Edge{From: from.file, To: path, Label: from.label()})
		return nil
	}
	if e.done[path] {
		if from != nil {
			_ = e.set.Graph.AddEdge(graph.Edge{From: from.file, To: path, Label: from.label()})
		}
		return nil
	}

	file, err := ParseFile(path)
	if err != nil {
		if from == nil {
			return err // unreadable root is fatal
		}
		e.set.Problems = append(e.set.Problems, Problem{
			File:    from.file,
			Line:    from.line,
			Code:    "include-missing",
			Message: err.Error(),
		})
		return nil
	}

	e.visiting[path] = true
	defer func() {
		delete(e.visiting, path)
		e.done[path] = true
	}()

	_ = e.set.Graph.AddNode(graph.Node{ID: path, Kind: graph.KindFile})
	if from != nil {
		_ = e.set.Graph.AddEdge(graph.Edge{From: from.file, To: path, Label: from.label()})
	}

	e.set.Files = append(e.set.Files, file)
	e.set.Problems = append(e.set.Problems, file.Problems...)

	for _, req := range file.Requirements {
		req.Constraint = req.Constraint || constraint
		e.set.Requirements = append(e.set.Requirements, req)

		id := req.DisplayName()
		if id == "" {
			continue
		}
		_ = e.set.Graph.AddNode(graph.Node{ID: id, Kind: graph.KindPackage})
		_ = e.set.Graph.AddEdge(graph.Edge{From: path, To: id, Label: req.Specifiers.String()})
	}

	for _, inc := range file.Includes {
		target := inc.Target
		if !filepath.IsAbs(target) && !strings.Contains(target, "://") {
			target = filepath.Join(filepath.Dir(path), target)
		}
		if strings.Contains(target, "://") {
			e.set.Problems = append(e.set.Problems, Problem{
				File:    path,
				Line:    inc.Line,
				Code:    "include-missing",
				Message: fmt.Sprintf("remote includes are not supported: %s", inc.Target),
			})
			continue
		}
		site := &includeSite{file: path, line: inc.Line, constraint: inc.Constraint}
		if err := e.visit(target, constraint || inc.Constraint, site); err != nil {
			return err
		}
	}
	return nil
}

// SetFromReader builds a single-file Set from an in-memory source, as
// used by the HTTP API where no filesystem is available. Includes cannot
// be resolved; each one is recorded as an include-missing problem.
func SetFromReader(path string, r io.Reader) (*Set, error) {
	file, err := ParseReader(path, r)
	if err != nil {
		return nil, err
	}

	set := &Set{Root: path, Files: []*File{file}, Graph: graph.New()}
	set.Problems = append(set.Problems, file.Problems...)
	_ = set.Graph.AddNode(graph.Node{ID: path, Kind: graph.KindFile})

	for _, req := range file.Requirements {
		set.Requirements = append(set.Requirements, req)
		if id := req.DisplayName(); id != "" {
			_ = set.Graph.AddNode(graph.Node{ID: id, Kind: graph.KindPackage})
			_ = set.Graph.AddEdge(graph.Edge{From: path, To: id, Label: req.Specifiers.String()})
		}
	}
	for _, inc := range file.Includes {
		set.Problems = append(set.Problems, Problem{
			File:    path,
			Line:    inc.Line,
			Code:    "include-missing",
			Message: fmt.Sprintf("cannot resolve include %s without a filesystem", inc.Target),
		})
	}
	return set, nil
}

// ExpandPyProject builds a Set from the dependency tables of a
// pyproject.toml file. Such files declare no includes, so the graph is
// a single file node with its package edges.
func ExpandPyProject(path string) (*Set, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	file, err := ParsePyProject(abs)
	if err != nil {
		return nil, err
	}

	set := &Set{Root: abs, Files: []*File{file}, Graph: graph.New()}
	set.Problems = append(set.Problems, file.Problems...)
	_ = set.Graph.AddNode(graph.Node{ID: abs, Kind: graph.KindFile})
	for _, req := range file.Requirements {
		set.Requirements = append(set.Requirements, req)
		if id := req.DisplayName(); id != "" {
			_ = set.Graph.AddNode(graph.Node{ID: id, Kind: graph.KindPackage})
			_ = set.Graph.AddEdge(graph.Edge{From: abs, To: id, Label: req.Specifiers.String()})
		}
	}
	return set, nil
}

type includeSite struct {
	file       string
	line       int
	constraint bool
}

func (s *includeSite) label() string {
	if s.constraint {
		return "-c"
	}
	return "-r"
}

// ByName groups the set's named requirements by normalized package name,
// preserving declaration order within each group.
func (s *Set) ByName() map[string][]*Requirement {
	out := make(map[string][]*Requirement)
	for _, req := range s.Requirements {
		if req.Name == "" {
			continue
		}
		out[req.Name] = append(out[req.Name], req)
	}
	return out
}

// displayPath shortens an absolute path for messages, preferring a path
// relative to the working directory.
func displayPath(path string) string {
	if wd, err := filepath.Abs("."); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}
