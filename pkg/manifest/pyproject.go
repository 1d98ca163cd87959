package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pinfold/pinfold/pkg/marker"
)

// pyprojectFile is the subset of pyproject.toml the parser reads.
type pyprojectFile struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

// ParsePyProject reads the [project] dependency tables of a
// pyproject.toml. Each entry is a PEP 508 requirement string; optional
// dependency groups gain an implicit `extra == "<group>"` marker so the
// lint rules see the same scoping pip would apply.
//
// TOML carries no per-entry line information, so requirement positions
// point at the file with line 0.
func ParsePyProject(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var py pyprojectFile
	if err := toml.Unmarshal(data, &py); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	file := &File{Path: path}
	for _, dep := range py.Project.Dependencies {
		file.addPyProjectDep(dep, "")
	}
	for group, deps := range py.Project.OptionalDependencies {
		for _, dep := range deps {
			file.addPyProjectDep(dep, group)
		}
	}
	return file, nil
}

func (f *File) addPyProjectDep(dep, group string) {
	req, err := ParseRequirement(dep)
	if err != nil {
		f.addProblem(0, "syntax", err.Error())
		return
	}
	req.File = f.Path
	if group != "" {
		text := fmt.Sprintf("extra == %q", NormalizeName(group))
		if req.MarkerText != "" {
			text = fmt.Sprintf("(%s) and %s", req.MarkerText, text)
		}
		if m, err := marker.Parse(text); err == nil {
			req.Marker = m
			req.MarkerText = m.Text()
		}
	}
	f.Requirements = append(f.Requirements, req)
}
