package manifest

import (
	"testing"
)

func TestParsePyProject(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pyproject.toml", `
[project]
name = "sample"
dependencies = [
    "requests>=2.28",
    "numpy",
]

[project.optional-dependencies]
tf = ["tensorflow!=2.6.0"]
docs = ['sphinx>=4; python_version >= "3.8"']
`)

	file, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(file.Requirements) != 4 {
		t.Fatalf("got %d requirements, want 4", len(file.Requirements))
	}

	byName := make(map[string]*Requirement)
	for _, req := range file.Requirements {
		byName[req.Name] = req
	}

	if byName["requests"].MarkerText != "" {
		t.Errorf("core dependency gained a marker: %q", byName["requests"].MarkerText)
	}

	tf := byName["tensorflow"]
	if tf == nil {
		t.Fatal("tensorflow not parsed")
	}
	if tf.MarkerText != `extra == "tf"` {
		t.Errorf("optional group marker = %q", tf.MarkerText)
	}

	sphinx := byName["sphinx"]
	if sphinx == nil {
		t.Fatal("sphinx not parsed")
	}
	// Existing marker combines with the implicit extra marker.
	want := `(python_version >= "3.8") and extra == "docs"`
	if sphinx.MarkerText != want {
		t.Errorf("combined marker = %q, want %q", sphinx.MarkerText, want)
	}
}

func TestParsePyProjectBadDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pyproject.toml", `
[project]
name = "sample"
dependencies = ["===broken==="]
`)
	file, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(file.Requirements) != 0 {
		t.Errorf("requirements = %+v", file.Requirements)
	}
	if len(file.Problems) != 1 || file.Problems[0].Code != "syntax" {
		t.Errorf("problems = %+v", file.Problems)
	}
}
