package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/lint"
	"github.com/pinfold/pinfold/pkg/report"
	"github.com/pinfold/pinfold/pkg/verify"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunLintClean(t *testing.T) {
	path := writeManifest(t, "requests>=2.28,<3\n")
	if err := testCLI().runLint([]string{path}, lintOpts{format: "text"}); err != nil {
		t.Fatalf("clean manifest: %v", err)
	}
}

func TestRunLintConflict(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\nrequests<2.0\n")
	if err := testCLI().runLint([]string{path}, lintOpts{format: "text"}); err == nil {
		t.Fatal("conflicting ranges should exit non-zero")
	}
}

func TestRunLintDisable(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\nrequests<2.0\n")
	opts := lintOpts{format: "text", disable: []string{"conflict"}}
	if err := testCLI().runLint([]string{path}, opts); err != nil {
		t.Fatalf("disabled rule still failed: %v", err)
	}
}

func TestRunLintMultipleFiles(t *testing.T) {
	a := writeManifest(t, "requests>=2.28\n")
	b := writeManifest(t, "requests<2.0\nrequests>=3.0\n")

	// Files are linted independently; only b carries a conflict.
	if err := testCLI().runLint([]string{a, b}, lintOpts{format: "text"}); err == nil {
		t.Fatal("conflict in second file should exit non-zero")
	}
	if err := testCLI().runLint([]string{a}, lintOpts{format: "text"}); err != nil {
		t.Fatalf("clean file: %v", err)
	}
}

func TestRunLintMergedFindingsSorted(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for path, content := range map[string]string{
		a: "requests<2.0\nrequests>=3.0\n",
		b: "click<7.0\nclick>=8.0\n",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := filepath.Join(dir, "lint.json")

	// Lint in reverse path order; the merged report must come back
	// sorted and name both manifests.
	err := testCLI().runLint([]string{b, a}, lintOpts{format: "json", output: out})
	if err == nil {
		t.Fatal("conflicts should exit non-zero")
	}

	data, readErr := os.ReadFile(out)
	if readErr != nil {
		t.Fatal(readErr)
	}
	var doc report.LintDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Roots) != 2 {
		t.Fatalf("roots = %v", doc.Roots)
	}
	if len(doc.Findings) != 2 {
		t.Fatalf("findings = %+v", doc.Findings)
	}
	if doc.Findings[0].File != a || doc.Findings[1].File != b {
		t.Errorf("findings not sorted by file: %s, %s", doc.Findings[0].File, doc.Findings[1].File)
	}
}

func TestRunLintFailOn(t *testing.T) {
	// A repeated declaration is a warning, not an error.
	path := writeManifest(t, "click>=8.0\nclick>=8.0\n")

	if err := testCLI().runLint([]string{path}, lintOpts{format: "text"}); err != nil {
		t.Fatalf("warnings failed the default threshold: %v", err)
	}
	opts := lintOpts{format: "text", failOn: "warning"}
	if err := testCLI().runLint([]string{path}, opts); err == nil {
		t.Fatal("--fail-on warning did not exit non-zero")
	}
	opts = lintOpts{format: "text", failOn: "fatal"}
	if err := testCLI().runLint([]string{path}, opts); err == nil {
		t.Fatal("unknown severity name accepted")
	}
}

func TestRunLintFailOnFromConfig(t *testing.T) {
	path := writeManifest(t, "click>=8.0\nclick>=8.0\n")

	c := testCLI()
	c.Config.Lint.FailOn = "warning"
	if err := c.runLint([]string{path}, lintOpts{format: "text"}); err == nil {
		t.Fatal("fail_on config did not lower the threshold")
	}
}

func TestRunLintJSONOutput(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\nrequests<2.0\n")
	out := filepath.Join(t.TempDir(), "lint.json")

	err := testCLI().runLint([]string{path}, lintOpts{format: "json", output: out})
	if err == nil {
		t.Fatal("conflicting ranges should exit non-zero")
	}

	data, readErr := os.ReadFile(out)
	if readErr != nil {
		t.Fatal(readErr)
	}
	var doc struct {
		Errors   int   `json:"errors"`
		Findings []any `json:"findings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Errors == 0 || len(doc.Findings) == 0 {
		t.Errorf("document = %+v", doc)
	}
}

func TestVerifyStatusDegradesNetworkErrors(t *testing.T) {
	results := []verify.Result{{Status: verify.StatusOK}, {Status: verify.StatusError}}
	if err := verifyStatus(results); err != nil {
		t.Errorf("network error failed the run: %v", err)
	}
	results = append(results, verify.Result{Status: verify.StatusNotFound})
	if err := verifyStatus(results); err == nil {
		t.Error("missing package did not fail the run")
	}
}

func TestRunVerifyBadRegistryURL(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\n")

	c := testCLI()
	c.Config.Registry.URL = "ftp://mirror.example.com"
	cmd := &cobra.Command{}
	opts := verifyOpts{format: "text", noCache: true}
	if err := c.runVerify(cmd, path, opts); err == nil {
		t.Fatal("non-http registry URL accepted")
	}
}

func TestRunParseJSONOutput(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\npytest ; python_version >= \"3.8\"\n")
	out := filepath.Join(t.TempDir(), "parse.json")

	if err := testCLI().runParse(path, parseOpts{format: "json", output: out}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Requirements []struct {
			Name string `json:"name"`
		} `json:"requirements"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Requirements) != 2 {
		t.Errorf("requirements = %+v", doc.Requirements)
	}
}

func TestRunParseBadFormat(t *testing.T) {
	path := writeManifest(t, "requests\n")
	if err := testCLI().runParse(path, parseOpts{format: "yaml"}); err == nil {
		t.Fatal("invalid format accepted")
	}
}

func TestLoadGraph(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\n")

	g, err := loadGraph(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Node("requests"); !ok {
		t.Error("graph missing package node")
	}
}

func TestLoadSetPyProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pyproject.toml")
	content := `
[project]
name = "demo"
dependencies = ["requests>=2.28"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := loadSet(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Requirements) != 1 || set.Requirements[0].Name != "requests" {
		t.Errorf("requirements = %+v", set.Requirements)
	}
}

func TestFindingListModelFilter(t *testing.T) {
	path := writeManifest(t, "requests>=2.28\nrequests<2.0\ngit+https://github.com/x/y.git#egg=y\n")
	set, err := loadSet(path)
	if err != nil {
		t.Fatal(err)
	}
	rep := lint.Run(set, lint.Config{})

	m := NewFindingListModel("requirements.txt", rep.Findings)
	if len(m.Filtered) < 2 {
		t.Fatalf("findings = %+v", m.Filtered)
	}

	m = m.withFilter("error")
	for _, f := range m.Filtered {
		if f.Severity.String() != "error" {
			t.Errorf("filter leaked %+v", f)
		}
	}

	m = m.withFilter("error") // toggles back to all
	if len(m.Filtered) != len(m.Findings) {
		t.Errorf("toggle did not reset filter")
	}
}
