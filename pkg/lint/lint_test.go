package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pinfold/pinfold/pkg/manifest"
)

func lintContent(t *testing.T, cfg Config, content string) *Report {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := manifest.Expand(path)
	if err != nil {
		t.Fatal(err)
	}
	return Run(set, cfg)
}

func rules(r *Report) []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Rule
	}
	return out
}

func findingsFor(r *Report, rule string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func TestRunCleanManifest(t *testing.T) {
	report := lintContent(t, Config{}, `
requests>=2.28,<3
numpy==1.24.2
tensorflow==2.6; platform_system == "Windows"
tensorflow==2.6; platform_system != "Windows"
`)
	if len(report.Findings) != 0 {
		t.Fatalf("findings = %v", rules(report))
	}
	if report.HasErrors() {
		t.Error("HasErrors = true for clean manifest")
	}
}

func TestConflict(t *testing.T) {
	report := lintContent(t, Config{}, "requests>=2.28\nrequests<2.0\n")
	found := findingsFor(report, RuleConflict)
	if len(found) != 1 {
		t.Fatalf("conflict findings = %v", rules(report))
	}
	if found[0].Severity != SeverityError {
		t.Errorf("severity = %v, want error", found[0].Severity)
	}
	if found[0].Package != "requests" {
		t.Errorf("package = %q", found[0].Package)
	}
	if !report.HasErrors() {
		t.Error("HasErrors = false")
	}
}

func TestConflictSkippedForDisjointMarkers(t *testing.T) {
	report := lintContent(t, Config{}, `
tensorflow==2.6; python_version < "3.10"
tensorflow==2.9; python_version >= "3.10"
`)
	if found := findingsFor(report, RuleConflict); len(found) != 0 {
		t.Fatalf("conflict reported across exclusive markers: %v", found)
	}
}

func TestConflictAcrossConstraint(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(root, []byte("-c constraints.txt\nurllib3>=2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "constraints.txt"), []byte("urllib3<2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := manifest.Expand(root)
	if err != nil {
		t.Fatal(err)
	}
	report := Run(set, Config{})
	if found := findingsFor(report, RuleConflict); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestDuplicate(t *testing.T) {
	report := lintContent(t, Config{}, "click>=8.0\nclick>=8.0\n")
	found := findingsFor(report, RuleDuplicate)
	if len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if found[0].Line != 2 {
		t.Errorf("line = %d, want 2", found[0].Line)
	}
}

func TestDuplicateSkippedForConflictingRanges(t *testing.T) {
	report := lintContent(t, Config{}, "requests>=2.28\nrequests<2.0\n")
	if found := findingsFor(report, RuleDuplicate); len(found) != 0 {
		t.Fatalf("conflicting pair also reported as duplicate: %v", found)
	}
	if found := findingsFor(report, RuleConflict); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestMarkerOverlap(t *testing.T) {
	report := lintContent(t, Config{}, `
lxml==4.9; platform_system != "Linux"
lxml==4.8; platform_system != "Windows"
`)
	found := findingsFor(report, RuleMarkerOverlap)
	if len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if found[0].Severity != SeverityError {
		t.Errorf("severity = %v, want error", found[0].Severity)
	}
	// Both variants apply on Darwin, so their pins also conflict there.
	if found := findingsFor(report, RuleConflict); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestMarkerGap(t *testing.T) {
	report := lintContent(t, Config{}, `
scipy>=1.8; platform_system == "Windows"
scipy>=1.4; platform_system == "Linux"
`)
	if found := findingsFor(report, RuleMarkerGap); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestMarkerGapSuppressedByUnmarkedSibling(t *testing.T) {
	report := lintContent(t, Config{}, `
scipy>=1.4
scipy>=1.8; platform_system == "Windows"
scipy>=1.5; platform_system == "Linux"
`)
	if found := findingsFor(report, RuleMarkerGap); len(found) != 0 {
		t.Fatalf("gap reported despite unconditional declaration: %v", found)
	}
}

func TestVariantSplitClean(t *testing.T) {
	report := lintContent(t, Config{}, `
pycocotools>=2.0; platform_system != "Windows"
pycocotools-windows>=2.0; platform_system == "Windows"
`)
	if len(report.Findings) != 0 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestVariantSplitOverlap(t *testing.T) {
	// The unconditional base declaration installs alongside the Windows
	// build on Windows.
	report := lintContent(t, Config{}, `
pycocotools>=2.0
pycocotools-windows>=2.0; platform_system == "Windows"
`)
	found := findingsFor(report, RuleMarkerOverlap)
	if len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if found[0].Severity != SeverityError {
		t.Errorf("severity = %v, want error", found[0].Severity)
	}
	if found[0].Package != "pycocotools-windows" {
		t.Errorf("package = %q", found[0].Package)
	}
}

func TestVariantSplitGap(t *testing.T) {
	report := lintContent(t, Config{}, `
pycocotools>=2.0; platform_system == "Linux"
pycocotools-windows>=2.0; platform_system == "Windows"
`)
	if found := findingsFor(report, RuleMarkerGap); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestVariantSuffixWithoutSibling(t *testing.T) {
	report := lintContent(t, Config{}, "types-pywin32-windows==1.0\n")
	if len(report.Findings) != 0 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestVCSNoRef(t *testing.T) {
	report := lintContent(t, Config{},
		"git+https://github.com/user/a.git#egg=a\ngit+https://github.com/user/b.git@v1.0#egg=b\n")
	found := findingsFor(report, RuleVCSNoRef)
	if len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if found[0].Package != "a" {
		t.Errorf("package = %q, want a", found[0].Package)
	}
}

func TestUnpinned(t *testing.T) {
	content := "requests>=2.28\npinned==1.0\n"

	report := lintContent(t, Config{}, content)
	if found := findingsFor(report, RuleUnpinned); len(found) != 0 {
		t.Fatalf("unpinned reported without opt-in: %v", found)
	}

	report = lintContent(t, Config{Unpinned: true}, content)
	found := findingsFor(report, RuleUnpinned)
	if len(found) != 1 || found[0].Package != "requests" {
		t.Fatalf("findings = %+v", found)
	}
	if found[0].Severity != SeverityInfo {
		t.Errorf("severity = %v, want info", found[0].Severity)
	}
}

func TestSyntaxAndMarkerProblems(t *testing.T) {
	report := lintContent(t, Config{}, `
not a requirement !!
requests; bogus_variable == "x"
`)
	if found := findingsFor(report, RuleSyntax); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if found := findingsFor(report, RuleInvalidMarker); len(found) != 1 {
		t.Fatalf("findings = %v", rules(report))
	}
	if !report.HasErrors() {
		t.Error("HasErrors = false")
	}
}

func TestIncludeProblems(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(root, []byte("-r b.txt\n-r missing.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("-r a.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := manifest.Expand(root)
	if err != nil {
		t.Fatal(err)
	}
	report := Run(set, Config{})

	missing := findingsFor(report, RuleIncludeMissing)
	if len(missing) != 1 || missing[0].Severity != SeverityError {
		t.Fatalf("include-missing = %+v", missing)
	}
	cycle := findingsFor(report, RuleIncludeCycle)
	if len(cycle) != 1 || cycle[0].Severity != SeverityError {
		t.Fatalf("include-cycle = %+v", cycle)
	}
	if !report.HasErrors() {
		t.Error("HasErrors = false")
	}
}

func TestDisableRule(t *testing.T) {
	report := lintContent(t, Config{Disable: []string{RuleDuplicate}}, "click\nclick\n")
	if len(report.Findings) != 0 {
		t.Fatalf("findings = %v", rules(report))
	}
}

func TestCounts(t *testing.T) {
	report := &Report{Findings: []Finding{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
		{Severity: SeverityInfo},
	}}
	e, w, i := report.Counts()
	if e != 1 || w != 2 || i != 1 {
		t.Errorf("Counts = %d, %d, %d", e, w, i)
	}
}

func TestHasSeverity(t *testing.T) {
	report := &Report{Findings: []Finding{{Severity: SeverityWarning}}}
	if report.HasSeverity(SeverityError) {
		t.Error("HasSeverity(error) = true with only warnings")
	}
	if !report.HasSeverity(SeverityWarning) {
		t.Error("HasSeverity(warning) = false")
	}
	if !report.HasSeverity(SeverityInfo) {
		t.Error("HasSeverity(info) = false")
	}
	if report.HasErrors() {
		t.Error("HasErrors = true with only warnings")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"info":    SeverityInfo,
		"warning": SeverityWarning,
		"error":   SeverityError,
	}
	for name, want := range cases {
		got, err := ParseSeverity(name)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity(fatal) succeeded")
	}
}
