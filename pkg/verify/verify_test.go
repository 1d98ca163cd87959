package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pinfold/pinfold/pkg/manifest"
	"github.com/pinfold/pinfold/pkg/registry"
	"github.com/pinfold/pinfold/pkg/registry/pypi"
)

type fakeRegistry struct {
	packages map[string]*pypi.PackageInfo
	calls    int
}

func (f *fakeRegistry) FetchPackage(ctx context.Context, pkg string, refresh bool) (*pypi.PackageInfo, error) {
	f.calls++
	info, ok := f.packages[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: pypi package %s", registry.ErrNotFound, pkg)
	}
	return info, nil
}

func expandContent(t *testing.T, content string) *manifest.Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := manifest.Expand(path)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestRun(t *testing.T) {
	reg := &fakeRegistry{packages: map[string]*pypi.PackageInfo{
		"requests": {
			Name:     "requests",
			Version:  "2.31.0",
			Versions: []string{"2.4.1", "2.30.0", "2.31.0"},
		},
	}}
	set := expandContent(t, `
requests>=2.30
requests<2.0
no-such-thing==1.0
git+https://github.com/user/tool.git@v1#egg=tool
`)

	results, err := Run(context.Background(), reg, set, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}

	if results[0].Status != StatusOK || results[0].Matching != 2 {
		t.Errorf("requests>=2.30: %+v", results[0])
	}
	if results[0].Latest != "2.31.0" {
		t.Errorf("Latest = %q", results[0].Latest)
	}
	if results[1].Status != StatusNoMatch {
		t.Errorf("requests<2.0: %+v", results[1])
	}
	if results[2].Status != StatusNotFound {
		t.Errorf("no-such-thing: %+v", results[2])
	}
	if results[3].Status != StatusSkipped {
		t.Errorf("vcs requirement: %+v", results[3])
	}

	if !Failed(results) {
		t.Error("Failed = false with broken requirements")
	}
}

func TestRunFetchesEachPackageOnce(t *testing.T) {
	reg := &fakeRegistry{packages: map[string]*pypi.PackageInfo{
		"requests": {Name: "requests", Version: "2.31.0", Versions: []string{"2.31.0"}},
	}}
	set := expandContent(t, "requests>=2\nrequests<3\n")

	if _, err := Run(context.Background(), reg, set, Options{}); err != nil {
		t.Fatal(err)
	}
	if reg.calls != 1 {
		t.Errorf("registry calls = %d, want 1", reg.calls)
	}
}

type failingRegistry struct{}

func (failingRegistry) FetchPackage(ctx context.Context, pkg string, refresh bool) (*pypi.PackageInfo, error) {
	return nil, errors.New("connection refused")
}

func TestRunNetworkError(t *testing.T) {
	set := expandContent(t, "requests\n")
	results, err := Run(context.Background(), failingRegistry{}, set, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Status != StatusError {
		t.Fatalf("results = %+v", results)
	}
}

func TestFailedAllOK(t *testing.T) {
	results := []Result{{Status: StatusOK}, {Status: StatusSkipped}}
	if Failed(results) {
		t.Error("Failed = true for ok/skipped results")
	}
}

func TestFailedStatuses(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusOK, false},
		{StatusSkipped, false},
		{StatusError, false}, // unreachable registry is a warning, not a failure
		{StatusNotFound, true},
		{StatusNoMatch, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := Failed([]Result{{Status: tt.status}}); got != tt.want {
				t.Errorf("Failed(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
