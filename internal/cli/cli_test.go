package cli

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func testCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "pinfold") {
		t.Errorf("cacheDir = %q", dir)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/tmp/home-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/home-test", ".cache", "pinfold") {
		t.Errorf("cacheDir = %q", dir)
	}
}

func TestRootCommandStructure(t *testing.T) {
	root := testCLI().RootCommand()

	want := []string{"parse", "lint", "verify", "graph", "serve", "cache"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	if err := validateFormat("text"); err != nil {
		t.Errorf("text: %v", err)
	}
	if err := validateFormat("json"); err != nil {
		t.Errorf("json: %v", err)
	}
	if err := validateFormat("yaml"); err == nil {
		t.Error("yaml accepted")
	}
}
