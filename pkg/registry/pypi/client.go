package pypi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pinfold/pinfold/pkg/cache"
	pkgerrors "github.com/pinfold/pinfold/pkg/errors"
	"github.com/pinfold/pinfold/pkg/httputil"
	"github.com/pinfold/pinfold/pkg/pep440"
	"github.com/pinfold/pinfold/pkg/registry"
)

// PackageInfo holds metadata for a Python package from PyPI.
//
// Package names are normalized following PEP 503 (lowercase, underscores
// become hyphens). Versions lists every released version that still has at
// least one non-yanked file, sorted in PEP 440 order with unparseable
// versions kept at the front in string order.
type PackageInfo struct {
	Name     string   `json:"name"`     // Normalized package name
	Version  string   `json:"version"`  // Latest version per PyPI
	Versions []string `json:"versions"` // All installable released versions
	Summary  string   `json:"summary"`  // Short package description (may be empty)
	License  string   `json:"license"`  // License name or expression (may be empty)
	HomePage string   `json:"homepage"` // Homepage URL (may be empty)
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a PyPI client with the given cache backend.
// Responses are cached for cacheTTL (typical: 1-24 hours); pass a
// [cache.NullCache] to disable caching.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  registry.NewClient(httputil.NewJSONCache(backend, "pypi:", cacheTTL), nil),
		baseURL: "https://pypi.org/pypi",
	}
}

// WithBaseURL overrides the API endpoint. Used for tests and private
// index mirrors exposing the same JSON API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// FetchPackage retrieves metadata for a Python package from PyPI.
//
// The pkg parameter is normalized automatically. If refresh is true, the
// cache is bypassed and a fresh API call is made.
//
// Returns:
//   - PackageInfo populated with metadata on success
//   - [registry.ErrNotFound] if the package doesn't exist
//   - [registry.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = registry.NormalizePkgName(pkg)
	// The name becomes part of the request URL.
	if err := pkgerrors.ValidatePythonPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{
		Name:     registry.NormalizePkgName(data.Info.Name),
		Version:  data.Info.Version,
		Versions: installableVersions(data.Releases),
		Summary:  data.Info.Summary,
		License:  extractLicenseType(data.Info.License, data.Info.Classifiers),
		HomePage: data.Info.HomePage,
	}
	return nil
}

// installableVersions returns release keys with at least one non-yanked
// file, sorted by PEP 440 ordering.
func installableVersions(releases map[string][]apiFile) []string {
	versions := make([]string, 0, len(releases))
	for v, files := range releases {
		if len(files) > 0 && allYanked(files) {
			continue
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		a, aerr := pep440.Parse(versions[i])
		b, berr := pep440.Parse(versions[j])
		if aerr != nil || berr != nil {
			if aerr == nil {
				return false
			}
			if berr == nil {
				return true
			}
			return versions[i] < versions[j]
		}
		return a.Compare(b) < 0
	})
	return versions
}

func allYanked(files []apiFile) bool {
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}

type apiResponse struct {
	Info     apiInfo              `json:"info"`
	Releases map[string][]apiFile `json:"releases"`
}

type apiInfo struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Summary     string   `json:"summary"`
	License     string   `json:"license"`
	Classifiers []string `json:"classifiers"`
	HomePage    string   `json:"home_page"`
}

type apiFile struct {
	Yanked bool `json:"yanked"`
}

// extractLicenseType extracts a short license identifier from PyPI data.
// It prefers the classifier (e.g., "License :: OSI Approved :: MIT License" -> "MIT License")
// and falls back to the license field if it's short enough.
func extractLicenseType(license string, classifiers []string) string {
	// First, try to extract from classifiers
	for _, c := range classifiers {
		if strings.HasPrefix(c, "License :: ") {
			parts := strings.Split(c, " :: ")
			if len(parts) >= 3 {
				// Return the last part, e.g., "MIT License", "BSD-3-Clause"
				return parts[len(parts)-1]
			}
		}
	}

	// If license field is short (likely just the type), use it
	if license != "" && len(license) < 100 && !strings.Contains(license, "\n") {
		return strings.TrimSpace(license)
	}

	// Otherwise, try to extract type from the beginning of the license text
	if license != "" {
		firstLine := strings.Split(license, "\n")[0]
		firstLine = strings.TrimSpace(firstLine)
		if len(firstLine) < 50 {
			return firstLine
		}
	}

	return ""
}
