// Package disco queries the foojay Disco API for downloadable JDK
// packages matching a query.
package disco

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/types"
	"github.com/flanksource/jdk/pkg/version"
	"github.com/samber/lo"
)

// DefaultBaseURL is the package query endpoint of the public Disco API.
const DefaultBaseURL = "https://api.foojay.io/disco/v3.0/packages"

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 15 * time.Second
	maxAttempts    = 3
)

// Client queries a Disco-compatible package index.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption is a functional option for configuring the client
type ClientOption func(*Client)

// WithBaseURL overrides the index endpoint, used for self-hosted mirrors
// and in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a Disco API client with bounded connect and read
// timeouts.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
				ResponseHeaderTimeout: readTimeout,
				Proxy:                 http.ProxyFromEnvironment,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildQueryURL serializes the query into the index's parameter
// vocabulary. The serialization is deterministic so it can be asserted
// in tests and compared across runs.
func (c *Client) BuildQueryURL(query types.JdkQuery) string {
	params := []string{
		"package_type=jdk",
		"directly_downloadable=true",
		"archive_type=tar.gz",
		"archive_type=tgz",
		"archive_type=zip",
		"archive_type=tar.xz",
	}

	if query.StableOnly {
		params = append(params, "release_status=ga")
	}
	if query.LTSOnly {
		params = append(params, "term_of_support=lts")
	}
	if query.ProductionUseOnly {
		params = append(params, "free_to_use_in_production=true")
	}

	if p := versionParam(query.Version); p != "" {
		params = append(params, p)
	}
	params = append(params, param("operating_system", string(query.OS)))
	for _, alias := range query.Arch.Aliases() {
		params = append(params, param("architecture", alias))
	}
	if query.OS == platform.Linux && query.Libc != "" {
		params = append(params, param("libc_type", query.Libc))
	}
	for _, dist := range types.DistributionsForVendor(query.Vendor) {
		params = append(params, param("distribution", dist))
	}
	if query.JavaFXBundled {
		params = append(params, "javafx_bundled=true")
	}

	return c.baseURL + "?" + strings.Join(params, "&")
}

// versionParam translates a version constraint into the index's own
// vocabulary: symbolic specs become version_by_definition, a bare major
// becomes jdk_version, partial or open constraints become a half-open
// range, and a full triple is passed through verbatim.
func versionParam(s version.Spec) string {
	switch s.Kind() {
	case version.KindLatestLTS:
		return "version_by_definition=latest_lts"
	case version.KindLatest, version.KindAny:
		return "version_by_definition=latest"
	}

	major, ok := s.Major()
	if !ok {
		return "version_by_definition=latest"
	}
	minor, hasMinor := s.Minor()
	if !hasMinor {
		if s.Open() {
			return param("version", fmt.Sprintf("%d..<%d", major, major+1))
		}
		return fmt.Sprintf("jdk_version=%d", major)
	}
	patch, hasPatch := s.Patch()
	if !hasPatch || s.Open() {
		return param("version", fmt.Sprintf("%d.%d..<%d.%d", major, minor, major, minor+1))
	}
	return param("version", fmt.Sprintf("%d.%d.%d", major, minor, patch))
}

func param(name, value string) string {
	return url.QueryEscape(name) + "=" + url.QueryEscape(value)
}

// FindPackage queries the index and selects the best matching package.
// A nil result with a nil error means the index had no suitable
// candidate, which is a normal outcome for the caller.
func (c *Client) FindPackage(ctx context.Context, query types.JdkQuery, t *task.Task) (*Package, error) {
	queryURL := c.BuildQueryURL(query)
	if t != nil {
		t.Debugf("Querying package index: %s", queryURL)
	} else {
		logger.Debugf("disco: querying %s", queryURL)
	}

	raw, err := c.fetchResult(ctx, queryURL)
	if err != nil {
		return nil, err
	}

	candidates := lo.FilterMap(raw, func(rp rawPackage, _ int) (Package, bool) {
		return buildCandidate(rp)
	})
	candidates = lo.Filter(candidates, func(p Package, _ int) bool {
		return matchesQuery(p, query)
	})
	if len(candidates) == 0 {
		logger.Debugf("disco: no matching package for %s", query)
		return nil, nil
	}

	best := lo.MaxBy(candidates, betterCandidate)
	logger.Debugf("disco: selected %s (%s, %s)", best.Filename, best.Distribution, best.JavaVersion)
	return &best, nil
}

// fetchResult issues the GET with a bounded retry budget. Only 5xx
// responses are retried; client errors fail immediately.
func (c *Client) fetchResult(ctx context.Context, queryURL string) ([]rawPackage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		packages, retry, err := c.fetchOnce(ctx, queryURL)
		if err == nil {
			return packages, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}
	return nil, fmt.Errorf("package index query failed after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, queryURL string) (packages []rawPackage, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("package index request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return nil, true, fmt.Errorf("package index server error: status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("package index query rejected: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read package index response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, false, nil
	}

	var envelope struct {
		Result  []rawPackage `json:"result"`
		Message string       `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("failed to parse package index response: %w", err)
	}
	return envelope.Result, false, nil
}

// buildCandidate converts a raw index entry into a Package, dropping
// entries that are not directly downloadable JDKs with a usable link.
func buildCandidate(rp rawPackage) (Package, bool) {
	if !strings.EqualFold(rp.PackageType, "jdk") {
		logger.Debugf("disco: skipping non-JDK package %s", rp.Filename)
		return Package{}, false
	}
	if !rp.DirectlyDownloadable {
		logger.Debugf("disco: skipping package without direct download %s", rp.Filename)
		return Package{}, false
	}
	link := rp.downloadLink()
	if link == "" {
		logger.Debugf("disco: skipping package without download link %s", rp.Filename)
		return Package{}, false
	}

	// The filename is authoritative for the archive type; the declared
	// field and the URI path are fallbacks.
	archiveType := normalizeArchiveType(firstNonBlank(
		guessArchiveFromName(rp.Filename),
		rp.ArchiveType,
		guessArchiveFromURI(link),
	))

	javaVersion := rp.JavaVersion
	if plus := strings.Index(javaVersion, "+"); plus >= 0 {
		javaVersion = javaVersion[:plus]
	}

	// Unknown OS or architecture values fall through to the metadata
	// re-check, which rejects them.
	osFamily, _ := platform.ParseOS(rp.OperatingSystem)
	arch, _ := platform.ParseArch(rp.Architecture)

	return Package{
		DownloadURL:  link,
		Checksum:     rp.SHA256,
		Distribution: rp.Distribution,
		ArchiveType:  archiveType,
		Filename:     rp.Filename,
		JavaVersion:  javaVersion,
		OS:           osFamily,
		Arch:         arch,
		LibCType:     rp.LibCType,
	}, true
}

// matchesQuery re-checks the index's own metadata against the query so a
// loosely filtered response cannot yield a wrong package.
func matchesQuery(p Package, query types.JdkQuery) bool {
	if !isSupportedArchiveType(p.ArchiveType) {
		logger.Debugf("disco: %s rejected: unsupported archive type %q", p.Filename, p.ArchiveType)
		return false
	}
	if p.OS != query.OS {
		logger.Debugf("disco: %s rejected: operating system %s does not match %s", p.Filename, p.OS, query.OS)
		return false
	}
	if p.Arch != query.Arch {
		logger.Debugf("disco: %s rejected: architecture %s does not match %s", p.Filename, p.Arch, query.Arch)
		return false
	}
	if query.OS == platform.Linux && p.LibCType != "" && query.Libc != "" && p.LibCType != query.Libc {
		logger.Debugf("disco: %s rejected: libc %s does not match %s", p.Filename, p.LibCType, query.Libc)
		return false
	}
	vendor := types.VendorForDistribution(p.Distribution)
	if !types.MatchVendor(query.Vendor, vendor) {
		logger.Debugf("disco: %s rejected: vendor %s does not match %s", p.Filename, vendor, query.Vendor)
		return false
	}
	if query.NativeImageCapable && !distributionIsNativeImageCapable(p.Distribution) {
		logger.Debugf("disco: %s rejected: distribution %s is not native-image capable", p.Filename, p.Distribution)
		return false
	}
	return true
}

func distributionIsNativeImageCapable(distribution string) bool {
	return strings.Contains(distribution, "graalvm") || strings.Contains(distribution, "liberica_native")
}

// betterCandidate ranks two candidates: prefer the plainer libc label,
// then the newer Java version, then the friendlier archive format for
// the package's target OS.
func betterCandidate(a, b Package) bool {
	if a.LibCType != b.LibCType {
		return a.LibCType < b.LibCType
	}
	if cmp := version.CompareStrings(a.JavaVersion, b.JavaVersion); cmp != 0 {
		return cmp > 0
	}
	return archivePriority(a.ArchiveType, a.OS) > archivePriority(b.ArchiveType, b.OS)
}
