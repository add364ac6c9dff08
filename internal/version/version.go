// Package version resolves the locally installed tool version and the latest
// published one, for advisory staleness reporting only.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DescriptorName is the version descriptor file looked for next to, or above,
// the installed module.
const DescriptorName = "tool-version.json"

// DefaultRemoteURL is the published descriptor for the latest release.
const DefaultRemoteURL = "https://raw.githubusercontent.com/agrc/geocoding-toolbox/master/tool-version.json"

// maxAncestorLevels bounds the upward walk from the module's own directory.
const maxAncestorLevels = 2

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// descriptor is the JSON shape of both the local and the remote file.
type descriptor struct {
	ProVersionNumber string `json:"PRO_VERSION_NUMBER"`
}

// Resolver fetches the latest published version.
type Resolver struct {
	client    HTTPClient   // HTTP client for making requests
	remoteURL string       // URL of the published version descriptor
	log       *slog.Logger // Logger for logging operations
}

// NewResolver creates a resolver against the published descriptor URL.
func NewResolver(log *slog.Logger) *Resolver {
	const timeout = 10

	return &Resolver{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		remoteURL: DefaultRemoteURL,
		log:       log,
	}
}

// NewResolverWithClient allows injecting a custom HTTP client and URL.
// Useful for testing with mocked transports.
func NewResolverWithClient(client HTTPClient, remoteURL string, log *slog.Logger) *Resolver {
	return &Resolver{client: client, remoteURL: remoteURL, log: log}
}

// Local walks upward from modulePath's directory through at most two ancestor
// levels looking for the version descriptor. It returns the empty string, and
// no error, when none is found within that bound; the descriptor being absent
// is normal for source checkouts.
func Local(modulePath string) (string, error) {
	dir := filepath.Dir(modulePath)

	for level := 0; level <= maxAncestorLevels; level++ {
		candidate := filepath.Join(dir, DescriptorName)

		data, err := os.ReadFile(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				dir = filepath.Dir(dir)
				continue
			}

			return "", fmt.Errorf("failed to read version descriptor %s: %w", candidate, err)
		}

		var desc descriptor
		if err = json.Unmarshal(data, &desc); err != nil {
			return "", fmt.Errorf("failed to parse version descriptor %s: %w", candidate, err)
		}

		return desc.ProVersionNumber, nil
	}

	return "", nil
}

// Remote fetches the latest published version number. Unlike Local, an
// unreachable or malformed descriptor is an error here.
func (r *Resolver) Remote(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch remote version descriptor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote version descriptor returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	r.log.DebugContext(ctx, "Remote version descriptor", "body", string(body))

	var desc descriptor
	if err = json.Unmarshal(body, &desc); err != nil {
		return "", fmt.Errorf("failed to parse remote version descriptor: %w", err)
	}

	return desc.ProVersionNumber, nil
}
