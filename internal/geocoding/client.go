// Package geocoding contains the client for the UGRC web API and the API key
// syntax check that guards it.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ugrc/geocode-cli/internal/models"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the UGRC web API base URL.
const DefaultBaseURL = "https://api.mapserv.utah.gov"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Geocoder is the single-address geocoding contract the batch engine consumes.
type Geocoder interface {
	Geocode(ctx context.Context, street, zone string) (*models.Candidate, error)
}

// Client geocodes single addresses against the UGRC web API.
type Client struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the UGRC API
	apiKey  string        // API key issued by the UGRC developer portal
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// NoCandidateError is returned when the service answers with a message body
// and no candidate, typically a 404 "no address candidates found" reply.
type NoCandidateError struct {
	Message string // Message is the service's diagnostic, carried verbatim.
}

func (e *NoCandidateError) Error() string {
	return e.Message
}

// apiResponse is the JSON envelope every UGRC API reply uses.
type apiResponse struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Result  *apiCandidate `json:"result"`
}

// apiCandidate is the match object inside a successful reply.
type apiCandidate struct {
	Location struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"location"`
	Score               float64 `json:"score"`
	Locator             string  `json:"locator"`
	MatchAddress        string  `json:"matchAddress"`
	InputAddress        string  `json:"inputAddress"`
	StandardizedAddress string  `json:"standardizedAddress"`
	AddressGrid         string  `json:"addressGrid"`
}

// NewClient creates a geocoding client for the UGRC web API.
func NewClient(baseURL, apiKey string, rateLimit int, log *slog.Logger) *Client {
	const timeout = 10

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewClientWithClient allows injecting a custom HTTP client and base URL.
// Useful for testing with mocked transports.
func NewClientWithClient(client HTTPClient, baseURL, apiKey string, limiter *rate.Limiter, log *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Geocode requests coordinates for a cleansed street/zone pair.
//
// The reply is discriminated into three shapes:
//   - a parsed body with a candidate result returns that candidate,
//   - a parsed body with only a message returns *NoCandidateError,
//   - a body that does not parse as the API envelope returns an error
//     wrapping ErrMalformedRequest, which happens when an empty or
//     unroutable street/zone segment falls off the API route.
//
// Transport failures from the underlying HTTP client are returned as-is so
// the caller can record their message text verbatim.
func (c *Client) Geocode(ctx context.Context, street, zone string) (*models.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	c.log.DebugContext(ctx, "Geocoding address", "street", street, "zone", zone)

	route := fmt.Sprintf("/api/v1/geocode/%s/%s", url.PathEscape(street), url.PathEscape(zone))

	reqURL, err := url.Parse(c.baseURL + route)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("apiKey", c.apiKey)
	reqURL.RawQuery = query.Encode()

	c.log.DebugContext(ctx, "Geocode request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Returned unwrapped: the message text is row data downstream.
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.DebugContext(ctx, "Geocode raw response", "status", resp.StatusCode, "body", string(body))

	var reply apiResponse
	if err = json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w %s. The street and zone of the request must not be empty", ErrMalformedRequest, route)
	}

	if reply.Result == nil {
		if reply.Message != "" {
			return nil, &NoCandidateError{Message: reply.Message}
		}

		return nil, fmt.Errorf("%w %s. The street and zone of the request must not be empty", ErrMalformedRequest, route)
	}

	match := reply.Result

	c.log.DebugContext(ctx, "Geocode found candidate",
		"x", match.Location.X, "y", match.Location.Y, "score", match.Score)

	return &models.Candidate{
		X:                   match.Location.X,
		Y:                   match.Location.Y,
		Score:               match.Score,
		Locator:             match.Locator,
		MatchAddress:        match.MatchAddress,
		InputAddress:        match.InputAddress,
		StandardizedAddress: match.StandardizedAddress,
		AddressGrid:         match.AddressGrid,
	}, nil
}
