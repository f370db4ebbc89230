// Package hubspot is a minimal client for the HubSpot CRM v3 objects API.
package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sonaxhub/internal/logging"
	"sonaxhub/internal/metrics"
	"sonaxhub/internal/observability"
)

// DefaultBaseURL is the public HubSpot API host.
const DefaultBaseURL = "https://api.hubapi.com"

var (
	// ErrNotFound is returned when HubSpot answers 404 for an object.
	ErrNotFound = errors.New("hubspot: object not found")
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("hubspot: unauthorized")
)

// APIError is any other non-2xx answer. Message is HubSpot's own text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot: HTTP %d: %s", e.StatusCode, e.Message)
}

// Object is a CRM record. Unset properties come back as JSON null.
type Object struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
	Archived   bool               `json:"archived"`
}

// Association is one entry of an association listing.
type Association struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type associationsResponse struct {
	Results []Association `json:"results"`
}

type errorResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	AccessToken string
	HTTPClient  *http.Client
	Metrics     *metrics.Metrics
}

// Client handles HubSpot API interactions. The access token is fixed at
// construction; the client never reads ambient configuration.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient creates a new HubSpot client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      opts.AccessToken,
		httpClient: httpClient,
		metrics:    opts.Metrics,
	}
}

// GetObject fetches one object with the requested properties.
func (c *Client) GetObject(ctx context.Context, objectType, id string, properties []string) (*Object, error) {
	endpoint := fmt.Sprintf("/crm/v3/objects/%s/%s", url.PathEscape(objectType), url.PathEscape(id))
	query := url.Values{}
	if len(properties) > 0 {
		query.Set("properties", strings.Join(properties, ","))
	}

	ctx, span := observability.StartSpan(ctx, "hubspot.get_object",
		attribute.String("hubspot.object_type", objectType),
		attribute.String("hubspot.object_id", id),
	)

	var obj Object
	err := c.get(ctx, "get_object", endpoint, query, &obj)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// ListAssociations lists the objects of toType associated with the given
// object, in the order HubSpot returns them. No associations is not an error.
func (c *Client) ListAssociations(ctx context.Context, fromType, id, toType string) ([]Association, error) {
	endpoint := fmt.Sprintf("/crm/v3/objects/%s/%s/associations/%s",
		url.PathEscape(fromType), url.PathEscape(id), url.PathEscape(toType))

	ctx, span := observability.StartSpan(ctx, "hubspot.list_associations",
		attribute.String("hubspot.object_type", fromType),
		attribute.String("hubspot.object_id", id),
		attribute.String("hubspot.to_object_type", toType),
	)

	var resp associationsResponse
	err := c.get(ctx, "list_associations", endpoint, nil, &resp)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// get makes an authenticated GET request and decodes a 2xx body into out.
func (c *Client) get(ctx context.Context, operation, endpoint string, query url.Values, out any) error {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	log := logging.FromContext(ctx)
	log.Debug("hubspot request", "method", req.Method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(operation, 0)
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(operation, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug("hubspot response", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(body))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(resp, body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp, body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage prefers HubSpot's JSON "message" field and falls back to the
// status text.
func errorMessage(resp *http.Response, body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return http.StatusText(resp.StatusCode)
}
