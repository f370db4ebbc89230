// Package forwarder posts click-to-call and webhook payloads to external
// endpoints. Each call is a single POST; nothing is retried.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sonaxhub/internal/logging"
	"sonaxhub/internal/metrics"
	"sonaxhub/internal/observability"
)

const (
	defaultAgentID   = "default_agent"
	defaultExtension = "default_extension"
)

// ErrInvalidRequest means a required input was missing. No request was sent.
var ErrInvalidRequest = errors.New("invalid request")

// Result is the outcome of one forward.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CallRequest asks the telephony endpoint to dial PhoneNumber for an agent.
type CallRequest struct {
	AgentID     string `json:"agentId"`
	Extension   string `json:"extension"`
	PhoneNumber string `json:"phoneNumber"`
}

// WebhookRequest is forwarded as-is to the webhook endpoint.
type WebhookRequest struct {
	UserID      string `json:"userId"`
	PhoneNumber string `json:"phoneNumber"`
}

// NormalizePhone strips every character that is not an ASCII digit.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

// poster is the shared POST-and-classify path.
type poster struct {
	url        string
	operation  string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

func newPoster(url, operation string, httpClient *http.Client, m *metrics.Metrics) poster {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return poster{url: url, operation: operation, httpClient: httpClient, metrics: m}
}

// post sends body and classifies the answer. Transport and status failures
// come back as an unsuccessful Result, not an error.
func (p poster) post(ctx context.Context, body any, failurePrefix string) *Result {
	ctx, span := observability.StartSpan(ctx, "forwarder."+p.operation,
		attribute.String("http.method", http.MethodPost),
	)
	result, err := p.do(ctx, body)
	if err != nil {
		result = &Result{Success: false, Message: fmt.Sprintf("%s: %v", failurePrefix, err)}
	}
	observability.EndSpan(span, err)
	return result
}

func (p poster) do(ctx context.Context, body any) (*Result, error) {
	if p.url == "" {
		return nil, errors.New("endpoint URL is not configured")
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := logging.FromContext(ctx)
	log.Debug("forwarding", "operation", p.operation, "body", string(jsonData))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.metrics.ObserveUpstream(p.operation, 0)
		return nil, err
	}
	defer resp.Body.Close()
	p.metrics.ObserveUpstream(p.operation, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debug("forward response", "operation", p.operation, "status", resp.StatusCode, "body", string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(statusText(resp))
	}
	return &Result{Success: true, Data: decodeBody(respBody)}, nil
}

// statusText is "Bad Gateway" rather than "502 Bad Gateway".
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

// decodeBody returns the parsed JSON body, the raw text when it is not
// JSON, or nil when empty.
func decodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(trimmed)
}
