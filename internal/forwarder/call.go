package forwarder

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"sonaxhub/internal/metrics"
)

// CallInitiator triggers an outbound call through the telephony webhook.
type CallInitiator struct {
	poster poster
}

// NewCallInitiator posts call requests to url.
func NewCallInitiator(url string, httpClient *http.Client, m *metrics.Metrics) *CallInitiator {
	return &CallInitiator{poster: newPoster(url, "call_webhook", httpClient, m)}
}

// Initiate validates req and posts it with a digits-only phone number.
// Missing agent and extension fall back to placeholder values.
func (c *CallInitiator) Initiate(ctx context.Context, req CallRequest) (*Result, error) {
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrInvalidRequest)
	}
	phone := NormalizePhone(req.PhoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number %q has no digits", ErrInvalidRequest, req.PhoneNumber)
	}

	body := CallRequest{
		AgentID:     valueOr(req.AgentID, defaultAgentID),
		Extension:   valueOr(req.Extension, defaultExtension),
		PhoneNumber: phone,
	}

	result := c.poster.post(ctx, body, "failed to initiate call")
	if result.Success {
		result.Message = "Call initiated successfully"
	}
	return result, nil
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
