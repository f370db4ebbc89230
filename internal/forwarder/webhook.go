package forwarder

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"sonaxhub/internal/metrics"
)

// WebhookForwarder sends a user and phone pair to an automation webhook.
type WebhookForwarder struct {
	poster poster
}

// NewWebhookForwarder posts webhook requests to url.
func NewWebhookForwarder(url string, httpClient *http.Client, m *metrics.Metrics) *WebhookForwarder {
	return &WebhookForwarder{poster: newPoster(url, "forward_webhook", httpClient, m)}
}

// Forward validates req and posts it with a digits-only phone number.
func (w *WebhookForwarder) Forward(ctx context.Context, req WebhookRequest) (*Result, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" || strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, fmt.Errorf("%w: user id and phone number are required", ErrInvalidRequest)
	}
	phone := NormalizePhone(req.PhoneNumber)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number %q has no digits", ErrInvalidRequest, req.PhoneNumber)
	}

	result := w.poster.post(ctx, WebhookRequest{UserID: userID, PhoneNumber: phone}, "failed to send data")
	if result.Success {
		result.Message = "Data sent to webhook successfully"
	}
	return result, nil
}
