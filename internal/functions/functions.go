// Package functions exposes the CRM card's serverless functions behind a
// single name-based dispatcher shared by every transport.
package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"sonaxhub/internal/forwarder"
	"sonaxhub/internal/logging"
	"sonaxhub/internal/metrics"
	"sonaxhub/internal/resolver"
)

// Function names as the CRM card calls them.
const (
	GetContactData = "getContactData"
	InitiateCall   = "initiateCall"
	SendToWebhook  = "sendToWebhook"
)

// unknownLabel is the metrics label for names with no registered function.
// Names come from request paths, so they never become label values.
const unknownLabel = "unknown"

var (
	// ErrUnknownFunction is returned for a name with no registered function.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrForwardFailed means the outbound endpoint rejected or never answered.
	ErrForwardFailed = errors.New("forward failed")
)

// Response is the uniform envelope every function returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ObjectResolver resolves CRM object references.
type ObjectResolver interface {
	ResolveWithProperties(ctx context.Context, ref resolver.Reference, properties []string) (*resolver.Record, error)
}

// CallInitiator starts outbound calls.
type CallInitiator interface {
	Initiate(ctx context.Context, req forwarder.CallRequest) (*forwarder.Result, error)
}

// WebhookForwarder forwards user and phone pairs.
type WebhookForwarder interface {
	Forward(ctx context.Context, req forwarder.WebhookRequest) (*forwarder.Result, error)
}

// Deps are the collaborators the functions need.
type Deps struct {
	Resolver ObjectResolver
	Calls    CallInitiator
	Webhooks WebhookForwarder
	Metrics  *metrics.Metrics
}

// Func is one serverless function. A non-nil error must wrap one of the
// package or resolver sentinels so it can be classified.
type Func func(ctx context.Context, params Parameters) (Response, error)

// Registry dispatches invocations by function name.
type Registry struct {
	funcs   map[string]Func
	metrics *metrics.Metrics
}

// NewRegistry registers the three CRM functions.
func NewRegistry(deps Deps) *Registry {
	h := handlers{deps: deps}
	return &Registry{
		funcs: map[string]Func{
			GetContactData: h.getContactData,
			InitiateCall:   h.initiateCall,
			SendToWebhook:  h.sendToWebhook,
		},
		metrics: deps.Metrics,
	}
}

// Names lists the registered function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named function. The response is always usable as-is;
// the error, when non-nil, classifies the failure for transports that map
// it to a status code.
func (r *Registry) Invoke(ctx context.Context, name string, params Parameters) (Response, error) {
	start := time.Now()
	log := logging.FromContext(ctx).With("function", name)

	fn, ok := r.funcs[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownFunction, name)
		r.metrics.ObserveInvocation(unknownLabel, Outcome(err), time.Since(start))
		log.Warn("unknown function")
		return Response{Success: false, Message: err.Error()}, err
	}

	resp, err := fn(ctx, params)
	if err != nil {
		resp = Response{Success: false, Message: err.Error()}
	}

	outcome := Outcome(err)
	r.metrics.ObserveInvocation(name, outcome, time.Since(start))
	if err != nil {
		log.Warn("function failed", "outcome", outcome, "error", err, "duration", time.Since(start))
	} else {
		log.Info("function completed", "duration", time.Since(start))
	}
	return resp, err
}

// Outcome is the metrics label for err.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, resolver.ErrInvalidRequest), errors.Is(err, forwarder.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, resolver.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnknownFunction):
		return "unknown_function"
	case errors.Is(err, ErrForwardFailed):
		return "forward_failed"
	default:
		return "upstream_failure"
	}
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch Outcome(err) {
	case "success":
		return http.StatusOK
	case "invalid_request":
		return http.StatusBadRequest
	case "not_found", "unknown_function":
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
