// Package resolver turns a CRM object reference into a normalized record
// with a display name and, where one can be found, a phone number.
package resolver

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"sonaxhub/internal/logging"
	"sonaxhub/internal/observability"
)

// entity describes how one standard object type is fetched.
type entity struct {
	properties []string
	strategy   strategy
}

var entities = map[ObjectType]entity{
	Contact: {properties: []string{"phone", "firstname", "lastname", "email"}, strategy: directStrategy{}},
	Company: {properties: []string{"phone", "name"}, strategy: directStrategy{}},
	Deal:    {properties: []string{"dealname"}, strategy: associatedContactStrategy{}},
	Ticket:  {properties: []string{"subject", "content"}, strategy: associatedContactStrategy{}},
}

var defaultCustomProperties = []string{phoneProperty}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCustomProperties sets the property sets fetched for custom object
// type codes that the caller does not override.
func WithCustomProperties(props map[string][]string) Option {
	return func(r *Resolver) {
		r.customProperties = props
	}
}

// Resolver resolves object references against the CRM. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	upstream         Upstream
	customProperties map[string][]string
}

// New creates a resolver reading from up.
func New(up Upstream, opts ...Option) *Resolver {
	r := &Resolver{upstream: up}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the object behind ref and normalizes it.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (*Record, error) {
	return r.ResolveWithProperties(ctx, ref, nil)
}

// ResolveWithProperties is Resolve with a caller-supplied property set for
// custom objects. Standard object types ignore properties.
//
// Errors wrap ErrInvalidRequest, ErrNotFound or ErrUpstreamFailure.
func (r *Resolver) ResolveWithProperties(ctx context.Context, ref Reference, properties []string) (*Record, error) {
	ref.ID = strings.TrimSpace(ref.ID)
	ref.ObjectTypeCode = strings.TrimSpace(ref.ObjectTypeCode)
	if ref.ID == "" {
		return nil, invalidRequest("object id is required")
	}
	if ref.ObjectTypeCode == "" {
		return nil, invalidRequest("object type code is required")
	}

	kind := ParseObjectType(ref.ObjectTypeCode)
	s, t := r.plan(kind, ref, properties)

	ctx, span := observability.StartSpan(ctx, "resolver.resolve",
		attribute.String("crm.object_type", kind.String()),
		attribute.String("crm.object_type_code", ref.ObjectTypeCode),
		attribute.String("crm.object_id", ref.ID),
	)

	start := time.Now()
	rec, err := s.fetch(ctx, r.upstream, t)
	if err != nil {
		err = classify(err)
	}
	observability.EndSpan(span, err)

	logging.FromContext(ctx).Debug("object resolved",
		"object_type", kind.String(),
		"object_id", ref.ID,
		"has_phone", rec != nil && rec.Phone != nil,
		"duration", time.Since(start),
		"error", err,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Resolver) plan(kind ObjectType, ref Reference, properties []string) (strategy, target) {
	if e, ok := entities[kind]; ok {
		return e.strategy, target{ref: ref, apiType: kind.APIName(), properties: e.properties}
	}
	return directStrategy{}, target{
		ref:        ref,
		apiType:    ref.ObjectTypeCode,
		properties: r.customPropertySet(ref.ObjectTypeCode, properties),
	}
}

// customPropertySet picks caller properties, then configured ones, then
// the default. phone is always requested.
func (r *Resolver) customPropertySet(code string, properties []string) []string {
	var props []string
	switch {
	case len(properties) > 0:
		props = properties
	case len(r.customProperties[code]) > 0:
		props = r.customProperties[code]
	default:
		return slices.Clone(defaultCustomProperties)
	}
	props = slices.Clone(props)
	if !slices.Contains(props, phoneProperty) {
		props = append([]string{phoneProperty}, props...)
	}
	return props
}

// classify folds anything that is not already a resolver error into
// ErrUpstreamFailure, keeping the upstream message.
func classify(err error) error {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return upstreamFailure(err)
}
