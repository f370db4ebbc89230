package resolver

import (
	"context"
	"errors"
	"fmt"

	"sonaxhub/internal/hubspot"
)

const (
	phoneProperty   = "phone"
	contactsAPIName = "contacts"
)

// Upstream is the slice of the CRM API the resolver reads from.
type Upstream interface {
	GetObject(ctx context.Context, objectType, id string, properties []string) (*hubspot.Object, error)
	ListAssociations(ctx context.Context, fromType, id, toType string) ([]hubspot.Association, error)
}

// target is one concrete lookup: which API type to hit and which properties to ask for.
type target struct {
	ref        Reference
	apiType    string
	properties []string
}

// strategy fetches and normalizes one kind of object.
type strategy interface {
	fetch(ctx context.Context, up Upstream, t target) (*Record, error)
}

// directStrategy reads the phone, if any, straight off the object.
type directStrategy struct{}

func (directStrategy) fetch(ctx context.Context, up Upstream, t target) (*Record, error) {
	return fetchPrimary(ctx, up, t)
}

// associatedContactStrategy is for objects without a phone field: the
// phone comes from the first associated contact, or stays nil.
type associatedContactStrategy struct{}

func (associatedContactStrategy) fetch(ctx context.Context, up Upstream, t target) (*Record, error) {
	rec, err := fetchPrimary(ctx, up, t)
	if err != nil {
		return nil, err
	}

	assocs, err := up.ListAssociations(ctx, t.apiType, t.ref.ID, contactsAPIName)
	if err != nil {
		return nil, fmt.Errorf("list %s associations for %s: %w", contactsAPIName, t.ref.ID, err)
	}
	if len(assocs) == 0 {
		rec.Phone = nil
		return rec, nil
	}

	// First result wins; no ranking by recency or primary flag.
	contactID := assocs[0].ID
	contact, err := up.GetObject(ctx, contactsAPIName, contactID, []string{phoneProperty})
	if err != nil {
		return nil, fmt.Errorf("fetch associated contact %s: %w", contactID, err)
	}
	rec.AssociatedContactID = contactID
	if contact != nil {
		rec.Phone = phoneOf(contact.Properties)
	}
	return rec, nil
}

func fetchPrimary(ctx context.Context, up Upstream, t target) (*Record, error) {
	obj, err := up.GetObject(ctx, t.apiType, t.ref.ID, t.properties)
	if errors.Is(err, hubspot.ErrNotFound) {
		return nil, notFound(t.ref)
	}
	if err != nil {
		return nil, err
	}
	if obj == nil || len(obj.Properties) == 0 {
		return nil, notFound(t.ref)
	}
	return normalize(t.ref, t.properties, obj.Properties), nil
}

// normalize keeps the requested properties as display fields and lifts
// phone out. The phone value is preserved exactly as stored upstream.
func normalize(ref Reference, requested []string, props map[string]*string) *Record {
	rec := &Record{
		ID:             ref.ID,
		ObjectTypeCode: ref.ObjectTypeCode,
		DisplayFields:  make(map[string]*string, len(requested)),
		Phone:          phoneOf(props),
	}
	// HubSpot adds hs_object_id, createdate and lastmodifieddate on its own.
	for _, k := range requested {
		v, ok := props[k]
		if !ok || k == phoneProperty {
			continue
		}
		rec.DisplayFields[k] = v
	}
	return rec
}

func phoneOf(props map[string]*string) *string {
	v := props[phoneProperty]
	if v == nil || *v == "" {
		return nil
	}
	phone := *v
	return &phone
}
