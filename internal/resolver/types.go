package resolver

import (
	"encoding/json"
	"strings"
)

// ObjectType is the closed set of CRM object kinds the resolver knows.
type ObjectType int

const (
	Custom ObjectType = iota
	Contact
	Company
	Deal
	Ticket
)

// HubSpot object type IDs for the standard objects.
const (
	ContactTypeCode = "0-1"
	CompanyTypeCode = "0-2"
	DealTypeCode    = "0-3"
	TicketTypeCode  = "0-5"
)

// ParseObjectType maps a type code or API name to an ObjectType.
// Anything unrecognized is Custom.
func ParseObjectType(code string) ObjectType {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case ContactTypeCode, "contact", "contacts":
		return Contact
	case CompanyTypeCode, "company", "companies":
		return Company
	case DealTypeCode, "deal", "deals":
		return Deal
	case TicketTypeCode, "ticket", "tickets":
		return Ticket
	default:
		return Custom
	}
}

// APIName is the object type segment used in CRM API paths.
func (t ObjectType) APIName() string {
	switch t {
	case Contact:
		return "contacts"
	case Company:
		return "companies"
	case Deal:
		return "deals"
	case Ticket:
		return "tickets"
	default:
		return ""
	}
}

func (t ObjectType) String() string {
	switch t {
	case Contact:
		return "Contact"
	case Company:
		return "Company"
	case Deal:
		return "Deal"
	case Ticket:
		return "Ticket"
	default:
		return "CustomObject"
	}
}

// Reference identifies an upstream object.
type Reference struct {
	ID             string `json:"id"`
	ObjectTypeCode string `json:"objectTypeCode"`
}

// Record is the normalized result of a resolution.
type Record struct {
	ID             string
	ObjectTypeCode string
	// DisplayFields holds the requested properties except phone. A nil value
	// means the property exists upstream but is unset.
	DisplayFields map[string]*string
	// Phone is the raw upstream value, or nil when none could be found.
	Phone *string
	// AssociatedContactID is set when the phone came from an associated contact.
	AssociatedContactID string
}

// MarshalJSON flattens the record: display fields sit beside id,
// objectTypeCode and phone, and phone is always present.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.DisplayFields)+4)
	for k, v := range r.DisplayFields {
		out[k] = v
	}
	out["id"] = r.ID
	out["objectTypeCode"] = r.ObjectTypeCode
	out["phone"] = r.Phone
	if r.AssociatedContactID != "" {
		out["associatedContactId"] = r.AssociatedContactID
	}
	return json.Marshal(out)
}

// Field returns a display field value, or "" when missing or unset.
func (r *Record) Field(name string) string {
	if v := r.DisplayFields[name]; v != nil {
		return *v
	}
	return ""
}
