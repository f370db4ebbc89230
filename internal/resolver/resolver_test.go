package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonaxhub/internal/hubspot"
)

type getCall struct {
	objectType string
	id         string
	properties []string
}

type fakeUpstream struct {
	objects      map[string]*hubspot.Object // "type/id"
	associations map[string][]hubspot.Association
	getErr       map[string]error
	assocErr     error

	gets   []getCall
	assocs int
}

func (f *fakeUpstream) GetObject(_ context.Context, objectType, id string, properties []string) (*hubspot.Object, error) {
	f.gets = append(f.gets, getCall{objectType: objectType, id: id, properties: properties})
	key := objectType + "/" + id
	if err := f.getErr[key]; err != nil {
		return nil, err
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, hubspot.ErrNotFound
	}
	return obj, nil
}

func (f *fakeUpstream) ListAssociations(_ context.Context, fromType, id, toType string) ([]hubspot.Association, error) {
	f.assocs++
	if f.assocErr != nil {
		return nil, f.assocErr
	}
	return f.associations[fromType+"/"+id+"/"+toType], nil
}

func (f *fakeUpstream) calls() int {
	return len(f.gets) + f.assocs
}

func props(kv ...string) map[string]*string {
	m := make(map[string]*string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		m[kv[i]] = &v
	}
	return m
}

func TestResolveContact(t *testing.T) {
	up := &fakeUpstream{objects: map[string]*hubspot.Object{
		"contacts/123": {ID: "123", Properties: props("phone", "+55 11 9999-0000", "firstname", "Ana")},
	}}

	rec, err := New(up).Resolve(context.Background(), Reference{ID: "123", ObjectTypeCode: "0-1"})
	require.NoError(t, err)

	require.Len(t, up.gets, 1)
	assert.Equal(t, 0, up.assocs)
	assert.Equal(t, []string{"phone", "firstname", "lastname", "email"}, up.gets[0].properties)

	require.NotNil(t, rec.Phone)
	assert.Equal(t, "+55 11 9999-0000", *rec.Phone, "resolver keeps the raw phone")
	assert.Equal(t, "Ana", rec.Field("firstname"))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"123","objectTypeCode":"0-1","phone":"+55 11 9999-0000","firstname":"Ana"}`, string(data))
}

func TestResolveCompany(t *testing.T) {
	up := &fakeUpstream{objects: map[string]*hubspot.Object{
		"companies/7": {ID: "7", Properties: props("phone", "3333-4444", "name", "Sonax")},
	}}

	rec, err := New(up).Resolve(context.Background(), Reference{ID: "7", ObjectTypeCode: CompanyTypeCode})
	require.NoError(t, err)

	assert.Equal(t, 1, up.calls())
	assert.Equal(t, []string{"phone", "name"}, up.gets[0].properties)
	assert.Equal(t, "Sonax", rec.Field("name"))
	assert.Equal(t, "3333-4444", *rec.Phone)
}

func TestResolveViaAssociatedContact(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		apiType  string
		props    []string
		primary  map[string]*string
		display  string
		expected string
	}{
		{
			name:     "deal",
			code:     DealTypeCode,
			apiType:  "deals",
			props:    []string{"dealname"},
			primary:  props("dealname", "Big deal"),
			display:  "dealname",
			expected: "Big deal",
		},
		{
			name:     "ticket",
			code:     TicketTypeCode,
			apiType:  "tickets",
			props:    []string{"subject", "content"},
			primary:  props("subject", "Line down", "content", "customer cannot call out"),
			display:  "subject",
			expected: "Line down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" with association", func(t *testing.T) {
			up := &fakeUpstream{
				objects: map[string]*hubspot.Object{
					tt.apiType + "/9": {ID: "9", Properties: tt.primary},
					"contacts/501":    {ID: "501", Properties: props("phone", "(11) 98888-7777")},
					"contacts/502":    {ID: "502", Properties: props("phone", "000")},
				},
				associations: map[string][]hubspot.Association{
					tt.apiType + "/9/contacts": {{ID: "501"}, {ID: "502"}},
				},
			}

			rec, err := New(up).Resolve(context.Background(), Reference{ID: "9", ObjectTypeCode: tt.code})
			require.NoError(t, err)

			require.Len(t, up.gets, 2)
			assert.Equal(t, 1, up.assocs)
			assert.Equal(t, getCall{objectType: tt.apiType, id: "9", properties: tt.props}, up.gets[0])
			assert.Equal(t, getCall{objectType: "contacts", id: "501", properties: []string{"phone"}}, up.gets[1], "first association wins")

			require.NotNil(t, rec.Phone)
			assert.Equal(t, "(11) 98888-7777", *rec.Phone)
			assert.Equal(t, "501", rec.AssociatedContactID)
			assert.Equal(t, tt.expected, rec.Field(tt.display))
		})

		t.Run(tt.name+" without association", func(t *testing.T) {
			up := &fakeUpstream{objects: map[string]*hubspot.Object{
				tt.apiType + "/9": {ID: "9", Properties: tt.primary},
			}}

			rec, err := New(up).Resolve(context.Background(), Reference{ID: "9", ObjectTypeCode: tt.code})
			require.NoError(t, err)

			assert.Len(t, up.gets, 1)
			assert.Equal(t, 1, up.assocs)
			assert.Nil(t, rec.Phone)

			data, err := json.Marshal(rec)
			require.NoError(t, err)
			var out map[string]any
			require.NoError(t, json.Unmarshal(data, &out))
			assert.Contains(t, out, "phone")
			assert.Nil(t, out["phone"])
		})
	}
}

func TestResolveCustomObject(t *testing.T) {
	t.Run("default properties", func(t *testing.T) {
		up := &fakeUpstream{objects: map[string]*hubspot.Object{
			"2-1234/77": {ID: "77", Properties: props("phone", "5511")},
		}}

		rec, err := New(up).Resolve(context.Background(), Reference{ID: "77", ObjectTypeCode: "2-1234"})
		require.NoError(t, err)

		assert.Equal(t, []getCall{{objectType: "2-1234", id: "77", properties: []string{"phone"}}}, up.gets)
		assert.Equal(t, 0, up.assocs)
		assert.Equal(t, "5511", *rec.Phone)
	})

	t.Run("configured properties", func(t *testing.T) {
		up := &fakeUpstream{objects: map[string]*hubspot.Object{
			"2-1234/77": {ID: "77", Properties: props("mobile", "1")},
		}}
		r := New(up, WithCustomProperties(map[string][]string{"2-1234": {"mobile"}}))

		rec, err := r.Resolve(context.Background(), Reference{ID: "77", ObjectTypeCode: "2-1234"})
		require.NoError(t, err)

		assert.Equal(t, []string{"phone", "mobile"}, up.gets[0].properties)
		assert.Nil(t, rec.Phone)
		assert.Equal(t, "1", rec.Field("mobile"))
	})

	t.Run("caller properties win", func(t *testing.T) {
		up := &fakeUpstream{objects: map[string]*hubspot.Object{
			"p_pets/3": {ID: "3", Properties: props("phone", "9", "pet_name", "Rex")},
		}}
		r := New(up, WithCustomProperties(map[string][]string{"p_pets": {"mobile"}}))

		_, err := r.ResolveWithProperties(context.Background(), Reference{ID: "3", ObjectTypeCode: "p_pets"}, []string{"pet_name", "phone"})
		require.NoError(t, err)
		assert.Equal(t, []string{"pet_name", "phone"}, up.gets[0].properties)
	})

	t.Run("unknown code falls back to generic lookup", func(t *testing.T) {
		up := &fakeUpstream{objects: map[string]*hubspot.Object{
			"0-999/1": {ID: "1", Properties: props("phone", "1")},
		}}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "1", ObjectTypeCode: "0-999"})
		require.NoError(t, err)
		assert.Equal(t, "0-999", up.gets[0].objectType)
	})
}

func TestResolveInvalidRequest(t *testing.T) {
	for _, ref := range []Reference{
		{ID: "", ObjectTypeCode: "0-1"},
		{ID: "123", ObjectTypeCode: ""},
		{ID: "  ", ObjectTypeCode: " "},
	} {
		up := &fakeUpstream{}
		_, err := New(up).Resolve(context.Background(), ref)

		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, 0, up.calls(), "no upstream call for %+v", ref)
	}
}

func TestResolveNotFound(t *testing.T) {
	t.Run("upstream 404", func(t *testing.T) {
		_, err := New(&fakeUpstream{}).Resolve(context.Background(), Reference{ID: "1", ObjectTypeCode: "0-1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no properties", func(t *testing.T) {
		up := &fakeUpstream{objects: map[string]*hubspot.Object{"contacts/1": {ID: "1"}}}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "1", ObjectTypeCode: "0-1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deal not found skips association lookup", func(t *testing.T) {
		up := &fakeUpstream{}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "9", ObjectTypeCode: "0-3"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, up.assocs)
	})
}

func TestResolveUpstreamFailure(t *testing.T) {
	t.Run("primary fetch", func(t *testing.T) {
		up := &fakeUpstream{getErr: map[string]error{
			"contacts/1": &hubspot.APIError{StatusCode: 500, Message: "internal error"},
		}}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "1", ObjectTypeCode: "0-1"})

		assert.ErrorIs(t, err, ErrUpstreamFailure)
		assert.Contains(t, err.Error(), "internal error")
	})

	t.Run("association query", func(t *testing.T) {
		up := &fakeUpstream{
			objects:  map[string]*hubspot.Object{"deals/9": {ID: "9", Properties: props("dealname", "x")}},
			assocErr: errors.New("connection reset"),
		}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "9", ObjectTypeCode: "0-3"})

		assert.ErrorIs(t, err, ErrUpstreamFailure)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("associated contact missing", func(t *testing.T) {
		up := &fakeUpstream{
			objects:      map[string]*hubspot.Object{"tickets/5": {ID: "5", Properties: props("subject", "x")}},
			associations: map[string][]hubspot.Association{"tickets/5/contacts": {{ID: "404"}}},
		}
		_, err := New(up).Resolve(context.Background(), Reference{ID: "5", ObjectTypeCode: "0-5"})

		assert.ErrorIs(t, err, ErrUpstreamFailure)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestParseObjectType(t *testing.T) {
	cases := map[string]ObjectType{
		"0-1":       Contact,
		"contacts":  Contact,
		"0-2":       Company,
		"COMPANIES": Company,
		"0-3":       Deal,
		"0-5":       Ticket,
		"tickets":   Ticket,
		"0-4":       Custom,
		"2-1234":    Custom,
		"":          Custom,
	}
	for code, want := range cases {
		assert.Equal(t, want, ParseObjectType(code), code)
	}
}

func TestEmptyPhoneIsNull(t *testing.T) {
	up := &fakeUpstream{objects: map[string]*hubspot.Object{
		"contacts/1": {ID: "1", Properties: props("phone", "", "firstname", "Ana")},
	}}
	rec, err := New(up).Resolve(context.Background(), Reference{ID: "1", ObjectTypeCode: "0-1"})
	require.NoError(t, err)
	assert.Nil(t, rec.Phone)
}

func TestResolveDropsUnrequestedProperties(t *testing.T) {
	up := &fakeUpstream{objects: map[string]*hubspot.Object{
		"contacts/123": {ID: "123", Properties: props(
			"phone", "1",
			"firstname", "Ana",
			"hs_object_id", "123",
			"createdate", "2024-01-01T00:00:00Z",
			"lastmodifieddate", "2024-02-01T00:00:00Z",
		)},
	}}

	rec, err := New(up).Resolve(context.Background(), Reference{ID: "123", ObjectTypeCode: "0-1"})
	require.NoError(t, err)

	assert.NotContains(t, rec.DisplayFields, "hs_object_id")
	assert.NotContains(t, rec.DisplayFields, "createdate")
	assert.NotContains(t, rec.DisplayFields, "lastmodifieddate")

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"123","objectTypeCode":"0-1","phone":"1","firstname":"Ana"}`, string(data))
}
