// Package adapter defines the backend-neutral contract (§4.1) that the
// mariadb and postgres packages implement, plus the Document value and
// configuration shared by both.
package adapter

import (
	"encoding/json"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// AttributeValue is the tagged sum type §9's re-architecture hint calls for,
// replacing the dynamic attribute maps of the original PHP/TS core. It wraps
// a protobuf structpb.Value so that arrays/objects marshal through the same
// value representation the teacher's AST nodes (pb.Expression) use for
// typed literals, while still round-tripping cleanly to/from a JSON column.
type AttributeValue struct {
	v *structpb.Value
}

func NewStringValue(s string) AttributeValue   { return AttributeValue{v: structpb.NewStringValue(s)} }
func NewNumberValue(n float64) AttributeValue  { return AttributeValue{v: structpb.NewNumberValue(n)} }
func NewBoolValue(b bool) AttributeValue       { return AttributeValue{v: structpb.NewBoolValue(b)} }
func NewNullValue() AttributeValue             { return AttributeValue{v: structpb.NewNullValue()} }

// NewArrayValue wraps a Go slice of primitives as a JSON-array attribute
// value (the data model's "array" promotion, §3).
func NewArrayValue(items []any) (AttributeValue, error) {
	lv, err := structpb.NewList(items)
	if err != nil {
		return AttributeValue{}, err
	}
	return AttributeValue{v: structpb.NewListValue(lv)}, nil
}

// NewObjectValue wraps a Go map as a JSON-object attribute value.
func NewObjectValue(m map[string]any) (AttributeValue, error) {
	sv, err := structpb.NewStruct(m)
	if err != nil {
		return AttributeValue{}, err
	}
	return AttributeValue{v: structpb.NewStructValue(sv)}, nil
}

// FromAny wraps an arbitrary decoded JSON value (string/float64/bool/nil/
// []any/map[string]any) as an AttributeValue.
func FromAny(val any) (AttributeValue, error) {
	v, err := structpb.NewValue(val)
	if err != nil {
		return AttributeValue{}, err
	}
	return AttributeValue{v: v}, nil
}

// Native returns the value as a plain Go value (string, float64, bool, nil,
// []any, or map[string]any).
func (a AttributeValue) Native() any {
	if a.v == nil {
		return nil
	}
	return a.v.AsInterface()
}

// IsArray reports whether this value should be persisted in a JSON column.
func (a AttributeValue) IsArray() bool {
	return a.v != nil && a.v.GetListValue() != nil
}

// IsObject reports whether this value is a JSON object.
func (a AttributeValue) IsObject() bool {
	return a.v != nil && a.v.GetStructValue() != nil
}

// JSON marshals the value the way array/object columns are persisted.
func (a AttributeValue) JSON() ([]byte, error) {
	return json.Marshal(a.Native())
}

func (a AttributeValue) MarshalJSON() ([]byte, error) { return a.JSON() }

func (a *AttributeValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := FromAny(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Document is the persistent entity of §3: external id, internal id,
// timestamps, ordered permissions, optional tenant, and an open attribute
// map. Its lifetime is bounded by the call it participates in — callers
// must not retain a Document across adapter calls expecting it to reflect
// later writes.
type Document struct {
	ID         string // $id
	InternalID int64  // $internalId
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Permissions []string // ordered, e.g. `read("any")`
	Tenant     *int64
	Attributes map[string]AttributeValue
}

func NewDocument(id string) *Document {
	return &Document{ID: id, Attributes: map[string]AttributeValue{}}
}

func (d *Document) GetID() string               { return d.ID }
func (d *Document) GetInternalID() int64         { return d.InternalID }
func (d *Document) GetCreatedAt() time.Time      { return d.CreatedAt }
func (d *Document) GetUpdatedAt() time.Time      { return d.UpdatedAt }
func (d *Document) GetPermissions() []string     { return d.Permissions }
func (d *Document) GetAttributes() map[string]AttributeValue { return d.Attributes }

func (d *Document) SetAttribute(name string, value AttributeValue) {
	if d.Attributes == nil {
		d.Attributes = map[string]AttributeValue{}
	}
	d.Attributes[name] = value
}

// GetPermissionsByType filters Permissions down to one action, e.g. "read".
// Permissions are strings of the form action("role"); a regex equivalent to
// the façade's (\w+)\("([^"]+)"\) is used for parsing, see ParsePermission.
func (d *Document) GetPermissionsByType(action string) []string {
	var out []string
	for _, p := range d.Permissions {
		a, _, ok := ParsePermission(p)
		if ok && a == action {
			out = append(out, p)
		}
	}
	return out
}
