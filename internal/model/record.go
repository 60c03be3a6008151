package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is a CRM record: its module, id and raw attribute values as decoded from JSON.
type Record struct {
	Module     string
	ID         string
	Attributes map[string]any
}

// NewRecord builds a record and mirrors id into the attribute set.
func NewRecord(module, id string, attrs map[string]any) Record {
	if attrs == nil {
		attrs = map[string]any{}
	}
	if id != "" {
		attrs["id"] = id
	}
	return Record{Module: module, ID: id, Attributes: attrs}
}

// Get returns the raw attribute value, nil when absent.
func (r Record) Get(field string) any {
	if r.Attributes == nil {
		return nil
	}
	return r.Attributes[field]
}

// String returns the attribute rendered as a plain string.
func (r Record) String(field string) string {
	switch v := r.Get(field).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// UnmarshalJSON reads the REST shape where module and id are ordinary keys.
func (r *Record) UnmarshalJSON(b []byte) error {
	attrs := map[string]any{}
	if err := json.Unmarshal(b, &attrs); err != nil {
		return err
	}
	r.Attributes = attrs
	if m, ok := attrs["_module"].(string); ok {
		r.Module = m
	}
	if id, ok := attrs["id"].(string); ok {
		r.ID = id
	}
	return nil
}

// MarshalJSON writes attributes back with _module and id set.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+2)
	for k, v := range r.Attributes {
		out[k] = v
	}
	if r.Module != "" {
		out["_module"] = r.Module
	}
	if r.ID != "" {
		out["id"] = r.ID
	}
	return json.Marshal(out)
}

// PrimaryEmail returns the first usable address on the record, if any.
func (r Record) PrimaryEmail() string {
	if e := strings.TrimSpace(r.String("email1")); e != "" {
		return e
	}
	list, ok := r.Get("email").([]any)
	if !ok {
		return ""
	}
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if addr, _ := m["email_address"].(string); addr != "" {
			if p, _ := m["primary_address"].(bool); p {
				return addr
			}
		}
	}
	for _, it := range list {
		if m, ok := it.(map[string]any); ok {
			if addr, _ := m["email_address"].(string); addr != "" {
				return addr
			}
		}
	}
	return ""
}
