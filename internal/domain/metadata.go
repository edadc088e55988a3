package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Well-known metadata keys.
const (
	MetaStoreName = "store_name"
	MetaSource    = "source"
	MetaRequestID = "request_id"
)

// SourceSellerRequest tags sellers provisioned by an approved seller request.
const SourceSellerRequest = "seller_request"

// Metadata is an open key-value bag with typed accessors for the well-known keys.
// Unknown keys are kept in Extra and round-trip untouched.
type Metadata struct {
	StoreName string
	Source    string
	RequestID string
	Extra     map[string]any
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = cloneValue(v)
		}
	}
	return out
}

// Merge overlays other onto m. Empty well-known fields in other leave m untouched.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.Clone()
	if other.StoreName != "" {
		out.StoreName = other.StoreName
	}
	if other.Source != "" {
		out.Source = other.Source
	}
	if other.RequestID != "" {
		out.RequestID = other.RequestID
	}
	for k, v := range other.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = cloneValue(v)
	}
	return out
}

// IsEmpty reports whether m has no keys at all.
func (m Metadata) IsEmpty() bool {
	return m.StoreName == "" && m.Source == "" && m.RequestID == "" && len(m.Extra) == 0
}

// Map flattens m into a plain map.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = cloneValue(v)
	}
	if m.StoreName != "" {
		out[MetaStoreName] = m.StoreName
	}
	if m.Source != "" {
		out[MetaSource] = m.Source
	}
	if m.RequestID != "" {
		out[MetaRequestID] = m.RequestID
	}
	return out
}

// MetadataFromMap splits a plain map into well-known keys and the open bag.
// Well-known keys holding non-string values stay in Extra.
func MetadataFromMap(src map[string]any) Metadata {
	var m Metadata
	for k, v := range src {
		s, isString := v.(string)
		switch {
		case k == MetaStoreName && isString:
			m.StoreName = s
		case k == MetaSource && isString:
			m.Source = s
		case k == MetaRequestID && isString:
			m.RequestID = s
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = cloneValue(v)
		}
	}
	return m
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = MetadataFromMap(raw)
	return nil
}

// Value stores metadata as a JSON object.
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m.Map())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON object column.
func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return m.UnmarshalJSON(v)
	case string:
		return m.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("metadata: cannot scan %T", src)
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("string list: cannot scan %T", src)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Clone returns a copy of l.
func (l StringList) Clone() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	copy(out, l)
	return out
}

// RawJSON holds an opaque structured value such as a postal address.
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = nil
		return nil
	}
	*r = append((*r)[:0], b...)
	return nil
}

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return string(r), nil
}

func (r *RawJSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append(RawJSON(nil), v...)
	case string:
		*r = RawJSON(v)
	default:
		return fmt.Errorf("raw json: cannot scan %T", src)
	}
	return nil
}

// Clone returns a copy of r.
func (r RawJSON) Clone() RawJSON {
	if r == nil {
		return nil
	}
	return append(RawJSON(nil), r...)
}
