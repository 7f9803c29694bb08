package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Known JSON keys of a tax record. Everything else lands in TaxRecord.Extra.
const (
	fieldID          = "id"
	fieldEntity      = "entity"
	fieldGender      = "gender"
	fieldCountry     = "country"
	fieldCreatedAt   = "createdAt"
	fieldRequestDate = "request_date"
)

var knownFields = []string{fieldID, fieldEntity, fieldGender, fieldCountry, fieldCreatedAt, fieldRequestDate}

// TaxRecord is a customer tax line as served by GET /taxes
type TaxRecord struct {
	ID          string
	Entity      string
	Gender      string
	Country     string
	CreatedAt   string
	RequestDate string

	// Extra holds fields the admin view does not render, kept verbatim so
	// an update sends them back untouched
	Extra map[string]json.RawMessage

	// fetched holds the known keys as they arrived, so unchanged fields are
	// written back with their original JSON type
	fetched map[string]fetchedField
}

type fetchedField struct {
	raw  json.RawMessage
	text string
}

// TaxUpdate carries the two fields the edit form can change
type TaxUpdate struct {
	Entity  string `json:"entity"`
	Country string `json:"country"`
}

// Country is reference data served by GET /countries
type Country struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Timestamp returns the creation timestamp, preferring createdAt over request_date
func (r TaxRecord) Timestamp() string {
	if r.CreatedAt != "" {
		return r.CreatedAt
	}
	return r.RequestDate
}

// Apply returns a copy of the record with the update's fields replaced
func (r TaxRecord) Apply(u TaxUpdate) TaxRecord {
	out := r
	out.Entity = u.Entity
	out.Country = u.Country
	return out
}

// Fields returns the record as a generic map, extras included
func (r TaxRecord) Fields() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtraKeys returns the names of the extra fields in sorted order
func (r TaxRecord) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes the known fields followed by the extras. A known field
// still holding its fetched value is written with the fetched token.
func (r TaxRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+len(knownFields))
	for k, v := range r.Extra {
		out[k] = v
	}
	for _, key := range knownFields {
		value := *r.field(key)
		if f, ok := r.fetched[key]; ok && f.text == value {
			out[key] = f.raw
			continue
		}
		if value == "" && (key == fieldCreatedAt || key == fieldRequestDate) {
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps every other field as raw JSON
func (r *TaxRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := TaxRecord{fetched: make(map[string]fetchedField)}
	for _, key := range knownFields {
		token, present := raw[key]

		var text string
		var err error
		if key == fieldID {
			text, err = takeScalar(raw, key)
		} else {
			text, err = takeString(raw, key)
		}
		if err != nil {
			return err
		}

		*rec.field(key) = text
		if present {
			rec.fetched[key] = fetchedField{raw: token, text: text}
		}
	}
	if len(raw) > 0 {
		rec.Extra = raw
	}

	*r = rec
	return nil
}

func (r *TaxRecord) field(key string) *string {
	switch key {
	case fieldID:
		return &r.ID
	case fieldEntity:
		return &r.Entity
	case fieldGender:
		return &r.Gender
	case fieldCountry:
		return &r.Country
	case fieldCreatedAt:
		return &r.CreatedAt
	case fieldRequestDate:
		return &r.RequestDate
	}
	panic("unknown tax record field " + key)
}

// UnmarshalJSON accepts string or numeric ids
func (c *Country) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := takeScalar(raw, fieldID)
	if err != nil {
		return err
	}
	name, err := takeString(raw, "name")
	if err != nil {
		return err
	}
	*c = Country{ID: id, Name: name}
	return nil
}

// MarshalYAML lets yaml.v3 print records with their extras
func (r TaxRecord) MarshalYAML() (interface{}, error) {
	return r.Fields()
}

// takeString removes key from raw and decodes it as a string; null and absent give ""
func takeString(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	delete(raw, key)
	if isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("field %q: %w", key, err)
	}
	return s, nil
}

// takeScalar is takeString that also accepts numbers, keeping their literal text
func takeScalar(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) > 0 && trimmed[0] != '"' && !isNull(trimmed) {
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", fmt.Errorf("field %q: %w", key, err)
		}
		delete(raw, key)
		return n.String(), nil
	}
	return takeString(raw, key)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
