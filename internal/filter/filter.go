package filter

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
	"github.com/studiowebux/taxdesk/internal/types"
)

// Selection is the set of country names the table is filtered by.
// Insertion order is kept so the selection renders in a stable order.
type Selection struct {
	names []string
	index map[string]struct{}
}

// NewSelection creates a selection holding names, duplicates ignored
func NewSelection(names ...string) Selection {
	var s Selection
	for _, n := range names {
		if !s.Contains(n) {
			s.add(n)
		}
	}
	return s
}

// Contains reports whether name is selected
func (s Selection) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of selected names
func (s Selection) Len() int {
	return len(s.names)
}

// IsEmpty reports whether nothing is selected, which means no filtering
func (s Selection) IsEmpty() bool {
	return len(s.names) == 0
}

// Names returns the selected names in insertion order
func (s Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Toggle returns a new selection with name added, or removed if present
func (s Selection) Toggle(name string) Selection {
	next := NewSelection(s.names...)
	if next.Contains(name) {
		next.remove(name)
	} else {
		next.add(name)
	}
	return next
}

// Equal reports whether both selections hold the same names, order ignored
func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, n := range s.names {
		if !other.Contains(n) {
			return false
		}
	}
	return true
}

func (s *Selection) add(name string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
}

func (s *Selection) remove(name string) {
	delete(s.index, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return
		}
	}
}

// Visible returns the records whose country is selected.
// An empty selection returns records itself, unfiltered.
func Visible(records []types.TaxRecord, sel Selection) []types.TaxRecord {
	if sel.IsEmpty() {
		return records
	}

	filtered := make([]types.TaxRecord, 0, len(records))
	for _, rec := range records {
		if sel.Contains(rec.Country) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Apply evaluates a JMESPath query against a JSON document and returns
// the indented JSON result
func Apply(body string, query string) (string, error) {
	if query == "" {
		return body, nil
	}

	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(query)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", query, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}

	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	return string(output), nil
}

// IsValidJMESPath checks if an expression is valid JMESPath syntax
func IsValidJMESPath(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}
