package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/taxdesk/internal/types"
)

func sampleRecords() []types.TaxRecord {
	return []types.TaxRecord{
		{ID: "1", Entity: "Acme", Country: "USA"},
		{ID: "2", Entity: "Beta", Country: "Peru"},
		{ID: "3", Entity: "Gamma", Country: "USA"},
		{ID: "4", Entity: "Delta", Country: "Chile"},
	}
}

func TestVisible_EmptySelectionReturnsAll(t *testing.T) {
	records := sampleRecords()

	got := Visible(records, Selection{})

	require.Len(t, got, len(records))
	assert.Same(t, &records[0], &got[0], "empty selection must not copy")
}

func TestVisible_SubsetMatchesSelection(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selection
		wantIDs []string
	}{
		{"single country", NewSelection("USA"), []string{"1", "3"}},
		{"two countries", NewSelection("Peru", "Chile"), []string{"2", "4"}},
		{"unknown country", NewSelection("Japan"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Visible(sampleRecords(), tt.sel)

			ids := []string{}
			for _, r := range got {
				assert.True(t, tt.sel.Contains(r.Country), "record %s not in selection", r.ID)
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestVisible_CountryMatchIsExact(t *testing.T) {
	got := Visible(sampleRecords(), NewSelection("usa"))
	assert.Empty(t, got)
}

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	for _, start := range []Selection{{}, NewSelection("USA"), NewSelection("Peru", "USA")} {
		for _, name := range []string{"USA", "Chile"} {
			got := start.Toggle(name).Toggle(name)
			assert.True(t, got.Equal(start), "toggle %q twice on %v", name, start.Names())
		}
	}
}

func TestSelection_ToggleDoesNotMutateReceiver(t *testing.T) {
	sel := NewSelection("USA")
	next := sel.Toggle("Peru")

	assert.Equal(t, []string{"USA"}, sel.Names())
	assert.Equal(t, []string{"USA", "Peru"}, next.Names())
}

func TestSelection_NamesKeepInsertionOrder(t *testing.T) {
	sel := Selection{}.Toggle("Peru").Toggle("Chile").Toggle("USA").Toggle("Chile")

	assert.Equal(t, []string{"Peru", "USA"}, sel.Names())
	assert.Equal(t, 2, sel.Len())
}

func TestNewSelection_IgnoresDuplicates(t *testing.T) {
	sel := NewSelection("USA", "USA", "Peru")
	assert.Equal(t, 2, sel.Len())
}

func TestApply(t *testing.T) {
	body := `[{"entity":"Acme","country":"USA"},{"entity":"Beta","country":"Peru"}]`

	got, err := Apply(body, "[?country=='USA'].entity")
	require.NoError(t, err)
	assert.JSONEq(t, `["Acme"]`, got)

	got, err = Apply(body, "")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	got, err = Apply(body, "missing")
	require.NoError(t, err)
	assert.Equal(t, "null", got)
}

func TestApply_Errors(t *testing.T) {
	_, err := Apply("not json", "a")
	assert.Error(t, err)

	_, err = Apply(`{}`, "[?")
	assert.Error(t, err)
	assert.False(t, IsValidJMESPath("[?"))
	assert.True(t, IsValidJMESPath("[].entity"))
}
