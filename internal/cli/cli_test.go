package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/history"
	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/mock"
	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

func newBackend(t *testing.T, failUpdates bool) (*gateway.Client, *mock.Server) {
	t.Helper()

	cfg := mock.DefaultConfig()
	cfg.Logging = false
	cfg.FailUpdates = failUpdates
	srv := mock.NewServer(cfg)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	gw, err := gateway.New(gateway.Options{BaseURL: ts.URL})
	require.NoError(t, err)
	return gw, srv
}

func newHistory(t *testing.T) *history.Manager {
	t.Helper()
	mgr, err := history.NewManager(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestList_Text(t *testing.T) {
	gw, _ := newBackend(t, false)
	var out bytes.Buffer

	require.NoError(t, List(context.Background(), gw, &out, ListOptions{}))

	text := out.String()
	assert.Contains(t, text, "ENTITY")
	assert.Contains(t, text, "Acme Holdings")
	assert.Contains(t, text, "Sakura Foods")
	assert.Regexp(t, `4\s+Sakura Foods\s+-\s+-\s+Japan`, text)
}

func TestList_CountryFilter(t *testing.T) {
	gw, _ := newBackend(t, false)
	var out bytes.Buffer

	err := List(context.Background(), gw, &out, ListOptions{Countries: []string{"USA"}, Output: OutputJSON})
	require.NoError(t, err)

	var records []types.TaxRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "USA", r.Country)
	}
}

func TestList_YAML(t *testing.T) {
	gw, _ := newBackend(t, false)
	var out bytes.Buffer

	require.NoError(t, List(context.Background(), gw, &out, ListOptions{Countries: []string{"Japan"}, Output: OutputYAML}))

	var records []map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Sakura Foods", records[0]["entity"])
}

func TestList_Query(t *testing.T) {
	gw, _ := newBackend(t, false)
	var out bytes.Buffer

	err := List(context.Background(), gw, &out, ListOptions{Countries: []string{"USA"}, Query: "[].entity"})
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &names))
	assert.Equal(t, []string{"Acme Holdings", "Lone Star Energy"}, names)
}

func TestList_InvalidQuery(t *testing.T) {
	gw, _ := newBackend(t, false)

	err := List(context.Background(), gw, &bytes.Buffer{}, ListOptions{Query: "[?"})
	assert.Error(t, err)
}

func TestList_UnknownOutput(t *testing.T) {
	gw, _ := newBackend(t, false)

	err := List(context.Background(), gw, &bytes.Buffer{}, ListOptions{Output: "xml"})
	assert.Error(t, err)
}

func TestUpdate_RecordsHistory(t *testing.T) {
	gw, srv := newBackend(t, false)
	hist := newHistory(t)
	var out, logs bytes.Buffer
	logger.Initialize(&logs, slog.LevelInfo)
	t.Cleanup(func() { logger.Initialize(io.Discard, slog.LevelInfo) })

	err := Update(context.Background(), gw, hist, &out, UpdateOptions{
		ID:      "2",
		Name:    "  Maple Leaf Holdings ",
		Output:  OutputJSON,
		BaseURL: "http://backend.test",
	})
	require.NoError(t, err)

	var saved types.TaxRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &saved))
	assert.Equal(t, "Maple Leaf Holdings", saved.Entity)
	assert.Equal(t, "Canada", saved.Country)
	assert.Equal(t, "Maple Leaf Holdings", srv.Taxes()[1].Entity)

	entries, err := hist.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].RecordID)
	assert.Equal(t, "http://backend.test", entries[0].BaseURL)

	assert.Contains(t, logs.String(), "record updated")
	assert.Contains(t, logs.String(), "Maple Leaf Holdings")
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    UpdateOptions
		wantErr error
	}{
		{"unknown id", UpdateOptions{ID: "99", Name: "X"}, ErrRecordNotFound},
		{"blank name", UpdateOptions{ID: "1", Name: "   "}, store.ErrInvalidForm},
		{"unknown country", UpdateOptions{ID: "1", Country: "Atlantis"}, store.ErrInvalidForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, srv := newBackend(t, false)

			err := Update(context.Background(), gw, nil, &bytes.Buffer{}, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "Acme Holdings", srv.Taxes()[0].Entity)
		})
	}
}

func TestUpdate_BackendFailure(t *testing.T) {
	gw, _ := newBackend(t, true)
	hist := newHistory(t)

	err := Update(context.Background(), gw, hist, &bytes.Buffer{}, UpdateOptions{ID: "1", Name: "New"})
	require.Error(t, err)
	assert.Equal(t, store.SaveFailureMessage, err.Error())

	entries, err := hist.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeLister struct {
	entries []types.EditEntry
	err     error
}

func (f fakeLister) List(ctx context.Context, limit int) ([]types.EditEntry, error) {
	if limit > 0 && len(f.entries) > limit {
		return f.entries[:limit], f.err
	}
	return f.entries, f.err
}

func (f fakeLister) ListForRecord(ctx context.Context, recordID string) ([]types.EditEntry, error) {
	var out []types.EditEntry
	for _, e := range f.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, f.err
}

func TestHistory_Text(t *testing.T) {
	lister := fakeLister{entries: []types.EditEntry{{
		ID:        1,
		Timestamp: "2024-05-01T10:00:00Z",
		RecordID:  "1",
		Before:    `{"id":"1","entity":"Acme","country":"USA"}`,
		After:     `{"id":"1","entity":"Acme Global","country":"Canada"}`,
		BaseURL:   "http://localhost:3000",
	}}}
	var out bytes.Buffer

	require.NoError(t, History(context.Background(), lister, &out, HistoryOptions{Limit: 10, Output: OutputText}))
	assert.Contains(t, out.String(), `entity "Acme" -> "Acme Global", country USA -> Canada`)
}

func TestHistory_Empty(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, History(context.Background(), fakeLister{}, &out, HistoryOptions{Limit: 10}))
	assert.Equal(t, "No edits recorded\n", out.String())
}

func TestHistory_SingleRecord(t *testing.T) {
	hist := newHistory(t)
	ctx := context.Background()
	acme := types.TaxRecord{ID: "1", Entity: "Acme", Country: "USA"}
	maple := types.TaxRecord{ID: "2", Entity: "Maple", Country: "Canada"}
	require.NoError(t, hist.Save(ctx, acme, acme.Apply(types.TaxUpdate{Entity: "Acme Global", Country: "USA"}), "http://localhost:3000"))
	require.NoError(t, hist.Save(ctx, maple, maple.Apply(types.TaxUpdate{Entity: "Maple Ltd", Country: "Canada"}), "http://localhost:3000"))
	require.NoError(t, hist.Save(ctx, acme, acme.Apply(types.TaxUpdate{Entity: "Acme", Country: "Japan"}), "http://localhost:3000"))

	var out bytes.Buffer
	require.NoError(t, History(ctx, hist, &out, HistoryOptions{Output: OutputJSON, Record: "1"}))

	var entries []types.EditEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "1", e.RecordID)
	}

	out.Reset()
	require.NoError(t, History(ctx, hist, &out, HistoryOptions{Limit: 1, Record: "1"}))
	assert.Contains(t, out.String(), "country USA -> Japan")
	assert.NotContains(t, out.String(), "Acme Global")
}

func TestHistory_Error(t *testing.T) {
	err := History(context.Background(), fakeLister{err: errors.New("locked")}, &bytes.Buffer{}, HistoryOptions{Limit: 10})
	assert.Error(t, err)
}

func TestKeys_Text(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, Keys(&out, keybinds.NewDefaultRegistry(), ""))

	text := out.String()
	assert.Contains(t, text, "VIEW")
	assert.Regexp(t, `table\s+f\s+toggle_filter`, text)
	assert.Regexp(t, `edit\s+enter\s+submit`, text)
	assert.Regexp(t, `inspect\s+ctrl\+c\s+quit_force`, text)
}

func TestKeys_ShadowedGlobalIsHidden(t *testing.T) {
	r := keybinds.NewRegistry()
	r.Register(keybinds.ContextGlobal, "q", keybinds.ActionQuitForce)
	r.Register(keybinds.ContextTable, "q", keybinds.ActionQuit)
	var out bytes.Buffer

	require.NoError(t, Keys(&out, r, OutputJSON))

	var rows []KeyBinding
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	assert.Contains(t, rows, KeyBinding{View: "table", Key: "q", Action: "quit"})
	assert.NotContains(t, rows, KeyBinding{View: "table", Key: "q", Action: "quit_force"})
	assert.Contains(t, rows, KeyBinding{View: "filter", Key: "q", Action: "quit_force"})
}

func TestKeys_UnknownOutput(t *testing.T) {
	assert.Error(t, Keys(&bytes.Buffer{}, keybinds.NewDefaultRegistry(), "xml"))
}

func TestCountrySelector(t *testing.T) {
	countries := []types.Country{{ID: "1", Name: "USA"}, {ID: "2", Name: "Canada"}, {ID: "3", Name: "Japan"}}

	t.Run("preselects current and picks on enter", func(t *testing.T) {
		m := newCountrySelector(countries, "Canada")
		assert.Equal(t, 1, m.list.Index())

		final, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		final, cmd := final.(selectorModel).Update(tea.KeyMsg{Type: tea.KeyEnter})

		assert.NotNil(t, cmd)
		assert.Equal(t, "Japan", final.(selectorModel).choice)
	})

	t.Run("q cancels", func(t *testing.T) {
		m := newCountrySelector(countries, "USA")
		final, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

		assert.Empty(t, final.(selectorModel).choice)
		assert.True(t, final.(selectorModel).quitting)
	})
}
