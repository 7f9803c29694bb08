package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/taxdesk/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "nested", "taxdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSaveAndList(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	m.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	before := types.TaxRecord{ID: "1", Entity: "Acme", Country: "USA"}
	require.NoError(t, m.Save(ctx, before, before.Apply(types.TaxUpdate{Entity: "Acme Inc", Country: "USA"}), "http://api"))
	require.NoError(t, m.Save(ctx, before, before.Apply(types.TaxUpdate{Entity: "Acme", Country: "Canada"}), "http://api"))

	entries, err := m.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, "1", newest.RecordID)
	assert.Equal(t, "http://api", newest.BaseURL)

	var after types.TaxRecord
	require.NoError(t, json.Unmarshal([]byte(newest.After), &after))
	assert.Equal(t, "Canada", after.Country)

	ts, err := time.Parse(time.RFC3339, newest.Timestamp)
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2024, 3, 1, 9, 2, 0, 0, time.Local)))
}

func TestList_Limit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec := types.TaxRecord{ID: "1", Entity: "Acme"}
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Save(ctx, rec, rec, ""))
	}

	entries, err := m.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestListForRecordAndClear(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	a := types.TaxRecord{ID: "a"}
	b := types.TaxRecord{ID: "b"}
	require.NoError(t, m.Save(ctx, a, a, ""))
	require.NoError(t, m.Save(ctx, b, b, ""))

	entries, err := m.ListForRecord(ctx, "b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].RecordID)

	require.NoError(t, m.Clear(ctx))
	entries, err = m.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManagerSatisfiesRecorder(t *testing.T) {
	var _ Recorder = newTestManager(t)
}
