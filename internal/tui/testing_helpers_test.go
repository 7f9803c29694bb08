package tui

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

const (
	testWidth  = 100
	testHeight = 30
)

func sampleTaxes() []types.TaxRecord {
	return []types.TaxRecord{
		{ID: "1", Entity: "Acme Holdings", Gender: "Male", Country: "USA", CreatedAt: "2024-01-15T10:30:00Z"},
		{ID: "2", Entity: "Maple Leaf Trading", Gender: "Female", Country: "Canada", CreatedAt: "2024-02-03T08:00:00Z"},
		{ID: "3", Entity: "Rhine Logistics", Gender: "male", Country: "Germany", RequestDate: "2024-03-21"},
		{ID: "4", Entity: "Sakura Foods", Country: "Japan"},
		{ID: "5", Entity: "Lone Star Energy", Gender: "Other", Country: "USA", CreatedAt: "not a date"},
	}
}

func sampleCountries() []types.Country {
	return []types.Country{
		{ID: "1", Name: "USA"},
		{ID: "2", Name: "Canada"},
		{ID: "3", Name: "Germany"},
		{ID: "4", Name: "Japan"},
		{ID: "5", Name: "France"},
	}
}

// fakeGateway serves fixed data and echoes updates back
type fakeGateway struct {
	mu        sync.Mutex
	taxes     []types.TaxRecord
	countries []types.Country
	loadErr   error
	updateErr error
	updates   []types.TaxRecord
}

func (f *fakeGateway) FetchTaxes(ctx context.Context) ([]types.TaxRecord, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.taxes, nil
}

func (f *fakeGateway) FetchCountries(ctx context.Context) ([]types.Country, error) {
	return f.countries, nil
}

func (f *fakeGateway) UpdateTax(ctx context.Context, id string, fields types.TaxRecord) (types.TaxRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	if f.updateErr != nil {
		return types.TaxRecord{}, f.updateErr
	}
	return fields, nil
}

func (f *fakeGateway) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeRecorder captures history saves
type fakeRecorder struct {
	mu    sync.Mutex
	saved [][2]types.TaxRecord
}

func (r *fakeRecorder) Save(ctx context.Context, before, after types.TaxRecord, baseURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, [2]types.TaxRecord{before, after})
	return nil
}

// CreateTestModel creates a loaded Model sized testWidth x testHeight
func CreateTestModel(t *testing.T) (*Model, *fakeGateway) {
	t.Helper()

	gw := &fakeGateway{taxes: sampleTaxes(), countries: sampleCountries()}
	m := CreateTestModelWithOptions(t, Options{Gateway: gw})
	m.Update(dataLoadedMsg{snap: store.Snapshot{Taxes: gw.taxes, Countries: gw.countries}})
	return m, gw
}

// CreateTestModelWithOptions creates a sized Model that has not loaded data yet
func CreateTestModelWithOptions(t *testing.T, opts Options) *Model {
	t.Helper()

	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}

	m, err := New(opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	t.Cleanup(m.Cleanup)

	return &m
}

// AssertModelField checks a model field value
func AssertModelField(t *testing.T, fieldName string, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// runCmd executes cmd and feeds the results of async work back into m.
// Commands that do not finish quickly (timers, cursor blink) are skipped.
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collectMsgs(cmd) {
		switch msg.(type) {
		case dataLoadedMsg, taxSavedMsg, saveFailedMsg, copiedMsg, themeSavedMsg:
			m.Update(msg)
		}
	}
}

func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collectMsgs(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func click(m *Model, x, y int) tea.Cmd {
	_, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	return cmd
}
