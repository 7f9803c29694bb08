package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studiowebux/taxdesk/internal/filter"
	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/types"
	"golang.org/x/sync/errgroup"
)

// User-facing messages. Causes go to the log, never to the screen.
const (
	LoadFailureMessage = "Failed to load data"
	SaveFailureMessage = "Failed to save changes. Please try again."
)

var (
	// ErrInvalidForm is returned by BeginSave for a blank name or no country
	ErrInvalidForm = errors.New("name and country are required")

	// ErrNoSession is returned by BeginSave when no editable session is open
	ErrNoSession = errors.New("no record is open for editing")
)

// Snapshot is the data returned by a successful initial load
type Snapshot struct {
	Taxes     []types.TaxRecord
	Countries []types.Country
}

// Fetch loads taxes and countries concurrently and returns once both
// calls have settled. Any failure discards the other result.
func Fetch(ctx context.Context, gw gateway.Gateway) (Snapshot, error) {
	g, ctx := errgroup.WithContext(ctx)

	var snap Snapshot

	g.Go(func() error {
		taxes, err := gw.FetchTaxes(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch taxes: %w", err)
		}
		snap.Taxes = taxes
		return nil
	})

	g.Go(func() error {
		countries, err := gw.FetchCountries(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch countries: %w", err)
		}
		snap.Countries = countries
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Store owns all view state. It is not safe for concurrent use: the
// Bubble Tea event loop is its only writer.
type Store struct {
	phase     Phase
	records   []types.TaxRecord
	countries []types.Country

	selection  filter.Selection
	filterOpen bool

	edit EditState

	// memoized output of filter.Visible, valid while both versions match
	recordsVersion   int
	selectionVersion int
	visible          []types.TaxRecord
	visibleKey       [2]int
	visibleValid     bool
}

// New creates a store in the Loading phase with no edit session
func New() *Store {
	return &Store{
		phase: Loading{},
		edit:  EditClosed{},
	}
}

// Phase returns the current load phase
func (s *Store) Phase() Phase {
	return s.phase
}

// Records returns all records, unfiltered
func (s *Store) Records() []types.TaxRecord {
	return s.records
}

// Countries returns the reference list in server order
func (s *Store) Countries() []types.Country {
	return s.countries
}

// ApplyLoad moves the store out of Loading with the result of Fetch
func (s *Store) ApplyLoad(snap Snapshot, err error) {
	if err != nil {
		logger.Error("initial load failed", "error", err)
		s.phase = LoadFailed{Message: LoadFailureMessage}
		return
	}

	s.records = snap.Taxes
	s.countries = snap.Countries
	s.recordsVersion++
	s.phase = Ready{}
	logger.Info("data loaded", "taxes", len(snap.Taxes), "countries", len(snap.Countries))
}

// BeginReload returns the phase to Loading before a manual reload.
// Records and the filter are kept until the new load settles.
func (s *Store) BeginReload() {
	s.phase = Loading{}
}

// Reconcile replaces the record whose id matches rec.ID.
// A record with an unknown id is dropped and false is returned.
func (s *Store) Reconcile(rec types.TaxRecord) bool {
	for i := range s.records {
		if s.records[i].ID != rec.ID {
			continue
		}
		next := make([]types.TaxRecord, len(s.records))
		copy(next, s.records)
		next[i] = rec
		s.records = next
		s.recordsVersion++
		return true
	}

	logger.Warn("updated record has no local match, dropping it", "id", rec.ID)
	return false
}

// Visible returns the filtered records. The same slice is returned until
// the records or the selection change.
func (s *Store) Visible() []types.TaxRecord {
	key := [2]int{s.recordsVersion, s.selectionVersion}
	if s.visibleValid && s.visibleKey == key {
		return s.visible
	}
	s.visible = filter.Visible(s.records, s.selection)
	s.visibleKey = key
	s.visibleValid = true
	return s.visible
}

// Selection returns the active country filter
func (s *Store) Selection() filter.Selection {
	return s.selection
}

// ToggleCountry adds or removes a country name from the filter
func (s *Store) ToggleCountry(name string) {
	s.selection = s.selection.Toggle(name)
	s.selectionVersion++
}

// ClearFilter empties the selection, which shows every record
func (s *Store) ClearFilter() {
	if s.selection.IsEmpty() {
		return
	}
	s.selection = filter.Selection{}
	s.selectionVersion++
}

// FilterOpen reports whether the country filter popover is open
func (s *Store) FilterOpen() bool {
	return s.filterOpen
}

// SetFilterOpen opens or closes the country filter popover
func (s *Store) SetFilterOpen(open bool) {
	s.filterOpen = open
}

// Edit returns the current edit session
func (s *Store) Edit() EditState {
	return s.edit
}

// IsSaving reports whether an update call is in flight
func (s *Store) IsSaving() bool {
	_, ok := s.edit.(EditSaving)
	return ok
}

// OpenEdit starts editing rec, replacing any open session and clearing
// its error. It does nothing while a save is in flight.
func (s *Store) OpenEdit(rec types.TaxRecord) bool {
	if s.IsSaving() {
		return false
	}
	s.edit = EditOpen{Record: rec}
	return true
}

// CancelEdit closes an open session. It does nothing while saving.
func (s *Store) CancelEdit() bool {
	if s.IsSaving() {
		return false
	}
	s.edit = EditClosed{}
	return true
}

// ValidForm reports whether the edit form may be submitted
func ValidForm(name, country string) bool {
	return strings.TrimSpace(name) != "" && country != ""
}

// BeginSave moves an open session to saving and returns the record to send.
// The name is trimmed; the original record's other fields are kept.
func (s *Store) BeginSave(name, country string) (types.TaxRecord, error) {
	open, ok := s.edit.(EditOpen)
	if !ok {
		return types.TaxRecord{}, ErrNoSession
	}
	if !ValidForm(name, country) {
		return types.TaxRecord{}, ErrInvalidForm
	}

	payload := open.Record.Apply(types.TaxUpdate{
		Entity:  strings.TrimSpace(name),
		Country: country,
	})
	s.edit = EditSaving{Record: open.Record, Payload: payload}
	return payload, nil
}

// CompleteSave reconciles the server's record and closes the session
func (s *Store) CompleteSave(rec types.TaxRecord) {
	if _, ok := s.edit.(EditSaving); !ok {
		logger.Warn("save completed without a saving session", "id", rec.ID)
	}
	s.Reconcile(rec)
	s.edit = EditClosed{}
}

// FailSave returns a saving session to editable with the save error set
func (s *Store) FailSave(err error) {
	saving, ok := s.edit.(EditSaving)
	if !ok {
		return
	}
	logger.Error("save failed", "id", saving.Record.ID, "error", err)
	s.edit = EditOpen{Record: saving.Record, Error: SaveFailureMessage}
}
