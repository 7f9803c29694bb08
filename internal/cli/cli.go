package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/studiowebux/taxdesk/internal/filter"
	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/history"
	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

// Output formats accepted by --output
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// ErrRecordNotFound is returned by Update for an id the backend does not list
var ErrRecordNotFound = errors.New("record not found")

// ListOptions contains options for listing records
type ListOptions struct {
	Countries []string // empty lists every record
	Output    string   // text, json, yaml
	Query     string   // JMESPath expression applied to the JSON list
}

// List prints the records, filtered by country like the table view
func List(ctx context.Context, gw gateway.Gateway, w io.Writer, opts ListOptions) error {
	if opts.Query != "" && !filter.IsValidJMESPath(opts.Query) {
		return fmt.Errorf("invalid query: %q", opts.Query)
	}

	snap, err := store.Fetch(ctx, gw)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	if unknown := unknownCountries(opts.Countries, snap.Countries); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: unknown countries: %s\n", strings.Join(unknown, ", "))
	}

	visible := filter.Visible(snap.Taxes, filter.NewSelection(opts.Countries...))

	if opts.Query != "" {
		data, err := json.Marshal(visible)
		if err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}
		out, err := filter.Apply(string(data), opts.Query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}

	return writeRecords(w, visible, opts.Output)
}

// UpdateOptions contains options for updating one record
type UpdateOptions struct {
	ID      string
	Name    string // empty keeps the current name
	Country string // empty keeps the current country
	Output  string
	BaseURL string // recorded with the history entry

	// PickCountry shows an interactive country selector
	PickCountry bool
}

// Update changes a record's name and country, records the edit and prints
// the server's record
func Update(ctx context.Context, gw gateway.Gateway, rec history.Recorder, w io.Writer, opts UpdateOptions) error {
	snap, err := store.Fetch(ctx, gw)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	var before types.TaxRecord
	found := false
	for _, r := range snap.Taxes {
		if r.ID == opts.ID {
			before, found = r, true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, opts.ID)
	}

	name := before.Entity
	if opts.Name != "" {
		name = opts.Name
	}
	country := before.Country
	if opts.Country != "" {
		country = opts.Country
	}
	if opts.PickCountry {
		picked, err := promptForCountry(snap.Countries, country)
		if err != nil {
			return err
		}
		country = picked
	}

	if !store.ValidForm(name, country) {
		return fmt.Errorf("%w: name and country are required", store.ErrInvalidForm)
	}
	if len(unknownCountries([]string{country}, snap.Countries)) > 0 {
		return fmt.Errorf("%w: unknown country %q", store.ErrInvalidForm, country)
	}

	payload := before.Apply(types.TaxUpdate{Entity: strings.TrimSpace(name), Country: country})
	saved, err := gw.UpdateTax(ctx, before.ID, payload)
	if err != nil {
		logger.Error("update failed", "id", before.ID, "error", err)
		return errors.New(store.SaveFailureMessage)
	}
	logger.InfoContext(ctx, "record updated", "id", saved.ID, "entity", saved.Entity, "country", saved.Country)

	if rec != nil {
		if err := rec.Save(ctx, before, saved, opts.BaseURL); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
		}
	}

	return writeRecords(w, []types.TaxRecord{saved}, opts.Output)
}

// HistoryLister reads the local edit history
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]types.EditEntry, error)
	ListForRecord(ctx context.Context, recordID string) ([]types.EditEntry, error)
}

// HistoryOptions selects the history entries to print
type HistoryOptions struct {
	Limit  int
	Output string
	Record string // only edits of this record id
}

// History prints the most recent edits, newest first
func History(ctx context.Context, h HistoryLister, w io.Writer, opts HistoryOptions) error {
	var entries []types.EditEntry
	var err error
	if opts.Record != "" {
		entries, err = h.ListForRecord(ctx, opts.Record)
		if opts.Limit > 0 && len(entries) > opts.Limit {
			entries = entries[:opts.Limit]
		}
	} else {
		entries, err = h.List(ctx, opts.Limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	switch opts.Output {
	case OutputJSON, OutputYAML:
		return encode(w, entries, opts.Output)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No edits recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRECORD\tCHANGE\tBACKEND")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp, e.RecordID, describeChange(e), e.BaseURL)
	}
	return tw.Flush()
}

// KeyBinding is one effective key of a view
type KeyBinding struct {
	View   string `json:"view" yaml:"view"`
	Key    string `json:"key" yaml:"key"`
	Action string `json:"action" yaml:"action"`
}

var keyViews = []keybinds.Context{
	keybinds.ContextTable,
	keybinds.ContextFilter,
	keybinds.ContextEdit,
	keybinds.ContextInspect,
}

// Keys prints the effective key bindings of each view. Global bindings
// shadowed by a view's own binding are left out.
func Keys(w io.Writer, r *keybinds.Registry, output string) error {
	var rows []KeyBinding
	for _, view := range keyViews {
		seen := make(map[string]bool)
		// ListBindings puts the view's own bindings before the global ones
		for _, b := range r.ListBindings(view) {
			if seen[b.Key] {
				continue
			}
			seen[b.Key] = true
			rows = append(rows, KeyBinding{View: string(view), Key: b.Key, Action: string(b.Action)})
		}
	}

	switch output {
	case OutputJSON, OutputYAML:
		return encode(w, rows, output)
	case "", OutputText:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", output)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VIEW\tKEY\tACTION")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.View, row.Key, row.Action)
	}
	return tw.Flush()
}

// describeChange summarizes the fields an edit changed
func describeChange(e types.EditEntry) string {
	var before, after types.TaxRecord
	if json.Unmarshal([]byte(e.Before), &before) != nil || json.Unmarshal([]byte(e.After), &after) != nil {
		return "?"
	}

	var parts []string
	if before.Entity != after.Entity {
		parts = append(parts, fmt.Sprintf("entity %q -> %q", before.Entity, after.Entity))
	}
	if before.Country != after.Country {
		parts = append(parts, fmt.Sprintf("country %s -> %s", before.Country, after.Country))
	}
	if len(parts) == 0 {
		return "no change"
	}
	return strings.Join(parts, ", ")
}

// writeRecords formats records based on the output format
func writeRecords(w io.Writer, records []types.TaxRecord, format string) error {
	switch format {
	case OutputJSON, OutputYAML:
		return encode(w, records, format)
	case "", OutputText:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENTITY\tGENDER\tREQUEST DATE\tCOUNTRY")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Entity, orDash(r.Gender), orDash(r.Timestamp()), r.Country)
	}
	return tw.Flush()
}

func encode(w io.Writer, v any, format string) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// unknownCountries returns the names not in the reference list
func unknownCountries(names []string, countries []types.Country) []string {
	known := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		known[c.Name] = struct{}{}
	}

	var unknown []string
	for _, n := range names {
		if _, ok := known[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	return unknown
}
