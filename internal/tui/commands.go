package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/history"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

// fetchCmd loads taxes and countries in parallel
func fetchCmd(gw gateway.Gateway) tea.Cmd {
	return func() tea.Msg {
		snap, err := store.Fetch(context.Background(), gw)
		return dataLoadedMsg{snap: snap, err: err}
	}
}

// saveCmd sends the edited record and records the change in the history
func saveCmd(gw gateway.Gateway, rec history.Recorder, baseURL string, before, payload types.TaxRecord) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		saved, err := gw.UpdateTax(ctx, payload.ID, payload)
		if err != nil {
			return saveFailedMsg{err: err}
		}

		if rec != nil {
			if err := rec.Save(ctx, before, saved, baseURL); err != nil {
				logger.Warn("failed to record edit history", "id", saved.ID, "error", err)
			}
		}

		return taxSavedMsg{rec: saved}
	}
}

func copyCmd(copyText func(string) error, id string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{id: id, err: copyText(id)}
	}
}

func saveThemeCmd(save func(string) error, name string) tea.Cmd {
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		return themeSavedMsg{err: save(name)}
	}
}
