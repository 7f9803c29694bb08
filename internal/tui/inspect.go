package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/types"
)

// openInspect shows every field of rec, extras included
func (m *Model) openInspect(rec types.TaxRecord) {
	fields, err := rec.Fields()
	var content string
	if err == nil {
		var data []byte
		data, err = json.MarshalIndent(fields, "", "  ")
		content = string(data)
	}
	if err != nil {
		logger.Warn("inspect failed to encode record", "id", rec.ID, "error", err)
		content = fmt.Sprintf("%+v", rec)
	}

	m.closeFilter()
	m.inspecting = true
	m.resizeInspect()
	m.inspectView.SetContent(wrapText(content, m.inspectView.Width))
	m.inspectView.GotoTop()
}

func (m *Model) closeInspect() {
	m.inspecting = false
}

// renderInspect renders the inspector box
func (m Model) renderInspect() string {
	t := m.theme

	title := "Record"
	if rec, ok := m.selectedRecord(); ok {
		title = "Record " + rec.ID
	}

	footer := fmt.Sprintf("%s scroll · %s copy id · %s close",
		m.keybinds.GetBindingString(keybinds.ContextInspect, keybinds.ActionScrollDown),
		m.keybinds.GetBindingString(keybinds.ContextInspect, keybinds.ActionCopyID),
		m.keybinds.GetBindingString(keybinds.ContextInspect, keybinds.ActionCloseModal))

	body := strings.Join([]string{
		t.Title.Render(title),
		"",
		m.inspectView.View(),
		"",
		t.Subtle.Render(footer),
	}, "\n")

	return t.Modal.Width(m.inspectView.Width + 2).Render(body)
}
