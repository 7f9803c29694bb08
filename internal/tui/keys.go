package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/store"
)

// keyContext returns the keybinding context for the current overlay
func (m Model) keyContext() keybinds.Context {
	switch {
	case !isEditClosed(m.store.Edit()):
		return keybinds.ContextEdit
	case m.inspecting:
		return keybinds.ContextInspect
	case m.store.FilterOpen():
		return keybinds.ContextFilter
	default:
		return keybinds.ContextTable
	}
}

func isEditClosed(e store.EditState) bool {
	_, ok := e.(store.EditClosed)
	return ok
}

// handleKeyPress routes a key to the handler of the active context
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	ctx := m.keyContext()

	action, ok := m.keybinds.Match(ctx, msg.String())
	if ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	switch ctx {
	case keybinds.ContextEdit:
		if !ok {
			return m.handleEditInput(msg)
		}
		return m.handleEditAction(action)
	case keybinds.ContextInspect:
		if ok {
			return m.handleInspectAction(action)
		}
	case keybinds.ContextFilter:
		if ok {
			m.handleFilterAction(action)
		}
	default:
		if ok {
			return m.handleTableAction(action)
		}
	}

	return nil
}

func (m *Model) handleTableAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionToggleTheme:
		m.theme = m.theme.Toggled()
		return saveThemeCmd(m.saveTheme, m.theme.Name)
	case keybinds.ActionRefresh:
		if m.busy() {
			return nil
		}
		m.store.BeginReload()
		return tea.Batch(fetchCmd(m.gateway), m.spinner.Tick)
	}

	if !m.filterReady() {
		return nil
	}

	rows := layoutFor(m.width, m.height).rowsVisible
	switch action {
	case keybinds.ActionNavigateUp:
		m.moveCursor(-1)
	case keybinds.ActionNavigateDown:
		m.moveCursor(1)
	case keybinds.ActionPageUp:
		m.moveCursor(-rows)
	case keybinds.ActionPageDown:
		m.moveCursor(rows)
	case keybinds.ActionGoToTop:
		m.cursor = 0
		m.clampCursor()
	case keybinds.ActionGoToBottom:
		m.cursor = len(m.store.Visible()) - 1
		m.clampCursor()
	case keybinds.ActionToggleFilter:
		m.toggleFilter()
	case keybinds.ActionOpenEdit:
		if rec, ok := m.selectedRecord(); ok {
			return m.openEdit(rec)
		}
	case keybinds.ActionOpenInspect:
		if rec, ok := m.selectedRecord(); ok {
			m.openInspect(rec)
		}
	case keybinds.ActionCopyID:
		if rec, ok := m.selectedRecord(); ok {
			return copyCmd(m.copyText, rec.ID)
		}
	}
	return nil
}

func (m *Model) handleFilterAction(action keybinds.Action) {
	n := len(m.store.Countries())

	switch action {
	case keybinds.ActionCloseModal:
		m.closeFilter()
	case keybinds.ActionNavigateUp:
		if n > 0 {
			m.popoverCursor = (m.popoverCursor - 1 + n) % n
		}
	case keybinds.ActionNavigateDown:
		if n > 0 {
			m.popoverCursor = (m.popoverCursor + 1) % n
		}
	case keybinds.ActionToggleOption:
		m.toggleCountryAt(m.popoverCursor)
	case keybinds.ActionClearFilter:
		m.clearFilter()
	}
}

func (m *Model) handleEditAction(action keybinds.Action) tea.Cmd {
	if m.store.IsSaving() {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.cancelEdit()
	case keybinds.ActionSwitchField:
		return m.form.switchFocus()
	case keybinds.ActionSubmit:
		if m.form.focus == fieldCountry && m.form.pickHighlighted() {
			return nil
		}
		return m.submitEdit()
	case keybinds.ActionNavigateUp:
		if m.form.focus == fieldCountry {
			m.form.moveCursor(-1)
		}
	case keybinds.ActionNavigateDown:
		if m.form.focus == fieldCountry {
			m.form.moveCursor(1)
		}
	}
	return nil
}

func (m *Model) handleInspectAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionCloseModal:
		m.closeInspect()
	case keybinds.ActionScrollUp:
		m.inspectView.LineUp(1)
	case keybinds.ActionScrollDown:
		m.inspectView.LineDown(1)
	case keybinds.ActionCopyID:
		if rec, ok := m.selectedRecord(); ok {
			return copyCmd(m.copyText, rec.ID)
		}
	}
	return nil
}
