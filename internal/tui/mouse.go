package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func isWheel(b tea.MouseButton) bool {
	return b == tea.MouseButtonWheelUp || b == tea.MouseButtonWheelDown ||
		b == tea.MouseButtonWheelLeft || b == tea.MouseButtonWheelRight
}

// handleMouse handles mouse events no PointerBus subscriber consumed
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}

	if isWheel(msg.Button) {
		m.handleWheel(msg.Button)
		return nil
	}
	if msg.Button != tea.MouseButtonLeft {
		return nil
	}

	switch {
	case !isEditClosed(m.store.Edit()):
		return m.handleEditClick(msg.X, msg.Y)
	case m.inspecting:
		return nil
	case !m.filterReady():
		return nil
	}

	if m.store.FilterOpen() && m.buildPopoverView().rect.contains(msg.X, msg.Y) {
		m.handlePopoverClick(msg.X, msg.Y)
		return nil
	}

	l := layoutFor(m.width, m.height)
	if l.countryToggle().contains(msg.X, msg.Y) {
		m.toggleFilter()
		return nil
	}

	i, ok := l.rowAt(msg.Y)
	if !ok {
		return nil
	}
	row := m.offset + i
	if row >= len(m.store.Visible()) {
		return nil
	}
	m.cursor = row
	m.clampCursor()

	if l.actions.contains(msg.X) {
		if rec, ok := m.selectedRecord(); ok {
			return m.openEdit(rec)
		}
	}
	return nil
}

func (m *Model) handleWheel(b tea.MouseButton) {
	delta := 0
	switch b {
	case tea.MouseButtonWheelUp:
		delta = -1
	case tea.MouseButtonWheelDown:
		delta = 1
	default:
		return
	}

	switch {
	case m.inspecting:
		if delta < 0 {
			m.inspectView.LineUp(1)
		} else {
			m.inspectView.LineDown(1)
		}
	case !isEditClosed(m.store.Edit()):
		if m.form.focus == fieldCountry {
			m.form.moveCursor(delta)
		}
	case m.store.FilterOpen():
		n := len(m.store.Countries())
		if n > 0 {
			m.popoverCursor = min(max(m.popoverCursor+delta, 0), n-1)
		}
	case m.filterReady():
		m.moveCursor(delta)
	}
}
