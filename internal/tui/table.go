package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/types"
)

// cell truncates text to width, styles it and pads the result to width
func cell(text string, width int, style lipgloss.Style) string {
	if ansi.StringWidth(text) > width {
		text = ansi.Truncate(text, width, "…")
	}
	styled := style.Render(text)
	if n := ansi.StringWidth(styled); n < width {
		styled += strings.Repeat(" ", width-n)
	}
	return styled
}

func gap() string {
	return strings.Repeat(" ", ColumnGap)
}

// countryHeading is the Country header text with the filter toggle
func (m Model) countryHeading() string {
	sel := m.store.Selection()
	if sel.IsEmpty() {
		return "Country ▾"
	}
	return fmt.Sprintf("Country (%d) ▾", sel.Len())
}

// renderTable renders column titles, separator and the visible rows
func (m Model) renderTable() string {
	t := m.theme
	l := layoutFor(m.width, m.height)

	countryStyle := t.Head
	if m.store.FilterOpen() || !m.store.Selection().IsEmpty() {
		countryStyle = t.HeadActive
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", RowGutter))
	b.WriteString(cell(l.entity.title, l.entity.width, t.Head) + gap())
	b.WriteString(cell(l.gender.title, l.gender.width, t.Head) + gap())
	b.WriteString(cell(l.date.title, l.date.width, t.Head) + gap())
	b.WriteString(cell(m.countryHeading(), l.country.width, countryStyle) + gap())
	b.WriteString(cell(l.actions.title, l.actions.width, t.Head))
	b.WriteString("\n")
	b.WriteString(t.Subtle.Render(strings.Repeat("─", min(l.tableWidth(), m.width))))

	visible := m.store.Visible()
	if len(visible) == 0 {
		b.WriteString("\n")
		b.WriteString(t.Subtle.Render(lipgloss.PlaceHorizontal(min(l.tableWidth(), m.width), lipgloss.Center, EmptyStateText)))
		return b.String()
	}

	end := min(m.offset+l.rowsVisible, len(visible))
	for i := m.offset; i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(l, visible[i], i == m.cursor))
	}

	return b.String()
}

// renderRow renders one customer row
func (m Model) renderRow(l layout, rec types.TaxRecord, selected bool) string {
	t := m.theme

	gutter := strings.Repeat(" ", RowGutter)
	if selected {
		gutter = t.Selected.Render("›") + " "
	}

	badgeStyle := t.BadgeOther
	if ClassifyGender(rec.Gender) == BadgeMale {
		badgeStyle = t.BadgeMale
	}
	gender := rec.Gender
	if gender == "" {
		gender = EmptyDate
	}

	return gutter +
		cell(rec.Entity, l.entity.width, t.Link) + gap() +
		cell(" "+gender+" ", l.gender.width, badgeStyle) + gap() +
		cell(FormatRequestDate(rec.Timestamp(), m.loc), l.date.width, lipgloss.NewStyle()) + gap() +
		cell(rec.Country, l.country.width, lipgloss.NewStyle()) + gap() +
		cell(EditIcon, l.actions.width, t.Title)
}

// renderStatusBar renders the one-line status bar at the bottom
func (m Model) renderStatusBar() string {
	t := m.theme

	var left string
	switch {
	case m.errorMsg != "":
		left = t.Error.Render(m.errorMsg)
	case m.statusMsg != "":
		left = t.Success.Render(m.statusMsg)
	default:
		left = t.Subtle.Render(m.helpLine())
	}

	right := ""
	if m.filterReady() {
		right = fmt.Sprintf("%d of %d", len(m.store.Visible()), len(m.store.Records()))
		if names := m.store.Selection().Names(); len(names) > 0 {
			right = "Filter: " + strings.Join(names, ", ") + " · " + right
		}
		right = t.Subtle.Render(right)
	}

	space := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if space < 1 {
		return ansi.Truncate(left, m.width, "…")
	}
	return left + strings.Repeat(" ", space) + right
}

// helpLine lists the main table keys from the active keybindings
func (m Model) helpLine() string {
	k := func(a keybinds.Action) string {
		return m.keybinds.GetBindingString(keybinds.ContextTable, a)
	}
	return fmt.Sprintf("%s filter · %s edit · %s inspect · %s copy id · %s theme · %s quit",
		k(keybinds.ActionToggleFilter), k(keybinds.ActionOpenEdit), k(keybinds.ActionOpenInspect),
		k(keybinds.ActionCopyID), k(keybinds.ActionToggleTheme), k(keybinds.ActionQuit))
}

// selectedRecord returns the record under the cursor
func (m Model) selectedRecord() (types.TaxRecord, bool) {
	visible := m.store.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return types.TaxRecord{}, false
	}
	return visible[m.cursor], true
}

// moveCursor moves the table cursor by delta rows and keeps it on screen
func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor inside the visible rows and the scroll window
func (m *Model) clampCursor() {
	n := len(m.store.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := layoutFor(m.width, m.height).rowsVisible
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > max(n-rows, 0) {
		m.offset = max(n-rows, 0)
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
