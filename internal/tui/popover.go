package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/studiowebux/taxdesk/internal/store"
)

// popoverView is the rendered country filter popover plus its clickable regions
type popoverView struct {
	box    string
	rect   rect
	items  []rect // parallel to countries[window:window+len(items)]
	window int
	clear  rect
	// hasClear is false when the selection is empty and Clear is hidden
	hasClear bool
}

// buildPopoverView renders the popover below the Country header
func (m Model) buildPopoverView() popoverView {
	t := m.theme
	l := layoutFor(m.width, m.height)
	countries := m.store.Countries()
	sel := m.store.Selection()

	innerW := l.country.width + 4
	for _, c := range countries {
		innerW = max(innerW, ansi.StringWidth(c.Name)+4)
	}
	innerW = min(innerW, max(m.width-4, 8))

	window := 0
	if m.popoverCursor >= PopoverMaxItems {
		window = m.popoverCursor - PopoverMaxItems + 1
	}
	end := min(window+PopoverMaxItems, len(countries))

	lines := []string{t.Head.Render("Filter by country")}
	itemsTop := len(lines)
	for i := window; i < end; i++ {
		box := "[ ] "
		if sel.Contains(countries[i].Name) {
			box = "[x] "
		}
		line := fit(box+countries[i].Name, innerW)
		if i == m.popoverCursor {
			line = t.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	if len(countries) == 0 {
		lines = append(lines, t.Subtle.Render("No countries"))
	}

	clearTop := -1
	if !sel.IsEmpty() {
		clearTop = len(lines)
		lines = append(lines, t.Warning.Render(ClearFilterText))
	}

	box := t.Modal.Width(innerW + 2).Render(strings.Join(lines, "\n"))
	w, h := blockSize(box)

	x := l.country.x
	if x+w > m.width {
		x = max(m.width-w, 0)
	}
	y := l.headerY() + 1

	cx, cy := x+2, y+1
	pv := popoverView{
		box:    box,
		rect:   rect{X: x, Y: y, W: w, H: h},
		window: window,
	}
	for i := window; i < end; i++ {
		pv.items = append(pv.items, rect{X: cx, Y: cy + itemsTop + i - window, W: innerW, H: 1})
	}
	if clearTop >= 0 {
		pv.hasClear = true
		pv.clear = rect{X: cx, Y: cy + clearTop, W: ansi.StringWidth(ClearFilterText), H: 1}
	}

	return pv
}

// openFilter opens the popover and subscribes to outside clicks
func (m *Model) openFilter() {
	if m.store.FilterOpen() {
		return
	}
	m.store.SetFilterOpen(true)
	m.popoverCursor = 0
	m.popoverUnsub = m.pointer.Subscribe(m.dismissFilterOnOutsidePress)
}

// closeFilter closes the popover and releases its subscription
func (m *Model) closeFilter() {
	m.store.SetFilterOpen(false)
	if m.popoverUnsub != nil {
		m.popoverUnsub()
		m.popoverUnsub = nil
	}
}

func (m *Model) toggleFilter() {
	if m.store.FilterOpen() {
		m.closeFilter()
	} else {
		m.openFilter()
	}
}

// dismissFilterOnOutsidePress closes the popover on a press outside it.
// The toggle is left to the regular click handling so it does not reopen.
// The press is not consumed, so it still reaches what was clicked.
func (m *Model) dismissFilterOnOutsidePress(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress || isWheel(msg.Button) {
		return false
	}
	if !m.store.FilterOpen() {
		return false
	}
	if m.buildPopoverView().rect.contains(msg.X, msg.Y) {
		return false
	}
	if layoutFor(m.width, m.height).countryToggle().contains(msg.X, msg.Y) {
		return false
	}
	m.closeFilter()
	return false
}

// toggleCountryAt flips the country under the popover cursor
func (m *Model) toggleCountryAt(i int) {
	countries := m.store.Countries()
	if i < 0 || i >= len(countries) {
		return
	}
	m.popoverCursor = i
	m.store.ToggleCountry(countries[i].Name)
	m.clampCursor()
}

func (m *Model) clearFilter() {
	if m.store.Selection().IsEmpty() {
		return
	}
	m.store.ClearFilter()
	m.clampCursor()
}

// handlePopoverClick handles a left click inside the popover
func (m *Model) handlePopoverClick(x, y int) {
	pv := m.buildPopoverView()
	for i, r := range pv.items {
		if r.contains(x, y) {
			m.toggleCountryAt(pv.window + i)
			return
		}
	}
	if pv.hasClear && pv.clear.contains(x, y) {
		m.clearFilter()
	}
}

// filterReady reports whether the table is shown, which the filter needs
func (m Model) filterReady() bool {
	_, ok := m.store.Phase().(store.Ready)
	return ok
}
