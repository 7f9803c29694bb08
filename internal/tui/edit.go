package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

type editField int

const (
	fieldName editField = iota
	fieldCountry
)

const countryOptionsShown = 5

// editForm is the state of the edit modal's inputs
type editForm struct {
	name  textinput.Model
	focus editField

	countries []string
	query     string
	matches   []int // indexes into countries, best match first
	cursor    int   // index into matches
	country   string
	pending   bool // a query was typed and no match picked since
}

func newEditForm(rec types.TaxRecord, countries []types.Country) editForm {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Customer name"
	ti.CharLimit = 120
	ti.Width = ModalWidth - 8
	ti.SetValue(rec.Entity)

	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}

	f := editForm{
		name:      ti,
		countries: names,
		country:   rec.Country,
	}
	f.setQuery("")
	return f
}

// setQuery filters the country options. With no query every country is
// listed and the cursor sits on the current selection. Typing highlights the
// best match but keeps the chosen country until a match is picked.
func (f *editForm) setQuery(q string) {
	f.query = q
	f.matches = f.matches[:0]
	f.cursor = 0
	f.pending = q != ""

	if q == "" {
		for i, name := range f.countries {
			f.matches = append(f.matches, i)
			if name == f.country {
				f.cursor = len(f.matches) - 1
			}
		}
		return
	}

	for _, match := range fuzzy.Find(q, f.countries) {
		f.matches = append(f.matches, match.Index)
	}
}

func (f *editForm) moveCursor(delta int) {
	if len(f.matches) == 0 {
		return
	}
	f.cursor = (f.cursor + delta + len(f.matches)) % len(f.matches)
	f.country = f.countries[f.matches[f.cursor]]
	f.pending = false
}

func (f *editForm) selectMatch(i int) {
	if i < 0 || i >= len(f.matches) {
		return
	}
	f.cursor = i
	f.country = f.countries[f.matches[i]]
	f.pending = false
}

// pickHighlighted chooses the highlighted match of a typed query. It
// reports false when there is no such match.
func (f *editForm) pickHighlighted() bool {
	if !f.pending || len(f.matches) == 0 {
		return false
	}
	f.selectMatch(f.cursor)
	return true
}

func (f *editForm) switchFocus() tea.Cmd {
	if f.focus == fieldName {
		f.focus = fieldCountry
	} else {
		f.focus = fieldName
	}
	return f.focusCurrent()
}

func (f *editForm) focusCurrent() tea.Cmd {
	if f.focus == fieldName {
		return f.name.Focus()
	}
	f.name.Blur()
	return nil
}

func (f *editForm) blur() {
	f.name.Blur()
}

func (f editForm) valid() bool {
	return store.ValidForm(f.name.Value(), f.country)
}

// optionWindow returns the first visible option index
func (f editForm) optionWindow() int {
	start := f.cursor - countryOptionsShown + 1
	if start < 0 {
		start = 0
	}
	return start
}

// openEdit starts editing the record under the cursor
func (m *Model) openEdit(rec types.TaxRecord) tea.Cmd {
	if !m.store.OpenEdit(rec) {
		return nil
	}
	m.closeFilter()
	m.inspecting = false
	m.form = newEditForm(rec, m.store.Countries())
	return m.form.focusCurrent()
}

func (m *Model) cancelEdit() {
	if m.store.CancelEdit() {
		m.form.blur()
	}
}

// submitEdit validates the form and starts the save
func (m *Model) submitEdit() tea.Cmd {
	open, ok := m.store.Edit().(store.EditOpen)
	if !ok || !m.form.valid() {
		return nil
	}

	payload, err := m.store.BeginSave(m.form.name.Value(), m.form.country)
	if err != nil {
		return nil
	}
	m.form.blur()

	return tea.Batch(
		saveCmd(m.gateway, m.history, m.baseURL, open.Record, payload),
		m.spinner.Tick,
	)
}

// handleEditInput feeds keys that are not bound to an action into the focused field
func (m *Model) handleEditInput(msg tea.KeyMsg) tea.Cmd {
	if m.store.IsSaving() {
		return nil
	}

	if m.form.focus == fieldName {
		var cmd tea.Cmd
		m.form.name, cmd = m.form.name.Update(msg)
		return cmd
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if q := []rune(m.form.query); len(q) > 0 {
			m.form.setQuery(string(q[:len(q)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		m.form.setQuery(m.form.query + string(msg.Runes))
	}
	return nil
}

// editView is the rendered edit modal plus its clickable regions
type editView struct {
	box     string
	rect    rect
	save    rect
	cancel  rect
	options []rect // parallel to matches[window:window+len(options)]
	window  int
}

// buildEditView renders the modal and computes where everything landed
func (m Model) buildEditView() editView {
	f := m.form
	t := m.theme

	saving := m.store.IsSaving()
	errText := ""
	if open, ok := m.store.Edit().(store.EditOpen); ok {
		errText = open.Error
	}

	innerW := min(ModalWidth, m.width-2) - 4 // border and padding
	if innerW < 20 {
		innerW = 20
	}

	label := func(text string, field editField) string {
		if f.focus == field && !saving {
			return t.Focused.Render(text)
		}
		return t.Head.Render(text)
	}

	var lines []string
	lines = append(lines, t.Title.Render("Edit customer"), "")

	lines = append(lines, label("Name", fieldName))
	lines = append(lines, ansi.Truncate(f.name.View(), innerW, "…"))
	if strings.TrimSpace(f.name.Value()) == "" {
		lines = append(lines, t.Error.Render("Name is required"))
	}
	lines = append(lines, "")

	country := f.country
	if country == "" {
		country = t.Subtle.Render("none")
	}
	lines = append(lines, ansi.Truncate(label("Country", fieldCountry)+" "+country, innerW, "…"))
	if f.focus == fieldCountry {
		lines = append(lines, ansi.Truncate(t.Subtle.Render("Search: ")+addCursor(f.query), innerW, "…"))
	}

	window := f.optionWindow()
	optionsTop := len(lines)
	end := min(window+countryOptionsShown, len(f.matches))
	for i := window; i < end; i++ {
		name := f.countries[f.matches[i]]
		marker := "  "
		if i == f.cursor {
			marker = "› "
		}
		line := fit(marker+name, innerW)
		if i == f.cursor && f.focus == fieldCountry {
			line = t.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	if len(f.matches) == 0 {
		lines = append(lines, t.Subtle.Render("No matching country"))
	}
	lines = append(lines, "")

	if errText != "" {
		lines = append(lines, t.Error.Render(wrapText(errText, innerW)))
	}

	saveLabel := SaveButtonText
	if saving {
		saveLabel = m.spinner.View() + " " + SavingText
	}
	saveStyle := t.Button
	if saving || !f.valid() {
		saveStyle = t.ButtonMuted
	}
	saveBtn := saveStyle.Render(saveLabel)
	cancelBtn := t.ButtonMuted.Render("Cancel")
	buttonsTop := len(lines)
	lines = append(lines, saveBtn+"  "+cancelBtn)
	lines = append(lines, t.Subtle.Render(fmt.Sprintf("%s switch field · %s save · %s cancel",
		m.keybinds.GetBindingString(keybinds.ContextEdit, keybinds.ActionSwitchField),
		m.keybinds.GetBindingString(keybinds.ContextEdit, keybinds.ActionSubmit),
		m.keybinds.GetBindingString(keybinds.ContextEdit, keybinds.ActionCloseModal))))

	box := t.Modal.Width(innerW + 2).Render(strings.Join(lines, "\n"))
	w, h := blockSize(box)
	x, y := centered(m.width, m.height, w, h)

	// Content starts after the border and the left padding
	cx, cy := x+2, y+1

	ev := editView{
		box:    box,
		rect:   rect{X: x, Y: y, W: w, H: h},
		save:   rect{X: cx, Y: cy + buttonsTop, W: lipgloss.Width(saveBtn), H: 1},
		cancel: rect{X: cx + lipgloss.Width(saveBtn) + 2, Y: cy + buttonsTop, W: lipgloss.Width(cancelBtn), H: 1},
		window: window,
	}
	for i := window; i < end; i++ {
		ev.options = append(ev.options, rect{X: cx, Y: cy + optionsTop + i - window, W: innerW, H: 1})
	}

	return ev
}

// handleEditClick handles a left click while the edit modal is open
func (m *Model) handleEditClick(x, y int) tea.Cmd {
	if m.store.IsSaving() {
		return nil
	}

	ev := m.buildEditView()
	switch {
	case ev.save.contains(x, y):
		return m.submitEdit()
	case ev.cancel.contains(x, y):
		m.cancelEdit()
		return nil
	}

	for i, r := range ev.options {
		if r.contains(x, y) {
			m.form.focus = fieldCountry
			m.form.selectMatch(ev.window + i)
			return m.form.focusCurrent()
		}
	}
	return nil
}
