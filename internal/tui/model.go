package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/history"
	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/store"
	"github.com/studiowebux/taxdesk/internal/types"
)

// Options configures a Model
type Options struct {
	Gateway gateway.Gateway

	// BaseURL is recorded with each edit history entry
	BaseURL string

	// History records successful saves. Nil disables it.
	History history.Recorder

	// Keybinds defaults to keybinds.NewDefaultRegistry()
	Keybinds *keybinds.Registry

	// Theme is "light" (default) or "dark"
	Theme string

	// SaveTheme persists the theme after a toggle. Nil skips persisting.
	SaveTheme func(name string) error

	// Clipboard defaults to the system clipboard
	Clipboard func(text string) error

	// Location for request dates, defaults to time.Local
	Location *time.Location
}

// Model represents the TUI state
type Model struct {
	store     *store.Store
	gateway   gateway.Gateway
	baseURL   string
	history   history.Recorder
	keybinds  *keybinds.Registry
	pointer   *PointerBus
	theme     Theme
	loc       *time.Location
	saveTheme func(string) error
	copyText  func(string) error

	width  int
	height int

	// Table cursor, an index into store.Visible()
	cursor int
	offset int

	// Filter popover
	popoverCursor int
	popoverUnsub  func()

	form    editForm
	spinner spinner.Model

	inspecting  bool
	inspectView viewport.Model

	statusMsg string
	errorMsg  string
}

// Messages
type (
	dataLoadedMsg struct {
		snap store.Snapshot
		err  error
	}
	taxSavedMsg   struct{ rec types.TaxRecord }
	saveFailedMsg struct{ err error }
	copiedMsg     struct {
		id  string
		err error
	}
	themeSavedMsg  struct{ err error }
	clearStatusMsg struct{}
)

// New creates the model. The initial load starts in Init.
func New(opts Options) (Model, error) {
	if opts.Gateway == nil {
		return Model{}, errors.New("tui: a gateway is required")
	}

	registry := opts.Keybinds
	if registry == nil {
		registry = keybinds.NewDefaultRegistry()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		store:       store.New(),
		gateway:     opts.Gateway,
		baseURL:     opts.BaseURL,
		history:     opts.History,
		keybinds:    registry,
		pointer:     NewPointerBus(),
		theme:       ThemeByName(opts.Theme),
		loc:         loc,
		saveTheme:   opts.SaveTheme,
		copyText:    copyText,
		spinner:     sp,
		inspectView: viewport.New(ModalWidth, InspectHeight),
	}, nil
}

// Init starts the initial load
func (m *Model) Init() tea.Cmd {
	return tea.Batch(fetchCmd(m.gateway), m.spinner.Tick)
}

// Cleanup releases pointer subscriptions held by open overlays
func (m *Model) Cleanup() {
	m.closeFilter()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.MouseMsg:
		if !m.pointer.Dispatch(msg) {
			cmd = m.handleMouse(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeInspect()
		m.clampCursor()

	case spinner.TickMsg:
		if m.busy() {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case dataLoadedMsg:
		m.store.ApplyLoad(msg.snap, msg.err)
		m.clampCursor()
		if msg.err == nil {
			cmd = m.setStatusMessage(fmt.Sprintf("Loaded %d customers", len(m.store.Records())))
		}

	case taxSavedMsg:
		m.store.CompleteSave(msg.rec)
		m.form.blur()
		m.clampCursor()
		cmd = m.setStatusMessage("Saved " + msg.rec.Entity)

	case saveFailedMsg:
		m.store.FailSave(msg.err)
		cmd = m.form.focusCurrent()

	case copiedMsg:
		if msg.err != nil {
			logger.Warn("clipboard write failed", "error", msg.err)
			cmd = m.setErrorMessage("Failed to copy to clipboard")
		} else {
			cmd = m.setStatusMessage("Copied id " + msg.id)
		}

	case themeSavedMsg:
		if msg.err != nil {
			logger.Warn("theme not persisted", "error", msg.err)
			cmd = m.setErrorMessage("Theme changed but could not be saved")
		}

	case clearStatusMsg:
		m.statusMsg = ""
		m.errorMsg = ""
	}

	return m, cmd
}

// View renders the current state
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	lines := splitLinesN(m.renderScreen(), m.height)

	if _, ready := m.store.Phase().(store.Ready); ready && m.store.FilterOpen() {
		pv := m.buildPopoverView()
		overlayAt(lines, pv.box, m.width, pv.rect.X, pv.rect.Y)
	}

	if m.inspecting {
		box := m.renderInspect()
		w, h := blockSize(box)
		x, y := centered(m.width, m.height, w, h)
		overlayAt(lines, box, m.width, x, y)
	}

	if _, closed := m.store.Edit().(store.EditClosed); !closed {
		ev := m.buildEditView()
		overlayAt(lines, ev.box, m.width, ev.rect.X, ev.rect.Y)
	}

	return strings.Join(lines, "\n")
}

// renderScreen renders the header, the table area and the status bar
func (m Model) renderScreen() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(TitleText),
		m.theme.Subtle.Render(SubtitleText),
		"",
	)

	var body string
	switch p := m.store.Phase().(type) {
	case store.Loading:
		body = m.spinner.View() + " " + LoadingText
	case store.LoadFailed:
		body = m.theme.Error.Render(p.Message) + "\n" +
			m.theme.Subtle.Render("Press "+m.keybinds.GetBindingString(keybinds.ContextTable, keybinds.ActionRefresh)+" to retry")
	case store.Ready:
		body = m.renderTable()
	}

	bodyHeight := m.height - HeaderLines - StatusBarLines
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = strings.Join(splitLinesN(body, bodyHeight), "\n")

	return header + "\n" + body + "\n" + m.renderStatusBar()
}

// busy reports whether a network call is in flight
func (m Model) busy() bool {
	if _, loading := m.store.Phase().(store.Loading); loading {
		return true
	}
	return m.store.IsSaving()
}

func (m *Model) resizeInspect() {
	w := min(ModalWidth+24, m.width-4)
	h := min(InspectHeight, m.height-6)
	m.inspectView.Width = max(w-4, 10)
	m.inspectView.Height = max(h, 1)
}

// Helper methods for setting messages with timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = msg
	m.errorMsg = ""
	return tea.Tick(StatusMessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.errorMsg = msg
	m.statusMsg = ""
	return tea.Tick(StatusMessageTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
