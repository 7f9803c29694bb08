package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the admin view and blocks until the user quits
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	// Pass a pointer since Update uses a pointer receiver.
	// Cell motion reporting is needed for clicks on rows, buttons and the popover.
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
