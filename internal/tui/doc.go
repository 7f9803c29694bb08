/*
Package tui implements the interactive customer tax admin view.

# Layout

The screen is a header ("Customers" and a subtitle), the customer table and
a one-line status bar:

	Customers
	Manage customer details and request history

	Entity            Gender   Request date   Country ▾    Actions
	──────────────────────────────────────────────────────────────
	Acme Holdings     Male     Jan 15, 2024   USA          ✎
	...
	f filter  e edit  i inspect  t theme  q quit

Overlays (the country filter popover, the edit modal and the inspector) are
drawn over the table with overlayAt, so every element has a fixed position
computed by layoutFor. Mouse hit-testing uses the same layout.

# State

All data and view state lives in a store.Store. The Bubble Tea event loop is
its only writer: network calls run in tea.Cmds and report back with
dataLoadedMsg, taxSavedMsg and saveFailedMsg.

# Pointer dismissal

The filter popover subscribes to the model's PointerBus when it opens and
unsubscribes when it closes. A mouse press outside the popover bounds closes
it. Model.Cleanup releases any subscription left when the program exits.

# Usage

	m, err := tui.New(tui.Options{Gateway: client})
	if err != nil {
		return err
	}
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	m.Cleanup()
*/
package tui
