package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextTable   Context = "table"   // Customer table (no overlay open)
	ContextFilter  Context = "filter"  // Country filter popover
	ContextEdit    Context = "edit"    // Edit customer modal
	ContextInspect Context = "inspect" // Record inspector
)

const (
	// Global actions
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Table actions
	ActionQuit          Action = "quit"           // Quit application
	ActionNavigateUp    Action = "navigate_up"    // Move up one row
	ActionNavigateDown  Action = "navigate_down"  // Move down one row
	ActionPageUp        Action = "page_up"        // Move up one page
	ActionPageDown      Action = "page_down"      // Move down one page
	ActionGoToTop       Action = "go_to_top"      // First row
	ActionGoToBottom    Action = "go_to_bottom"   // Last row
	ActionToggleFilter  Action = "toggle_filter"  // Open/close the country filter
	ActionOpenEdit      Action = "open_edit"      // Edit the selected row
	ActionOpenInspect   Action = "open_inspect"   // Show every field of the selected row
	ActionRefresh       Action = "refresh"        // Reload taxes and countries
	ActionToggleTheme   Action = "toggle_theme"   // Switch light/dark theme
	ActionCopyID        Action = "copy_id"        // Copy the selected record id

	// Filter actions
	ActionToggleOption Action = "toggle_option" // Toggle the country under the cursor
	ActionClearFilter  Action = "clear_filter"  // Remove every selected country

	// Edit actions
	ActionSwitchField Action = "switch_field" // Move focus between name and country
	ActionSubmit      Action = "submit"       // Save the form

	// Shared
	ActionCloseModal Action = "close_modal" // Close current overlay
	ActionScrollUp   Action = "scroll_up"   // Scroll viewport up
	ActionScrollDown Action = "scroll_down" // Scroll viewport down
)

// knownActions lists every action a config file may reference
var knownActions = map[Action]bool{
	ActionQuitForce:    true,
	ActionQuit:         true,
	ActionNavigateUp:   true,
	ActionNavigateDown: true,
	ActionPageUp:       true,
	ActionPageDown:     true,
	ActionGoToTop:      true,
	ActionGoToBottom:   true,
	ActionToggleFilter: true,
	ActionOpenEdit:     true,
	ActionOpenInspect:  true,
	ActionRefresh:      true,
	ActionToggleTheme:  true,
	ActionCopyID:       true,
	ActionToggleOption: true,
	ActionClearFilter:  true,
	ActionSwitchField:  true,
	ActionSubmit:       true,
	ActionCloseModal:   true,
	ActionScrollUp:     true,
	ActionScrollDown:   true,
}

// IsKnown reports whether a is a defined action
func (a Action) IsKnown() bool {
	return knownActions[a]
}
