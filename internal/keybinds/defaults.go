package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerTableBindings(r)
	registerFilterBindings(r)
	registerEditBindings(r)
	registerInspectBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

func registerTableBindings(r *Registry) {
	r.Register(ContextTable, "q", ActionQuit)
	r.RegisterMultiple(ContextTable, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextTable, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextTable, "pgup", ActionPageUp)
	r.Register(ContextTable, "pgdown", ActionPageDown)
	r.RegisterMultiple(ContextTable, []string{"home", "g"}, ActionGoToTop)
	r.RegisterMultiple(ContextTable, []string{"end", "G"}, ActionGoToBottom)
	r.Register(ContextTable, "f", ActionToggleFilter)
	r.RegisterMultiple(ContextTable, []string{"e", "enter"}, ActionOpenEdit)
	r.Register(ContextTable, "i", ActionOpenInspect)
	r.Register(ContextTable, "r", ActionRefresh)
	r.Register(ContextTable, "t", ActionToggleTheme)
	r.Register(ContextTable, "y", ActionCopyID)
}

func registerFilterBindings(r *Registry) {
	r.RegisterMultiple(ContextFilter, []string{"esc", "f", "q"}, ActionCloseModal)
	r.RegisterMultiple(ContextFilter, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextFilter, []string{"down", "j"}, ActionNavigateDown)
	r.RegisterMultiple(ContextFilter, []string{" ", "space", "enter"}, ActionToggleOption)
	r.Register(ContextFilter, "c", ActionClearFilter)
}

// Edit has a text input, so only non-printable keys are bound here.
func registerEditBindings(r *Registry) {
	r.Register(ContextEdit, "esc", ActionCloseModal)
	r.RegisterMultiple(ContextEdit, []string{"tab", "shift+tab"}, ActionSwitchField)
	r.Register(ContextEdit, "enter", ActionSubmit)
	r.Register(ContextEdit, "up", ActionNavigateUp)
	r.Register(ContextEdit, "down", ActionNavigateDown)
}

func registerInspectBindings(r *Registry) {
	r.RegisterMultiple(ContextInspect, []string{"esc", "i", "q"}, ActionCloseModal)
	r.RegisterMultiple(ContextInspect, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextInspect, []string{"down", "j"}, ActionScrollDown)
	r.Register(ContextInspect, "y", ActionCopyID)
}
