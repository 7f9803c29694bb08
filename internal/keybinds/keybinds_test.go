package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"table edit", ContextTable, "e", ActionOpenEdit, true},
		{"table enter edits", ContextTable, "enter", ActionOpenEdit, true},
		{"table filter", ContextTable, "f", ActionToggleFilter, true},
		{"filter toggles with space", ContextFilter, " ", ActionToggleOption, true},
		{"filter clear", ContextFilter, "c", ActionClearFilter, true},
		{"edit submit", ContextEdit, "enter", ActionSubmit, true},
		{"edit leaves letters to the input", ContextEdit, "q", "", false},
		{"global fallback", ContextInspect, "ctrl+c", ActionQuitForce, true},
		{"unbound", ContextTable, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = (%q, %v), want (%q, %v)", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestDefaultRegistry_Valid(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	if result.HasErrors() {
		t.Fatalf("default registry has errors:\n%s", result.String())
	}
}

func TestGetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.GetBindingString(ContextTable, ActionNavigateDown); got != "down/j" {
		t.Errorf("GetBindingString = %q, want %q", got, "down/j")
	}
	if got := r.GetBindingString(ContextTable, ActionSubmit); got != "unbound" {
		t.Errorf("GetBindingString = %q, want unbound", got)
	}
}

func TestParseConfig_Comments(t *testing.T) {
	data := []byte(`{
	  // remap filter
	  "version": "1",
	  "table": {
	    "/": "toggle_filter",
	    "f": "", /* unbind */
	  },
	}`)

	config, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	r := NewDefaultRegistry()
	if err := ApplyConfig(r, config); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}

	if action, ok := r.Match(ContextTable, "/"); !ok || action != ActionToggleFilter {
		t.Errorf("expected / to toggle the filter, got %q", action)
	}
	if _, ok := r.Match(ContextTable, "f"); ok {
		t.Error("expected f to be unbound")
	}
}

func TestApplyConfig_UnknownAction(t *testing.T) {
	config := &Config{Table: map[string]string{"x": "launch_rockets"}}

	err := ApplyConfig(NewDefaultRegistry(), config)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("expected unknown action error, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		r, err := LoadOrDefault(filepath.Join(dir, "missing.jsonc"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := r.Match(ContextTable, "f"); !ok {
			t.Error("expected default bindings")
		}
	})

	t.Run("rejects unbinding the edit close key", func(t *testing.T) {
		path := filepath.Join(dir, "keybinds.jsonc")
		if err := os.WriteFile(path, []byte(`{"edit": {"esc": ""}}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrDefault(path); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("rejects rebinding ctrl+c", func(t *testing.T) {
		path := filepath.Join(dir, "ctrlc.jsonc")
		if err := os.WriteFile(path, []byte(`{"table": {"ctrl+c": "refresh"}}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrDefault(path); err == nil {
			t.Error("expected reserved key error")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.jsonc")
		if err := os.WriteFile(path, []byte(`{"table": `), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadOrDefault(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"", true},
		{"ctrl+", true},
		{"ctrl+x", false},
		{"q", false},
	}

	for _, tt := range tests {
		if err := ValidateKey(tt.key); (err != nil) != tt.wantErr {
			t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestValidator_ShadowingWarning(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(ContextGlobal, "r", ActionRefresh)
	r.Register(ContextFilter, "r", ActionClearFilter)

	result := NewValidator().ValidateRegistry(r)
	if !result.HasWarnings() {
		t.Error("expected shadowing warning")
	}
	if result.HasErrors() {
		t.Errorf("unexpected errors:\n%s", result.String())
	}
}
