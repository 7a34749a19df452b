package config

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// GetKeybindings returns all keybinding sections for the help overlay.
// If registry is nil, it falls back to the built-in defaults.
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	if registry == nil {
		registry = NewKeybindRegistry(DefaultConfig())
	}

	desktop := KeybindingSection{Title: "DESKTOP"}
	addBinding(&desktop, registry, "next_window", "")
	addBinding(&desktop, registry, "prev_window", "")
	addBinding(&desktop, registry, "close_window", "")
	addBinding(&desktop, registry, "open_palette", "")
	addBinding(&desktop, registry, "toggle_logs", "")
	addBinding(&desktop, registry, "toggle_help", "")
	addBinding(&desktop, registry, "quit", "")
	desktop.Bindings = append(desktop.Bindings, Keybinding{"1-9 / Alt+1-9", "Toggle window from the dock"})

	console := KeybindingSection{Title: "CONSOLE"}
	addBinding(&console, registry, "next_source", "")
	addBinding(&console, registry, "prev_source", "")
	addBinding(&console, registry, "reveal_source", "")
	addBinding(&console, registry, "focus_search", "")
	addBinding(&console, registry, "scroll_up", "")
	addBinding(&console, registry, "scroll_down", "")

	search := KeybindingSection{Title: "SEARCH"}
	addBinding(&search, registry, "next_match", "")
	addBinding(&search, registry, "prev_match", "")
	addBinding(&search, registry, "clear_search", "")
	addBinding(&search, registry, "leave_search", "")

	mouse := KeybindingSection{
		Title: "MOUSE",
		Bindings: []Keybinding{
			{"Drag title", "Move window"},
			{"Drag corner", "Resize window"},
			{"Click", "Focus window"},
			{"Wheel", "Scroll panel"},
		},
	}

	sections := []KeybindingSection{}
	for _, s := range []KeybindingSection{desktop, console, search, mouse} {
		if len(s.Bindings) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

// addBinding appends action to section if it has keys bound.
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action, description string) {
	keys := registry.GetKeysForDisplay(action)
	if keys == "" {
		return
	}
	if description == "" {
		description = ActionDescriptions[action]
	}
	section.Bindings = append(section.Bindings, Keybinding{Key: keys, Description: description})
}
