package config

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Keybinding sections. A key is resolved against the section that owns the
// focused widget first and the desktop section second.
const (
	SectionDesktop = "desktop"
	SectionConsole = "console"
	SectionSearch  = "search"
)

// KeybindingsConfig maps actions to keys, per section.
type KeybindingsConfig struct {
	Desktop map[string][]string `toml:"desktop"`
	Console map[string][]string `toml:"console"`
	Search  map[string][]string `toml:"search"`
}

// DefaultKeybindings returns the built-in bindings.
func DefaultKeybindings() KeybindingsConfig {
	desktop := map[string][]string{
		"quit":         {"ctrl+c", "ctrl+q"},
		"open_palette": {"ctrl+p", "ctrl+k"},
		"next_window":  {"ctrl+n", "alt+n"},
		"prev_window":  {"alt+p"},
		"close_window": {"ctrl+w"},
		"toggle_help":  {"f1", "?"},
		"toggle_logs":  {"ctrl+l"},
	}
	for i := 1; i <= 9; i++ {
		desktop[fmt.Sprintf("toggle_window_%d", i)] = []string{fmt.Sprintf("alt+%d", i), fmt.Sprintf("%d", i)}
	}
	return KeybindingsConfig{
		Desktop: desktop,
		Console: map[string][]string{
			"next_source":   {"down", "j"},
			"prev_source":   {"up", "k"},
			"reveal_source": {"enter", "space"},
			"focus_search":  {"/", "ctrl+f"},
			"scroll_up":     {"pgup", "shift+up"},
			"scroll_down":   {"pgdown", "shift+down"},
			"scroll_top":    {"home", "g"},
			"scroll_bottom": {"end", "G"},
		},
		Search: map[string][]string{
			"next_match":   {"enter", "ctrl+g", "down"},
			"prev_match":   {"shift+enter", "alt+g", "up"},
			"clear_search": {"ctrl+u"},
			"leave_search": {"esc", "tab"},
		},
	}
}

func (k *KeybindingsConfig) sections() map[string]map[string][]string {
	return map[string]map[string][]string{
		SectionDesktop: k.Desktop,
		SectionConsole: k.Console,
		SectionSearch:  k.Search,
	}
}

// mergeDefaults adds default actions the user file does not mention.
func (k *KeybindingsConfig) mergeDefaults(def KeybindingsConfig) {
	merge := func(dst *map[string][]string, src map[string][]string) {
		if *dst == nil {
			*dst = make(map[string][]string, len(src))
		}
		for action, keys := range src {
			if _, ok := (*dst)[action]; !ok {
				(*dst)[action] = keys
			}
		}
	}
	merge(&k.Desktop, def.Desktop)
	merge(&k.Console, def.Console)
	merge(&k.Search, def.Search)
}

// ActionDescriptions gives each action a human readable label.
var ActionDescriptions = map[string]string{
	"quit":          "Quit",
	"open_palette":  "Open launcher",
	"next_window":   "Focus next window",
	"prev_window":   "Focus previous window",
	"close_window":  "Close focused window",
	"toggle_help":   "Toggle help",
	"toggle_logs":   "Toggle log viewer",
	"next_source":   "Select next entry",
	"prev_source":   "Select previous entry",
	"reveal_source": "Decrypt selected entry",
	"focus_search":  "Search panel",
	"scroll_up":     "Scroll panel up",
	"scroll_down":   "Scroll panel down",
	"scroll_top":    "Scroll to top",
	"scroll_bottom": "Scroll to bottom",
	"next_match":    "Next match",
	"prev_match":    "Previous match",
	"clear_search":  "Clear query",
	"leave_search":  "Leave search",
}

func init() {
	for i := 1; i <= 9; i++ {
		ActionDescriptions[fmt.Sprintf("toggle_window_%d", i)] = fmt.Sprintf("Toggle window %d", i)
	}
}

// KeybindRegistry resolves keys to actions.
type KeybindRegistry struct {
	actions    map[string]map[string][]string
	reverse    map[string]map[string]string
	normalizer *KeyNormalizer
}

// NewKeybindRegistry indexes the bindings of cfg.
func NewKeybindRegistry(cfg *UserConfig) *KeybindRegistry {
	r := &KeybindRegistry{
		actions:    make(map[string]map[string][]string),
		reverse:    make(map[string]map[string]string),
		normalizer: NewKeyNormalizer(),
	}
	for section, bindings := range cfg.Keybindings.sections() {
		r.actions[section] = make(map[string][]string, len(bindings))
		r.reverse[section] = make(map[string]string)
		for action, keys := range bindings {
			r.actions[section][action] = keys
			for _, key := range keys {
				for _, norm := range r.normalizer.NormalizeKey(key) {
					r.reverse[section][norm] = action
				}
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to action in any section.
func (r *KeybindRegistry) GetKeys(action string) []string {
	for _, section := range []string{SectionDesktop, SectionConsole, SectionSearch} {
		if keys, ok := r.actions[section][action]; ok {
			return keys
		}
	}
	return nil
}

// GetAction resolves a key against the desktop section.
func (r *KeybindRegistry) GetAction(key string) string {
	return r.Lookup(SectionDesktop, key)
}

// Lookup resolves a key within one section.
func (r *KeybindRegistry) Lookup(section, key string) string {
	keys := r.normalizer.NormalizeKey(key)
	if len(keys) == 0 {
		return ""
	}
	return r.reverse[section][keys[0]]
}

// GetKeysForDisplay formats the keys of action for help output.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	return strings.Join(r.GetKeys(action), " / ")
}

// Actions lists the actions of a section in stable order.
func (r *KeybindRegistry) Actions(section string) []string {
	out := make([]string, 0, len(r.actions[section]))
	for action := range r.actions[section] {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}

// IsPrintable reports whether key would type a character into a focused
// text input. Such bindings are ignored while the user is typing.
func IsPrintable(key string) bool {
	return key == "space" || utf8.RuneCountInString(key) == 1
}

// KeyNormalizer canonicalises key strings.
type KeyNormalizer struct {
	aliases map[string]string
}

// NewKeyNormalizer returns a normalizer with the common aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string]string{
			"return":    "enter",
			"escape":    "esc",
			"del":       "delete",
			"pageup":    "pgup",
			"pagedown":  "pgdown",
			"spacebar":  "space",
			" ":         "space",
			"control":   "ctrl",
			"option":    "alt",
			"opt":       "alt",
			"meta":      "alt",
			"backspace": "backspace",
		},
	}
}

// NormalizeKey returns the canonical form of key first, followed by the
// lower-cased input when it differs. Single characters keep their case so
// "g" and "G" stay distinct.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	if key == "" {
		return nil
	}
	if utf8.RuneCountInString(key) == 1 {
		if alias, ok := n.aliases[key]; ok {
			return []string{alias, key}
		}
		return []string{key}
	}

	parts := strings.Split(key, "+")
	for i, p := range parts {
		if utf8.RuneCountInString(p) == 1 && i == len(parts)-1 && len(parts) > 1 {
			parts[i] = strings.ToLower(p)
			continue
		}
		p = strings.ToLower(p)
		if alias, ok := n.aliases[p]; ok {
			p = alias
		}
		parts[i] = p
	}
	canonical := strings.Join(parts, "+")
	lower := strings.ToLower(key)
	if lower != canonical {
		return []string{canonical, lower}
	}
	return []string{canonical}
}

// ValidateKey reports whether key can be bound, with a reason when not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	if strings.TrimSpace(key) == "" {
		return false, "empty key"
	}
	parts := strings.Split(key, "+")
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl", "control", "alt", "option", "opt", "meta", "shift", "super":
		default:
			return false, fmt.Sprintf("unknown modifier %q", p)
		}
	}
	if parts[len(parts)-1] == "" {
		return false, "missing key after modifier"
	}
	return true, ""
}
