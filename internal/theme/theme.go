// Package theme provides the OCN colour palette and the lipgloss styles
// built from it.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
	tint "github.com/lrstanley/bubbletint/v2"

	"github.com/ocn-sys/ocn/internal/markup"
)

var enabled bool

// Initialize sets up the theme registry with the specified theme name.
// Call this once at application startup.
// If themeName is empty, the built-in neon palette is used.
func Initialize(themeName string) error {
	if themeName == "" {
		enabled = false
		return nil
	}

	enabled = true
	tint.NewDefaultRegistry()

	if ok := tint.SetTintID(themeName); !ok {
		tint.SetTintID("default")
	}

	return nil
}

// IsEnabled returns true if a bubbletint theme is active
func IsEnabled() bool {
	return enabled
}

// Current returns the currently active theme.
// Returns nil when the built-in palette is in use.
func Current() *tint.Tint {
	if !enabled {
		return nil
	}
	return tint.Current()
}

// Neon palette
func Accent() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#00f2ff")
	}
	return t.BrightCyan
}

func AccentDim() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#007a80")
	}
	return t.Cyan
}

func Secondary() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#ff00ff")
	}
	return t.BrightPurple
}

func Text() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#c8d3f5")
	}
	return t.Fg
}

func Dim() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#5a6480")
	}
	return t.BrightBlack
}

func Background() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#05070d")
	}
	return t.Bg
}

// Window chrome colors
func BorderActive() color.Color {
	return Accent()
}

func BorderFaded() color.Color {
	return Dim()
}

func TitleBarBg() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#0b1a24")
	}
	return t.Black
}

func ButtonClose() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#ff3860")
	}
	return t.BrightRed
}

func ButtonMinimize() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#ffdd57")
	}
	return t.BrightYellow
}

// Search highlight colors
func MarkBg() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#3a3f00")
	}
	return t.Yellow
}

func MarkActiveBg() color.Color {
	return Secondary()
}

// Status colors
func OK() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#39ff14")
	}
	return t.BrightGreen
}

func Warn() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#ffdd57")
	}
	return t.Yellow
}

func Error() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#ff3860")
	}
	return t.Red
}

// Particle field colors
func Particle() color.Color {
	return Accent()
}

func ParticleLink() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#0a3a40")
	}
	return t.Blue
}

// Dock styling colors
func DockBg() color.Color {
	t := Current()
	if t == nil {
		return lipgloss.Color("#0b1a24")
	}
	return t.Black
}

func DockFg() color.Color {
	return Dim()
}

func DockHighlight() color.Color {
	return Accent()
}

// Help menu colors
func HelpKeyBadge() color.Color {
	return lipgloss.Color("5")
}

func HelpBorder() color.Color {
	return Accent()
}

// CLI table colors
func CLITableHeader() color.Color {
	return lipgloss.Color("12")
}

func CLITableBorder() color.Color {
	return lipgloss.Color("14")
}

func CLITableKey() color.Color {
	return lipgloss.Color("11")
}

func CLITableDim() color.Color {
	return lipgloss.Color("8")
}

// MarkupStyles returns the palette used to draw panel markup. codeTheme
// names a Chroma style for code blocks.
func MarkupStyles(codeTheme string, ascii bool) markup.Styles {
	st := markup.DefaultStyles()
	st.Text = lipgloss.NewStyle().Foreground(Text())
	st.Heading = lipgloss.NewStyle().Bold(true).Foreground(Accent())
	st.Title = lipgloss.NewStyle().Bold(true).Foreground(Accent()).Underline(true)
	st.Code = lipgloss.NewStyle().Foreground(Secondary())
	st.Link = lipgloss.NewStyle().Underline(true).Foreground(Accent())
	st.LinkURL = lipgloss.NewStyle().Foreground(Dim())
	st.Quote = lipgloss.NewStyle().Foreground(Dim()).Italic(true)
	st.Rule = lipgloss.NewStyle().Foreground(AccentDim())
	st.Bullet = lipgloss.NewStyle().Foreground(Accent())
	st.TableBorder = lipgloss.NewStyle().Foreground(AccentDim())
	st.Mark = lipgloss.NewStyle().Background(MarkBg()).Foreground(Text())
	st.MarkActive = lipgloss.NewStyle().Background(MarkActiveBg()).Foreground(Background()).Bold(true)
	st.Placeholder = lipgloss.NewStyle().Foreground(AccentDim()).Faint(true)
	if codeTheme != "" {
		st.CodeTheme = codeTheme
	}
	st.ASCII = ascii
	return st
}
