package app

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/theme"
)

// HelpRows flattens the keybinding sections into table rows. Section
// titles become rows with an empty key column.
func HelpRows(registry *config.KeybindRegistry) [][]string {
	var rows [][]string
	for i, section := range config.GetKeybindings(registry) {
		if i > 0 {
			rows = append(rows, []string{"", ""})
		}
		rows = append(rows, []string{"", section.Title})
		for _, b := range section.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}
	}
	return rows
}

// RenderHelp draws the keybinding reference, limited to height rows of
// table body.
func (d *Desktop) RenderHelp(height int) string {
	rows := HelpRows(d.Keys)
	if limit := max(height, 4); len(rows) > limit {
		rows = append(rows[:limit-1], []string{"", "..."})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Padding(0, 1)
	keyStyle := lipgloss.NewStyle().Foreground(theme.HelpKeyBadge()).Padding(0, 1)
	actionStyle := lipgloss.NewStyle().Foreground(theme.Text()).Padding(0, 1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary()).Padding(0, 1)

	border := lipgloss.RoundedBorder()
	if d.Config.Appearance.ASCIIOnly {
		border = lipgloss.ASCIIBorder()
	}
	t := table.New().
		Border(border).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.HelpBorder())).
		Headers("KEYS", "ACTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(rows) && rows[row][0] == "" {
				return sectionStyle
			}
			if col == 0 {
				return keyStyle
			}
			return actionStyle
		})

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render("OCN // HELP")
	hint := dimStyle().Render("esc to close")
	return strings.Join([]string{title, t.Render(), hint}, "\n")
}
