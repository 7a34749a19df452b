// Package main implements OCN, a terminal portfolio desktop.
// It runs locally in the current terminal or serves one desktop per
// visitor over SSH.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/content"
	"github.com/ocn-sys/ocn/internal/theme"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode   bool
	cpuProfile  string
	noBoot      bool
	asciiOnly   bool
	themeName   string
	contentPath string
	strategy    string
	particles   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ocn",
		Short: "Terminal portfolio desktop",
		Long: `OCN - a terminal portfolio desktop

Draggable windows, typewriter panels, live search and a particle
backdrop, served in your terminal or over SSH.`,
		Example: `  # Run OCN
  ocn

  # Skip the boot sequence
  ocn --no-boot

  # Use your own content pack
  ocn --content ./portfolio.toml

  # Serve over SSH
  ocn ssh --port 2222

  # List all keybindings
  ocn keybinds list`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	rootCmd.PersistentFlags().BoolVar(&noBoot, "no-boot", false, "Skip the boot sequence")
	rootCmd.PersistentFlags().BoolVar(&asciiOnly, "ascii", false, "Draw with ASCII characters only")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "Colour theme (bubbletint ID)")
	rootCmd.PersistentFlags().StringVar(&contentPath, "content", "", "Content pack to load instead of the built-in one")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Reveal strategy: splice or textnodes")
	rootCmd.PersistentFlags().IntVar(&particles, "particles", -1, "Number of background particles")

	var sshPort, sshHost, sshKeyPath string

	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Run OCN as SSH server",
		Long: `Run OCN as an SSH server

Every connection gets its own desktop. The server generates a host key
automatically if none exists.

Visitors may pass switches as the SSH command:
  ssh -t host -p 2222 ascii skip

The --theme flag sets the palette for every session.`,
		Example: `  # Start SSH server on default port
  ocn ssh

  # Start on custom port
  ocn ssh --port 2222

  # Specify custom host key
  ocn ssh --key-path /path/to/host_key`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSSHServer(cmd.Context(), sshHost, sshPort, sshKeyPath)
		},
	}

	sshCmd.Flags().StringVar(&sshPort, "port", "2222", "SSH server port")
	sshCmd.Flags().StringVar(&sshHost, "host", "localhost", "SSH server host")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if not specified)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage OCN configuration",
		Long:  `Manage OCN configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the OCN configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the OCN configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults()
		},
	}

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect content packs",
	}

	contentListCmd := &cobra.Command{
		Use:   "list [pack.toml]",
		Short: "List the windows and sources of a pack",
		Long: `List the windows and sources of a content pack

Without an argument the configured pack is listed, or the built-in one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := contentPath
			if len(args) == 1 {
				path = args[0]
			}
			return listContent(path)
		},
	}

	contentCheckCmd := &cobra.Command{
		Use:   "check <pack.toml>",
		Short: "Validate a content pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := content.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d windows, %d sources\n", args[0], len(cat.Windows), len(cat.Sources))
			return nil
		},
	}

	contentCmd.AddCommand(contentListCmd, contentCheckCmd)

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys", "kb"},
		Short:   "View keybinding configuration",
	}

	keybindsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List all keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings()
		},
	}

	keybindsCustomCmd := &cobra.Command{
		Use:   "list-custom",
		Short: "List customized keybindings",
		Long: `Display only keybindings that differ from defaults

Shows a comparison of default and custom keybindings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCustomKeybindings()
		},
	}

	keybindsCmd.AddCommand(keybindsListCmd, keybindsCustomCmd)

	rootCmd.AddCommand(sshCmd, configCmd, contentCmd, keybindsCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}

// overrides collects the command line flags that beat the config file.
func overrides() config.Overrides {
	o := config.Overrides{
		ThemeName:   themeName,
		ContentPath: contentPath,
		Strategy:    strategy,
	}
	if asciiOnly {
		o.ASCIIOnly = &asciiOnly
	}
	if noBoot {
		o.SkipBoot = &noBoot
	}
	if particles >= 0 {
		o.Particles = &particles
	}
	if debugMode {
		o.LogLevel = "debug"
	}
	return o
}

// loadConfig reads the user config and applies the flags. A broken file
// falls back to the defaults with a warning.
func loadConfig() *config.UserConfig {
	cfg, err := config.LoadUserConfig()
	if err != nil || cfg == nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	config.ApplyOverrides(overrides(), cfg)
	return cfg
}

// stdout renders styled output downsampled to what the terminal supports.
func stdout() *colorprofile.Writer {
	return colorprofile.NewWriter(os.Stdout, os.Environ())
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Please set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	// Catch mistakes while the file is still fresh in mind.
	if _, err := config.LoadFrom(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

func findEditor() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if e := os.Getenv(env); e != "" {
			return e
		}
	}
	for _, e := range []string{"vim", "vi", "nano", "emacs"} {
		if _, err := exec.LookPath(e); err == nil {
			return e
		}
	}
	return ""
}

// resetConfigToDefaults resets the configuration file to default settings
func resetConfigToDefaults() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		_, _ = fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.Save(configPath, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: ocn config edit")
	return nil
}

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.CLITableHeader()).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	keyStyle := cellStyle.Foreground(theme.CLITableKey())

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.CLITableBorder())).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyStyle
			}
			return cellStyle
		})
}

func heading(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.Accent()).Render(s)
}

func dim(s string) string {
	return lipgloss.NewStyle().Foreground(theme.CLITableDim()).Italic(true).Render(s)
}

// listContent prints the windows and sources of a pack.
func listContent(path string) error {
	cfg := loadConfig()
	if path == "" {
		path = cfg.Content.Path
	}
	cat, err := content.Load(path)
	if err != nil {
		return err
	}
	out := stdout()
	name := path
	if name == "" {
		name = "built-in pack"
	}

	windows := newTable("ID", "Title", "Kind", "Geometry", "Open", "Sources")
	for _, w := range cat.Windows {
		open := ""
		if w.Open {
			open = "yes"
		}
		windows.Row(w.ID, w.Title, w.Kind,
			fmt.Sprintf("%dx%d @ %d,%d", w.Width, w.Height, w.X, w.Y),
			open, strings.Join(w.Sources, ", "))
	}

	sources := newTable("ID", "Label", "Window", "Format", "Length")
	for _, s := range cat.Sources {
		owner := "-"
		if w, ok := cat.Owner(s.ID); ok {
			owner = w.ID
		}
		format := "text"
		if s.Markup {
			format = "markup"
		}
		sources.Row(s.ID, s.Label, owner, format, fmt.Sprint(len([]rune(s.Body))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Content: "+name))
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Windows"))
	fmt.Fprintln(out, windows.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Sources"))
	fmt.Fprintln(out, sources.Render())
	fmt.Fprintln(out)
	return nil
}

// listKeybindings prints all configured keybindings in a pretty table
func listKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default keybindings...")
		userConfig = config.DefaultConfig()
	}
	if err := theme.Initialize(userConfig.Appearance.Theme); err != nil {
		return err
	}
	printKeybindingsTable(config.NewKeybindRegistry(userConfig))
	return nil
}

// printKeybindingsTable prints keybindings in a pretty table format
func printKeybindingsTable(registry *config.KeybindRegistry) {
	out := stdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("OCN Keybindings"))
	fmt.Fprintln(out)

	for _, section := range []string{config.SectionDesktop, config.SectionConsole, config.SectionSearch} {
		t := newTable("Keys", "Action")
		rows := 0
		for _, action := range registry.Actions(section) {
			keys := registry.GetKeys(action)
			if len(keys) == 0 {
				continue
			}
			t.Row(strings.Join(keys, ", "), formatActionName(action))
			rows++
		}
		if rows == 0 {
			continue
		}
		fmt.Fprintln(out, heading(strings.ToUpper(section)))
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, dim("Console keys apply to the focused console window; search keys while its search bar is focused."))
	fmt.Fprintln(out)
}

// listCustomKeybindings shows only the keybindings that differ from defaults
func listCustomKeybindings() error {
	userConfig, err := config.LoadUserConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := theme.Initialize(userConfig.Appearance.Theme); err != nil {
		return err
	}

	customizations := findCustomizations(userConfig, config.DefaultConfig())
	out := stdout()

	if len(customizations) == 0 {
		fmt.Fprintln(out, dim("No custom keybindings configured. All keybindings are using defaults."))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'ocn keybinds list' to see all keybindings.")
		return nil
	}

	t := newTable("Section", "Action", "Default", "Custom")
	for _, c := range customizations {
		t.Row(c.Section, c.Action, c.DefaultKeys, c.CustomKeys)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, heading("Custom Keybindings"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, t.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(theme.Warn()).
		Render(fmt.Sprintf("Found %d customized keybinding(s)", len(customizations))))
	fmt.Fprintln(out)
	return nil
}

// Customization represents a customized keybinding
type Customization struct {
	Section     string
	Action      string
	DefaultKeys string
	CustomKeys  string
}

// findCustomizations finds all keybindings that differ from defaults,
// ordered by section then action.
func findCustomizations(userCfg, defaultCfg *config.UserConfig) []Customization {
	var customizations []Customization

	compareSections := func(section string, userSection, defaultSection map[string][]string) {
		actions := make([]string, 0, len(defaultSection))
		for action := range defaultSection {
			actions = append(actions, action)
		}
		slices.Sort(actions)
		for _, action := range actions {
			userKeys, exists := userSection[action]
			if !exists {
				continue
			}
			defaultKeys := defaultSection[action]
			if !slices.Equal(userKeys, defaultKeys) {
				customizations = append(customizations, Customization{
					Section:     section,
					Action:      formatActionName(action),
					DefaultKeys: strings.Join(defaultKeys, ", "),
					CustomKeys:  strings.Join(userKeys, ", "),
				})
			}
		}
	}

	compareSections(config.SectionDesktop, userCfg.Keybindings.Desktop, defaultCfg.Keybindings.Desktop)
	compareSections(config.SectionConsole, userCfg.Keybindings.Console, defaultCfg.Keybindings.Console)
	compareSections(config.SectionSearch, userCfg.Keybindings.Search, defaultCfg.Keybindings.Search)

	return customizations
}

// formatActionName formats an action name for display
func formatActionName(action string) string {
	if desc, ok := config.ActionDescriptions[action]; ok {
		return desc
	}
	return strings.ReplaceAll(action, "_", " ")
}
