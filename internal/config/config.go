// Package config loads and validates the OCN configuration file and exposes
// the tunables used by the window manager, the reveal engine and the desktop.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// UserConfig is the on-disk configuration.
type UserConfig struct {
	Appearance  AppearanceConfig  `toml:"appearance"`
	Timing      TimingConfig      `toml:"timing"`
	Reveal      RevealConfig      `toml:"reveal"`
	Layout      LayoutConfig      `toml:"layout"`
	Content     ContentConfig     `toml:"content"`
	Logging     LoggingConfig     `toml:"logging"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// AppearanceConfig controls colours and decorative layers.
type AppearanceConfig struct {
	Theme         string  `toml:"theme"`
	ASCIIOnly     bool    `toml:"ascii_only"`
	Particles     int     `toml:"particles"`
	LinkDistance  float64 `toml:"link_distance"`
	ShowTelemetry bool    `toml:"show_telemetry"`
	ShowClock     bool    `toml:"show_clock"`
	SkipBoot      bool    `toml:"skip_boot"`
}

// TimingConfig holds every delay in milliseconds.
type TimingConfig struct {
	BootEnterMS   int `toml:"boot_enter_ms"`
	BootFadeMS    int `toml:"boot_fade_ms"`
	SpinUpMS      int `toml:"spin_up_ms"`
	TickMS        int `toml:"tick_ms"`
	UnitsPerTick  int `toml:"units_per_tick"`
	UplinkDelayMS int `toml:"uplink_delay_ms"`
	FPS           int `toml:"fps"`
}

// RevealConfig selects how text content is typed out.
type RevealConfig struct {
	// Strategy is "splice" (grow the markup unit by unit) or "textnodes"
	// (render the structure, then type the text nodes in document order).
	Strategy  string `toml:"strategy"`
	HardWraps bool   `toml:"hard_wraps"`
	CodeStyle string `toml:"code_style"`
}

// LayoutConfig holds window geometry rules, in terminal cells.
type LayoutConfig struct {
	NudgeX      int `toml:"nudge_x"`
	NudgeY      int `toml:"nudge_y"`
	NarrowWidth int `toml:"narrow_width"`
	MinWidth    int `toml:"min_width"`
	MinHeight   int `toml:"min_height"`
	Grip        int `toml:"grip"`
}

// ContentConfig points at an optional user content pack.
type ContentConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Reveal strategies.
const (
	StrategySplice    = "splice"
	StrategyTextNodes = "textnodes"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Appearance: AppearanceConfig{
			Theme:         "",
			Particles:     DefaultParticleCount,
			LinkDistance:  DefaultLinkDistance,
			ShowTelemetry: true,
			ShowClock:     true,
		},
		Timing: TimingConfig{
			BootEnterMS:   1500,
			BootFadeMS:    800,
			SpinUpMS:      200,
			TickMS:        2,
			UnitsPerTick:  1,
			UplinkDelayMS: 1500,
			FPS:           NormalFPS,
		},
		Reveal: RevealConfig{
			Strategy:  StrategySplice,
			HardWraps: true,
			CodeStyle: "dracula",
		},
		Layout: LayoutConfig{
			NudgeX:      4,
			NudgeY:      2,
			NarrowWidth: 60,
			MinWidth:    DefaultWindowWidth,
			MinHeight:   DefaultWindowHeight,
			Grip:        4,
		},
		Content: ContentConfig{
			Watch: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Keybindings: DefaultKeybindings(),
	}
}

// Durations derived from TimingConfig.
func (t TimingConfig) BootEnter() time.Duration   { return ms(t.BootEnterMS) }
func (t TimingConfig) BootFade() time.Duration    { return ms(t.BootFadeMS) }
func (t TimingConfig) SpinUp() time.Duration      { return ms(t.SpinUpMS) }
func (t TimingConfig) Tick() time.Duration        { return ms(t.TickMS) }
func (t TimingConfig) UplinkDelay() time.Duration { return ms(t.UplinkDelayMS) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Validate rejects values no component can work with.
func (c *UserConfig) Validate() error {
	switch c.Reveal.Strategy {
	case StrategySplice, StrategyTextNodes:
	default:
		return fmt.Errorf("%w: reveal.strategy %q (want %q or %q)", ErrInvalid, c.Reveal.Strategy, StrategySplice, StrategyTextNodes)
	}
	if c.Timing.TickMS < 1 {
		return fmt.Errorf("%w: timing.tick_ms must be >= 1, got %d", ErrInvalid, c.Timing.TickMS)
	}
	if c.Timing.UnitsPerTick < 1 {
		return fmt.Errorf("%w: timing.units_per_tick must be >= 1, got %d", ErrInvalid, c.Timing.UnitsPerTick)
	}
	if c.Timing.SpinUpMS < 0 || c.Timing.BootEnterMS < 0 || c.Timing.BootFadeMS < 0 || c.Timing.UplinkDelayMS < 0 {
		return fmt.Errorf("%w: timing delays must not be negative", ErrInvalid)
	}
	if c.Layout.MinWidth < 1 || c.Layout.MinHeight < 1 {
		return fmt.Errorf("%w: layout minimum size must be at least 1x1", ErrInvalid)
	}
	if c.Appearance.Particles < 0 {
		return fmt.Errorf("%w: appearance.particles must not be negative", ErrInvalid)
	}
	return nil
}

// fillDefaults replaces zero values that would otherwise disable a component.
func (c *UserConfig) fillDefaults() {
	def := DefaultConfig()
	if c.Timing.FPS <= 0 {
		c.Timing.FPS = def.Timing.FPS
	}
	if c.Reveal.Strategy == "" {
		c.Reveal.Strategy = def.Reveal.Strategy
	}
	if c.Reveal.CodeStyle == "" {
		c.Reveal.CodeStyle = def.Reveal.CodeStyle
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	c.Keybindings.mergeDefaults(def.Keybindings)
}

// GetConfigPath returns the config file location, creating parent
// directories as needed.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("ocn", "config.toml"))
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// GetLogPath returns the default log file location.
func GetLogPath() (string, error) {
	path, err := xdg.StateFile(filepath.Join("ocn", "ocn.log"))
	if err != nil {
		return "", fmt.Errorf("resolve log path: %w", err)
	}
	return path, nil
}

// GetHostKeyPath returns the default SSH host key location.
func GetHostKeyPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("ocn", "ssh_host_ed25519"))
	if err != nil {
		return "", fmt.Errorf("resolve host key path: %w", err)
	}
	return path, nil
}

// LoadUserConfig reads the user configuration, writing the defaults on
// first run.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration file. A missing file is created with the
// default configuration.
func LoadFrom(path string) (*UserConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*UserConfig, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders cfg as TOML with a short header.
func Marshal(cfg *UserConfig, path string) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("# OCN configuration\n")
	sb.WriteString("# Durations are in milliseconds, geometry in terminal cells.\n")
	if path != "" {
		sb.WriteString("# Location: " + path + "\n")
	}
	sb.WriteString("\n")
	sb.Write(data)
	return []byte(sb.String()), nil
}

// Save writes cfg to path.
func Save(path string, cfg *UserConfig) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Overrides carries command line flags that take precedence over the file.
type Overrides struct {
	ThemeName   string
	ASCIIOnly   *bool
	SkipBoot    *bool
	ContentPath string
	Strategy    string
	Particles   *int
	LogLevel    string
}

// ApplyOverrides merges non-empty overrides into cfg.
func ApplyOverrides(o Overrides, cfg *UserConfig) {
	if o.ThemeName != "" {
		cfg.Appearance.Theme = o.ThemeName
	}
	if o.ASCIIOnly != nil {
		cfg.Appearance.ASCIIOnly = *o.ASCIIOnly
	}
	if o.SkipBoot != nil {
		cfg.Appearance.SkipBoot = *o.SkipBoot
	}
	if o.ContentPath != "" {
		cfg.Content.Path = o.ContentPath
	}
	if o.Strategy != "" {
		cfg.Reveal.Strategy = o.Strategy
	}
	if o.Particles != nil {
		cfg.Appearance.Particles = *o.Particles
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}
