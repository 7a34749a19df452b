// Package content loads the declarative catalog of windows and panel
// sources. A default pack is embedded; a user pack replaces it when
// configured.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ocn-sys/ocn/internal/reveal"
	"github.com/ocn-sys/ocn/internal/wm"
)

//go:embed default.toml
var defaultPack []byte

// Window kinds.
const (
	KindConsole = "console"
	KindStatic  = "static"
	KindUplink  = "uplink"
)

var (
	// ErrNoWindows is returned for a pack that declares no windows.
	ErrNoWindows = errors.New("content pack declares no windows")
	// ErrInvalid wraps every other validation failure.
	ErrInvalid = errors.New("invalid content pack")
)

// Window declares one desktop window.
type Window struct {
	ID      string   `toml:"id"`
	Title   string   `toml:"title"`
	Kind    string   `toml:"kind"`
	X       int      `toml:"x"`
	Y       int      `toml:"y"`
	Width   int      `toml:"width"`
	Height  int      `toml:"height"`
	Open    bool     `toml:"open"`
	Sources []string `toml:"sources"`
}

// HasPanel reports whether the window shows a reveal panel.
func (w Window) HasPanel() bool {
	return w.Kind == KindConsole || w.Kind == KindStatic
}

// Source is the raw content behind a trigger.
type Source struct {
	ID     string `toml:"id"`
	Label  string `toml:"label"`
	Markup bool   `toml:"markup"`
	Body   string `toml:"body"`
}

// Catalog is a parsed content pack.
type Catalog struct {
	Windows []Window `toml:"windows"`
	Sources []Source `toml:"sources"`

	windows map[string]int
	sources map[string]int
}

// Default returns the embedded pack.
func Default() (*Catalog, error) {
	c, err := Parse(defaultPack)
	if err != nil {
		return nil, fmt.Errorf("embedded content: %w", err)
	}
	return c, nil
}

// Load reads the pack at path, or the embedded pack when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a pack.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	if len(c.Windows) == 0 {
		return ErrNoWindows
	}
	c.sources = make(map[string]int, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("%w: source %d has no id", ErrInvalid, i)
		}
		if _, dup := c.sources[s.ID]; dup {
			return fmt.Errorf("%w: duplicate source %q", ErrInvalid, s.ID)
		}
		if s.Label == "" {
			c.Sources[i].Label = s.ID
		}
		c.sources[s.ID] = i
	}

	c.windows = make(map[string]int, len(c.Windows))
	for i, w := range c.Windows {
		if w.ID == "" {
			return fmt.Errorf("%w: window %d has no id", ErrInvalid, i)
		}
		if _, dup := c.windows[w.ID]; dup {
			return fmt.Errorf("%w: duplicate window %q", ErrInvalid, w.ID)
		}
		switch w.Kind {
		case "":
			c.Windows[i].Kind = KindConsole
		case KindConsole, KindStatic, KindUplink:
		default:
			return fmt.Errorf("%w: window %q has unknown kind %q", ErrInvalid, w.ID, w.Kind)
		}
		if w.Title == "" {
			c.Windows[i].Title = w.ID
		}
		for _, sid := range w.Sources {
			if _, ok := c.sources[sid]; !ok {
				return fmt.Errorf("%w: window %q references unknown source %q", ErrInvalid, w.ID, sid)
			}
		}
		c.windows[w.ID] = i
	}
	return nil
}

// Window returns the window declaration for id.
func (c *Catalog) Window(id string) (Window, bool) {
	i, ok := c.windows[id]
	if !ok {
		return Window{}, false
	}
	return c.Windows[i], true
}

// Source returns the source for id.
func (c *Catalog) Source(id string) (Source, bool) {
	i, ok := c.sources[id]
	if !ok {
		return Source{}, false
	}
	return c.Sources[i], true
}

// Lookup adapts the catalog to the reveal engine.
func (c *Catalog) Lookup(id string) (reveal.Source, bool) {
	s, ok := c.Source(id)
	if !ok {
		return reveal.Source{}, false
	}
	return reveal.Source{Body: s.Body, Markup: s.Markup}, true
}

// Decls returns window declarations for the window registry.
func (c *Catalog) Decls() []wm.Decl {
	decls := make([]wm.Decl, 0, len(c.Windows))
	for _, w := range c.Windows {
		decls = append(decls, wm.Decl{
			ID:     w.ID,
			Title:  w.Title,
			X:      w.X,
			Y:      w.Y,
			Width:  w.Width,
			Height: w.Height,
			Open:   w.Open,
		})
	}
	return decls
}

// PanelIDs lists the ids of windows that own a panel. A panel shares its
// window's id.
func (c *Catalog) PanelIDs() []string {
	var ids []string
	for _, w := range c.Windows {
		if w.HasPanel() {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// Owner returns the first panel window listing source id.
func (c *Catalog) Owner(sourceID string) (Window, bool) {
	for _, w := range c.Windows {
		if !w.HasPanel() {
			continue
		}
		for _, sid := range w.Sources {
			if sid == sourceID {
				return w, true
			}
		}
	}
	return Window{}, false
}
