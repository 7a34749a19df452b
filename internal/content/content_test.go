package content_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ocn-sys/ocn/internal/content"
)

func TestDefaultPack(t *testing.T) {
	c, err := content.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Windows) == 0 || len(c.Sources) == 0 {
		t.Fatal("default pack is empty")
	}

	kinds := map[string]bool{}
	for _, w := range c.Windows {
		kinds[w.Kind] = true
		for _, sid := range w.Sources {
			if _, ok := c.Source(sid); !ok {
				t.Errorf("window %s lists missing source %s", w.ID, sid)
			}
		}
	}
	for _, k := range []string{content.KindConsole, content.KindStatic, content.KindUplink} {
		if !kinds[k] {
			t.Errorf("default pack has no %s window", k)
		}
	}

	if len(c.Decls()) != len(c.Windows) {
		t.Error("Decls does not cover every window")
	}
	for _, id := range c.PanelIDs() {
		if w, _ := c.Window(id); !w.HasPanel() {
			t.Errorf("panel id %s belongs to a %s window", id, w.Kind)
		}
	}
}

func TestLookup(t *testing.T) {
	c, err := content.Default()
	if err != nil {
		t.Fatal(err)
	}
	src, ok := c.Lookup("gallery")
	if !ok || !src.Markup {
		t.Errorf("gallery lookup = %+v, %v", src, ok)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Error("unknown source resolved")
	}
	if w, ok := c.Owner("gallery"); !ok || w.ID != "projects" {
		t.Errorf("Owner(gallery) = %q, %v", w.ID, ok)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", content.ErrNoWindows},
		{"bad toml", "[[windows]\nid=", content.ErrInvalid},
		{"unknown kind", "[[windows]]\nid = \"a\"\nkind = \"popup\"", content.ErrInvalid},
		{"dangling source", "[[windows]]\nid = \"a\"\nsources = [\"x\"]", content.ErrInvalid},
		{"duplicate window", "[[windows]]\nid = \"a\"\n[[windows]]\nid = \"a\"", content.ErrInvalid},
		{"source without id", "[[windows]]\nid = \"a\"\n[[sources]]\nbody = \"x\"", content.ErrInvalid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := content.Parse([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("Parse error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := content.Parse([]byte("[[windows]]\nid = \"w\"\nsources = [\"s\"]\n[[sources]]\nid = \"s\"\nbody = \"hi\""))
	if err != nil {
		t.Fatal(err)
	}
	w, _ := c.Window("w")
	if w.Kind != content.KindConsole || w.Title != "w" {
		t.Errorf("window defaults = %+v", w)
	}
	s, _ := c.Source("s")
	if s.Label != "s" {
		t.Errorf("source label = %q", s.Label)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	if err := os.WriteFile(path, []byte("[[windows]]\nid = \"only\""), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := content.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Windows) != 1 {
		t.Errorf("windows = %d", len(c.Windows))
	}

	if _, err := content.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file loaded")
	}
	if c, err := content.Load(""); err != nil || len(c.Windows) == 0 {
		t.Errorf("Load(\"\") = %v", err)
	}
}

func TestWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	if err := os.WriteFile(path, []byte("[[windows]]\nid = \"one\""), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := content.NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[[windows]]\nid = \"two\""), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan any, 1)
	go func() { got <- w.Wait()() }()

	select {
	case msg := <-got:
		rm, ok := msg.(content.ReloadMsg)
		if !ok {
			t.Fatalf("msg = %T", msg)
		}
		if rm.Err != nil {
			t.Fatalf("reload error: %v", rm.Err)
		}
		if _, ok := rm.Catalog.Window("two"); !ok {
			t.Error("reload did not pick up the new pack")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.toml")
	if err := os.WriteFile(path, []byte("[[windows]]\nid = \"one\""), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := content.NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
